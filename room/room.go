package room

import (
	"math/rand"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"pong/game"
	"pong/protocol"
)

// phase gates joins and the ready handshake. The engine tracks its own
// status for the physics; the phase is the room lifecycle.
type phase int

const (
	awaitingOpponent phase = iota
	readyCheck
	playing
	finished
)

type slot struct {
	conn   Conn
	ready  bool
	intent game.Direction
}

// Room owns one match: two fixed player slots, the engine and the tick
// loop. A single goroutine (Run) serializes every event through Inbox, so
// the match state needs no lock.
type Room struct {
	Inbox chan any

	Code    string
	OnClose func(code string) // called once when the match terminates

	engine  *game.Engine
	slots   [2]*slot
	phase   phase
	ticker  *time.Ticker
	quit    chan struct{}
	players atomic.Int32
	log     *zap.SugaredLogger
}

func New(code string, rng *rand.Rand, log *zap.SugaredLogger) *Room {
	return &Room{
		Inbox:  make(chan any, 64),
		Code:   code,
		engine: game.NewEngine(rng),
		quit:   make(chan struct{}),
		log:    log,
	}
}

// Stop terminates the room goroutine. Called by the manager on eviction.
func (r *Room) Stop() {
	close(r.quit)
}

// Done reports room termination; callers racing a shutdown select on it.
func (r *Room) Done() <-chan struct{} {
	return r.quit
}

// Post delivers cmd to the room goroutine, dropping it if the room has
// already shut down. Never blocks past room teardown.
func (r *Room) Post(cmd any) {
	select {
	case r.Inbox <- cmd:
	case <-r.quit:
	}
}

// NumPlayers returns the current number of occupied slots.
func (r *Room) NumPlayers() int {
	return int(r.players.Load())
}

// Run processes events until the room is stopped. The tick channel stays
// nil until the match starts, so the select cannot fire a tick outside of
// playing — and no tick fires after teardown.
func (r *Room) Run() {
	defer func() {
		if r.ticker != nil {
			r.ticker.Stop()
		}
	}()
	for {
		var tick <-chan time.Time
		if r.ticker != nil {
			tick = r.ticker.C
		}
		select {
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-tick:
			r.tick()
		}
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		c.Reply <- r.handleJoin(c.Conn)
	case Ready:
		r.handleReady(c.Slot)
	case Move:
		if s := r.slot(c.Slot); s != nil {
			s.intent = c.Direction
		}
	case Leave:
		r.handleLeave(c.Slot)
	}
}

func (r *Room) slot(n int) *slot {
	if n < 1 || n > 2 {
		return nil
	}
	return r.slots[n-1]
}

func (r *Room) handleJoin(conn Conn) JoinResult {
	if r.phase != awaitingOpponent || (r.slots[0] != nil && r.slots[1] != nil) {
		return JoinResult{}
	}
	n := 1
	if r.slots[0] != nil {
		n = 2
	}
	r.slots[n-1] = &slot{conn: conn}
	r.players.Store(int32(n))
	r.log.Infow("player joined", "room", r.Code, "slot", n)
	if n == 2 {
		r.phase = readyCheck
		r.broadcast(protocol.MsgOpponentJoined, nil)
	}
	return JoinResult{Slot: n, OK: true}
}

func (r *Room) handleReady(n int) {
	s := r.slot(n)
	if s == nil || r.phase == playing || r.phase == finished {
		return
	}
	s.ready = true
	r.broadcast(protocol.MsgReadyAck, protocol.ReadyAck{Slot: n})
	if r.phase == readyCheck && r.slots[0].ready && r.slots[1].ready {
		r.start()
	}
}

func (r *Room) start() {
	r.phase = playing
	r.engine.Start()
	r.broadcast(protocol.MsgMatchStarted, nil)
	r.ticker = time.NewTicker(time.Second / protocol.TickHz)
	r.log.Infow("match started", "room", r.Code)
}

// tick runs one simulation step and fans the snapshot out to both slots.
func (r *Room) tick() {
	st := r.engine.Update(r.intent(1), r.intent(2))
	r.broadcast(protocol.MsgState, snapshot(st))
	if st.Status == game.StatusFinished {
		r.stopTicker()
		r.phase = finished
		r.broadcast(protocol.MsgMatchOver, protocol.MatchOver{Winner: st.Winner})
		r.log.Infow("match finished", "room", r.Code, "winner", st.Winner)
	}
}

// handleLeave terminates the match: a room never continues with one
// participant. The ticker is stopped before anything else so no further
// tick can fire, then the opponent is told and the manager evicts us.
func (r *Room) handleLeave(n int) {
	s := r.slot(n)
	if s == nil {
		return
	}
	r.stopTicker()
	r.slots[n-1] = nil
	r.players.Add(-1)
	r.phase = finished
	if other := r.slot(3 - n); other != nil {
		r.broadcast(protocol.MsgOpponentLeft, nil)
	}
	r.log.Infow("player left, closing room", "room", r.Code, "slot", n)
	if r.OnClose != nil {
		r.OnClose(r.Code)
		r.OnClose = nil
	}
}

func (r *Room) stopTicker() {
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
}

func (r *Room) intent(n int) game.Direction {
	if s := r.slot(n); s != nil {
		return s.intent
	}
	return game.Stop
}

func (r *Room) broadcast(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.log.Errorw("encode broadcast", "room", r.Code, "type", t, "err", err)
		return
	}
	for _, s := range r.slots {
		if s != nil {
			_ = s.conn.Send(b) // dead conns surface on the read path
		}
	}
}

func snapshot(st game.State) protocol.State {
	return protocol.State{
		Status: string(st.Status),
		Winner: st.Winner,
		Ball: protocol.BallSnapshot{
			X:  st.Ball.X,
			Y:  st.Ball.Y,
			VX: st.Ball.VX,
			VY: st.Ball.VY,
		},
		P1: protocol.PaddleSnapshot{Y: st.P1.Y, Score: st.P1.Score},
		P2: protocol.PaddleSnapshot{Y: st.P2.Y, Score: st.P2.Score},
	}
}
