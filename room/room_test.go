package room

import (
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"

	"pong/game"
	"pong/protocol"
)

type fakeConn struct {
	sendCh chan []byte
}

func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	select {
	case f.sendCh <- cp:
	default:
		// test buffer full, drop like a slow client
	}
	return nil
}

func newFakeConn() *fakeConn {
	return &fakeConn{sendCh: make(chan []byte, 256)}
}

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	r := New("TEST42", rand.New(rand.NewSource(1)), zap.NewNop().Sugar())
	go r.Run()
	t.Cleanup(func() {
		select {
		case <-r.Done():
		default:
			r.Stop()
		}
	})
	return r
}

func join(t *testing.T, r *Room, fc *fakeConn) JoinResult {
	t.Helper()
	reply := make(chan JoinResult, 1)
	r.Inbox <- Join{Conn: fc, Reply: reply}
	select {
	case res := <-reply:
		return res
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for join reply")
		return JoinResult{}
	}
}

// waitFor reads fc until a message of the wanted kind arrives, skipping
// everything else.
func waitFor(t *testing.T, fc *fakeConn, kind string) protocol.Envelope {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.T == kind {
				return env
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", kind)
		}
	}
}

// assertNever asserts no message of the given kind arrives within d.
func assertNever(t *testing.T, fc *fakeConn, kind string, d time.Duration) {
	t.Helper()
	deadline := time.After(d)
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.T == kind {
				t.Fatalf("got %q, expected none", kind)
			}
		case <-deadline:
			return
		}
	}
}

func TestJoinAssignsSlotsInOrderAndRejectsThird(t *testing.T) {
	r := newTestRoom(t)

	res1 := join(t, r, newFakeConn())
	if !res1.OK || res1.Slot != 1 {
		t.Fatalf("first join = %+v, want slot 1", res1)
	}
	res2 := join(t, r, newFakeConn())
	if !res2.OK || res2.Slot != 2 {
		t.Fatalf("second join = %+v, want slot 2", res2)
	}
	res3 := join(t, r, newFakeConn())
	if res3.OK {
		t.Fatalf("third join = %+v, want rejection", res3)
	}
}

func TestSecondJoinNotifiesBothPlayers(t *testing.T) {
	r := newTestRoom(t)
	fc1 := newFakeConn()
	fc2 := newFakeConn()

	join(t, r, fc1)
	join(t, r, fc2)

	waitFor(t, fc1, protocol.MsgOpponentJoined)
	waitFor(t, fc2, protocol.MsgOpponentJoined)
}

func TestReadyHandshakeStartsMatch(t *testing.T) {
	r := newTestRoom(t)
	fc1 := newFakeConn()
	fc2 := newFakeConn()

	join(t, r, fc1)
	join(t, r, fc2)

	r.Inbox <- Ready{Slot: 1}
	env := waitFor(t, fc1, protocol.MsgReadyAck)
	ack, err := protocol.DecodePayload[protocol.ReadyAck](env)
	if err != nil {
		t.Fatalf("decode ready ack: %v", err)
	}
	if ack.Slot != 1 {
		t.Fatalf("ready ack slot = %d, want 1", ack.Slot)
	}

	r.Inbox <- Ready{Slot: 2}
	waitFor(t, fc1, protocol.MsgMatchStarted)
	waitFor(t, fc2, protocol.MsgMatchStarted)

	// The state stream begins immediately after.
	env = waitFor(t, fc1, protocol.MsgState)
	st, err := protocol.DecodePayload[protocol.State](env)
	if err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if st.Status != string(game.StatusPlaying) {
		t.Fatalf("first snapshot status = %q, want playing", st.Status)
	}
}

func TestNoStartBeforeBothReady(t *testing.T) {
	r := newTestRoom(t)
	fc1 := newFakeConn()
	fc2 := newFakeConn()

	join(t, r, fc1)
	join(t, r, fc2)

	r.Inbox <- Ready{Slot: 1}
	assertNever(t, fc1, protocol.MsgMatchStarted, 150*time.Millisecond)
}

func TestReadyBeforeOpponentJoins(t *testing.T) {
	r := newTestRoom(t)
	fc1 := newFakeConn()
	fc2 := newFakeConn()

	join(t, r, fc1)
	r.Inbox <- Ready{Slot: 1}
	waitFor(t, fc1, protocol.MsgReadyAck)
	assertNever(t, fc1, protocol.MsgMatchStarted, 100*time.Millisecond)

	// The earlier ready still counts once the opponent shows up.
	join(t, r, fc2)
	r.Inbox <- Ready{Slot: 2}
	waitFor(t, fc1, protocol.MsgMatchStarted)
	waitFor(t, fc2, protocol.MsgMatchStarted)
}

func TestMoveIntentDrivesPaddle(t *testing.T) {
	r := newTestRoom(t)
	fc1 := newFakeConn()
	fc2 := newFakeConn()

	join(t, r, fc1)
	join(t, r, fc2)
	r.Inbox <- Ready{Slot: 1}
	r.Inbox <- Ready{Slot: 2}
	waitFor(t, fc1, protocol.MsgMatchStarted)

	r.Inbox <- Move{Slot: 1, Direction: game.Up}

	// The intent is sticky, so successive snapshots must show the paddle
	// climbing (until it clamps at the top).
	decode := func(env protocol.Envelope) protocol.State {
		st, err := protocol.DecodePayload[protocol.State](env)
		if err != nil {
			t.Fatalf("decode state: %v", err)
		}
		return st
	}
	timeout := time.After(2 * time.Second)
	var prev *protocol.State
	for {
		select {
		case b := <-fc1.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil || env.T != protocol.MsgState {
				continue
			}
			st := decode(env)
			if prev != nil && st.P1.Y < prev.P1.Y {
				return // saw it move up
			}
			prev = &st
		case <-timeout:
			t.Fatalf("paddle never moved up")
		}
	}
}

func TestLeaveNotifiesOpponentAndStopsStream(t *testing.T) {
	r := newTestRoom(t)
	fc1 := newFakeConn()
	fc2 := newFakeConn()

	closed := make(chan string, 1)
	r.OnClose = func(code string) { closed <- code }

	join(t, r, fc1)
	join(t, r, fc2)
	r.Inbox <- Ready{Slot: 1}
	r.Inbox <- Ready{Slot: 2}
	waitFor(t, fc2, protocol.MsgMatchStarted)
	waitFor(t, fc2, protocol.MsgState)

	r.Inbox <- Leave{Slot: 1}
	waitFor(t, fc2, protocol.MsgOpponentLeft)

	select {
	case code := <-closed:
		if code != "TEST42" {
			t.Fatalf("OnClose code = %q, want TEST42", code)
		}
	case <-time.After(time.Second):
		t.Fatalf("OnClose was never called")
	}

	// The ticker was stopped before the notice went out, so nothing may
	// arrive after it.
	assertNever(t, fc2, protocol.MsgState, 150*time.Millisecond)
}

// TestTickBroadcastsWinnerAndStopsTicker drives the room synchronously
// (no Run goroutine) so the winning tick is deterministic.
func TestTickBroadcastsWinnerAndStopsTicker(t *testing.T) {
	r := New("TEST42", rand.New(rand.NewSource(1)), zap.NewNop().Sugar())
	fc1 := newFakeConn()
	fc2 := newFakeConn()

	reply := make(chan JoinResult, 2)
	r.handleCommand(Join{Conn: fc1, Reply: reply})
	r.handleCommand(Join{Conn: fc2, Reply: reply})
	r.handleCommand(Ready{Slot: 1})
	r.handleCommand(Ready{Slot: 2})

	// Slot 1 is at match point and the ball is about to cross the right
	// edge past a paddle parked at the top.
	r.engine.Restore(game.State{
		Status: game.StatusPlaying,
		Ball:   game.Ball{X: game.CanvasWidth - 5, Y: 300, VX: 6},
		P1:     game.Paddle{Y: 250, Score: game.WinningScore - 1},
		P2:     game.Paddle{Y: 0},
	})
	r.tick()

	env := waitFor(t, fc2, protocol.MsgMatchOver)
	over, err := protocol.DecodePayload[protocol.MatchOver](env)
	if err != nil {
		t.Fatalf("decode match over: %v", err)
	}
	if over.Winner != 1 {
		t.Fatalf("winner = %d, want 1", over.Winner)
	}
	if r.ticker != nil {
		t.Fatalf("ticker still armed after match over")
	}
	if r.phase != finished {
		t.Fatalf("phase = %d, want finished", r.phase)
	}
}
