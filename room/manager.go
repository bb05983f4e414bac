package room

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RoomInfo is returned by the HTTP API for the room list.
type RoomInfo struct {
	Code    string `json:"code"`
	Players int    `json:"players"`
}

// Manager is the session directory: it allocates codes, looks up live
// matches and evicts rooms once they terminate. The mutex guards only the
// map and is never held across a broadcast or a tick.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	log   *zap.SugaredLogger
}

func NewManager(log *zap.SugaredLogger) *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
		log:   log,
	}
}

// Codes avoid 0/O/1/I so they survive being read out loud.
const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Create allocates a room under a fresh unique code and starts its
// goroutine. Each room gets its own time-seeded RNG for serves.
func (m *Manager) Create() *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		code := generateCode(6)
		if _, exists := m.rooms[code]; exists {
			continue
		}
		r := New(code, mrand.New(mrand.NewSource(time.Now().UnixNano())), m.log)
		r.OnClose = func(c string) {
			m.remove(c)
		}
		m.rooms[code] = r
		go r.Run()
		m.log.Infow("room created", "room", code)
		return r
	}
}

// Get looks up a live room. Codes are case-insensitive.
func (m *Manager) Get(code string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[strings.ToUpper(code)]
	return r, ok
}

func (m *Manager) remove(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[code]; ok {
		r.Stop()
		delete(m.rooms, code)
		m.log.Infow("room evicted", "room", code)
	}
}

// Count returns the number of live rooms.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// List returns all live rooms with code and player count.
func (m *Manager) List() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for code, r := range m.rooms {
		out = append(out, RoomInfo{Code: code, Players: r.NumPlayers()})
	}
	return out
}

func generateCode(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = codeChars[idx.Int64()]
	}
	return string(b)
}
