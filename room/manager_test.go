package room

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestManager() *Manager {
	return NewManager(zap.NewNop().Sugar())
}

func TestCreateAllocatesUniqueCodes(t *testing.T) {
	m := newTestManager()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		r := m.Create()
		if len(r.Code) != 6 {
			t.Fatalf("code %q has length %d, want 6", r.Code, len(r.Code))
		}
		for _, c := range r.Code {
			if !strings.ContainsRune(codeChars, c) {
				t.Fatalf("code %q contains %q, outside the code alphabet", r.Code, c)
			}
		}
		if seen[r.Code] {
			t.Fatalf("duplicate code %q", r.Code)
		}
		seen[r.Code] = true
	}
	if m.Count() != 50 {
		t.Fatalf("count = %d, want 50", m.Count())
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	m := newTestManager()
	r := m.Create()

	got, ok := m.Get(strings.ToLower(r.Code))
	if !ok || got != r {
		t.Fatalf("lowercase lookup of %q failed", r.Code)
	}
	if _, ok := m.Get("NOSUCH"); ok {
		t.Fatalf("lookup of unknown code succeeded")
	}
}

func TestLeaveEvictsRoomAndCodeBecomesUnusable(t *testing.T) {
	m := newTestManager()
	r := m.Create()
	fc := newFakeConn()

	reply := make(chan JoinResult, 1)
	r.Post(Join{Conn: fc, Reply: reply})
	res := <-reply
	if !res.OK {
		t.Fatalf("join failed: %+v", res)
	}

	r.Post(Leave{Slot: res.Slot})

	deadline := time.After(time.Second)
	for {
		if _, ok := m.Get(r.Code); !ok {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("room %q was never evicted", r.Code)
		case <-time.After(5 * time.Millisecond):
		}
	}

	// A stale code must reject joins outright.
	if _, ok := m.Get(r.Code); ok {
		t.Fatalf("evicted code %q still resolves", r.Code)
	}
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatalf("room goroutine was never stopped")
	}
}
