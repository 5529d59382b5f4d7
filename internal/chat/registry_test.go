package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubMember struct {
	id string

	mu     sync.Mutex
	events []string
}

func (s *stubMember) ID() string { return s.id }

func (s *stubMember) WriteEvent(event string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *stubMember) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

func TestRegistryMembership(t *testing.T) {
	r := NewRegistry()
	a := &stubMember{id: "a"}
	b := &stubMember{id: "b"}

	assert.Equal(t, 0, r.Count("room1"))

	r.Add("room1", a)
	r.Add("room1", b)
	assert.Equal(t, 2, r.Count("room1"))

	r.Remove("room1", "a")
	assert.Equal(t, 1, r.Count("room1"))

	// Idempotent removal, including unknown rooms
	r.Remove("room1", "a")
	r.Remove("nope", "a")
	assert.Equal(t, 1, r.Count("room1"))

	r.Remove("room1", "b")
	assert.Equal(t, 0, r.Count("room1"))
}

func TestRegistryBroadcast(t *testing.T) {
	r := NewRegistry()
	a := &stubMember{id: "a"}
	b := &stubMember{id: "b"}
	other := &stubMember{id: "c"}

	r.Add("room1", a)
	r.Add("room1", b)
	r.Add("room2", other)

	r.Broadcast("room1", "hello", nil)

	assert.Equal(t, []string{"hello"}, a.received())
	assert.Equal(t, []string{"hello"}, b.received())
	// Rooms never leak into each other
	assert.Empty(t, other.received())
}

func TestRegistryBroadcastExcept(t *testing.T) {
	r := NewRegistry()
	a := &stubMember{id: "a"}
	b := &stubMember{id: "b"}

	r.Add("room1", a)
	r.Add("room1", b)

	r.BroadcastExcept("room1", "a", "signal", nil)

	assert.Empty(t, a.received())
	assert.Equal(t, []string{"signal"}, b.received())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m := &stubMember{id: string(rune('a' + n))}
			for j := 0; j < 100; j++ {
				r.Add("room1", m)
				r.Broadcast("room1", "tick", nil)
				r.Remove("room1", m.ID())
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Count("room1"))
}
