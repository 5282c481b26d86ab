package session

import (
	"github.com/coldhawk/coldhawk/internal/errors"
)

// DefaultPoolSize is the number of automation slots created at startup.
const DefaultPoolSize = 10

// Pool is the fixed set of automation slots. Slot ids are assigned once at
// creation (1-based) and stay stable for the pool's lifetime.
type Pool struct {
	sessions []*Session
}

// NewPool creates a pool of n sessions with ids 1..n.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = DefaultPoolSize
	}
	p := &Pool{sessions: make([]*Session, 0, n)}
	for i := 1; i <= n; i++ {
		p.sessions = append(p.sessions, New(i))
	}
	return p
}

// Get returns the session with the given id.
func (p *Pool) Get(id int) (*Session, error) {
	for _, s := range p.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errors.NewSessionError("unknown slot", errors.ErrSessionNotFound).WithSessionID(id)
}

// All returns the sessions in id order. The slice is shared; callers must
// not mutate it.
func (p *Pool) All() []*Session {
	return p.sessions
}

// Size returns the number of slots.
func (p *Pool) Size() int {
	return len(p.sessions)
}
