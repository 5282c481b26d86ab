// Package session holds the per-slot automation session state: target
// configuration, obfuscated credentials, running statistics, and the bounded
// recent-post history. Sessions live in a fixed pool for the process
// lifetime; they are reset or cleared, never destroyed.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coldhawk/coldhawk/internal/board"
	"github.com/coldhawk/coldhawk/internal/event"
	"github.com/coldhawk/coldhawk/internal/secret"
)

// Defaults applied to freshly created sessions.
const (
	DefaultWriteCount     = 1
	DefaultRunHours       = 1
	DefaultUploadInterval = 30 // seconds

	// MaxRecentPosts caps the recent-post history; inserts drop the oldest
	// entry beyond this.
	MaxRecentPosts = 20
)

// Session is the state of one automation slot. Configuration fields are
// edited between runs by the owning front end; runtime statistics are
// mutated by the owning worker through the locked methods below. A session
// is owned by at most one live worker at a time.
type Session struct {
	ID   int
	Name string

	Board   board.Board
	Title   string
	Content string

	UserID string
	// obfuscated holds the password in its at-rest form. The plaintext is
	// recoverable only through the keyring that obfuscated it and is never
	// serialized.
	obfuscated string

	WriteCount     int
	RunHours       int // 0 = unbounded
	UploadInterval int // seconds

	mu          sync.Mutex
	state       event.State
	totalPosts  int
	success     int
	fail        int
	lastRunAt   time.Time
	recentPosts []board.PostRef
}

// New creates a session with the given slot id and default configuration.
func New(id int) *Session {
	return &Session{
		ID:             id,
		Name:           fmt.Sprintf("tab-%d", id),
		Board:          board.DefaultBoard,
		WriteCount:     DefaultWriteCount,
		RunHours:       DefaultRunHours,
		UploadInterval: DefaultUploadInterval,
		state:          event.StateStopped,
	}
}

// SetPassword obfuscates and stores the password. The plaintext is trimmed
// first so a whitespace-only password is equivalent to none.
func (s *Session) SetPassword(plain string, kr *secret.Keyring) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obfuscated = kr.Obfuscate(strings.TrimSpace(plain))
}

// Password reveals the stored password. Returns an empty string if no
// password is set or the keyring cannot reveal it.
func (s *Session) Password(kr *secret.Keyring) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return kr.Reveal(s.obfuscated)
}

// HasPassword reports whether a credential is stored.
func (s *Session) HasPassword() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.obfuscated != ""
}

// Startable reports whether the session has everything a run requires:
// user id, password, title, and content, all non-blank after trimming.
func (s *Session) Startable() bool {
	return strings.TrimSpace(s.UserID) != "" &&
		s.HasPassword() &&
		strings.TrimSpace(s.Title) != "" &&
		strings.TrimSpace(s.Content) != ""
}

// RunDuration returns the configured run bound, or zero for unbounded.
func (s *Session) RunDuration() time.Duration {
	return time.Duration(s.RunHours) * time.Hour
}

// Interval returns the configured upload interval with the scheduler-yield
// floor applied.
func (s *Session) Interval() time.Duration {
	iv := time.Duration(s.UploadInterval) * time.Second
	if iv < 200*time.Millisecond {
		iv = 200 * time.Millisecond
	}
	return iv
}

// State returns the session's current worker state.
func (s *Session) State() event.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState records a worker state transition.
func (s *Session) SetState(state event.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// IsRunning reports whether the session is in an active (non-terminal) state.
func (s *Session) IsRunning() bool {
	switch s.State() {
	case event.StateLogin, event.StateRunning, event.StateWaiting:
		return true
	}
	return false
}

// AddPost records a post created by this process in the current session's
// lifetime. The newest entry is first; the history is capped at
// MaxRecentPosts with drop-oldest-on-insert. Success statistics are bumped
// together with the insert.
func (s *Session) AddPost(ref board.PostRef) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recentPosts = append([]board.PostRef{ref}, s.recentPosts...)
	if len(s.recentPosts) > MaxRecentPosts {
		s.recentPosts = s.recentPosts[:MaxRecentPosts]
	}
	s.totalPosts++
	s.success++
}

// RecentPosts returns a copy of the recent-post history, newest first.
func (s *Session) RecentPosts() []board.PostRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]board.PostRef, len(s.recentPosts))
	copy(out, s.recentPosts)
	return out
}

// ClearPosts empties the recent-post history. Only explicit user-initiated
// deletion (a purge) clears it; a worker starting a run never does. Remote
// posts are never touched by a clear.
func (s *Session) ClearPosts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recentPosts = nil
}

// IncrementFail bumps the failure counter.
func (s *Session) IncrementFail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail++
}

// Stats returns the running counters: total posts, successes, failures.
func (s *Session) Stats() (total, success, fail int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPosts, s.success, s.fail
}

// SuccessRate returns the success percentage over all attempts, or 0 when
// nothing has been attempted.
func (s *Session) SuccessRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempts := s.success + s.fail
	if attempts == 0 {
		return 0
	}
	return float64(s.success) / float64(attempts) * 100
}

// ResetStats zeroes the counters and the last-run time. The recent-post
// history is left alone; ClearPosts handles that separately.
func (s *Session) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalPosts = 0
	s.success = 0
	s.fail = 0
	s.lastRunAt = time.Time{}
}

// UpdateLastRun stamps the last-run time with the current time.
func (s *Session) UpdateLastRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRunAt = time.Now()
}

// LastRunAt returns the last-run time; zero means the session never ran.
func (s *Session) LastRunAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}
