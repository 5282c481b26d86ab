// Package supervisor owns the worker lifecycle: paced starts, bounded
// stops, and process shutdown. It never blocks indefinitely on a worker;
// one stuck in a network call is abandoned to finish on its own rather
// than held onto.
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coldhawk/coldhawk/internal/board"
	"github.com/coldhawk/coldhawk/internal/config"
	"github.com/coldhawk/coldhawk/internal/errors"
	"github.com/coldhawk/coldhawk/internal/event"
	"github.com/coldhawk/coldhawk/internal/logging"
	"github.com/coldhawk/coldhawk/internal/secret"
	"github.com/coldhawk/coldhawk/internal/session"
	"github.com/coldhawk/coldhawk/internal/worker"
)

// Client is the full client surface the supervisor hands to workers and
// purge flows. internal/client.Client satisfies it.
type Client interface {
	worker.AutomationClient

	// DeleteOldestPost removes the oldest own post on the board.
	DeleteOldestPost(ctx context.Context, b board.Board) (board.PostRef, bool)

	// DeleteAllOwnPosts removes every own post within pages listing pages.
	DeleteAllOwnPosts(ctx context.Context, b board.Board, pages int, pacing time.Duration, onProgress func(current, total, success int)) (int, int, error)
}

// ClientFactory builds a fresh client (with its own cookie jar) for each
// run. Sessions must not share login state.
type ClientFactory func() (Client, error)

type runningWorker struct {
	w      *worker.Worker
	cancel context.CancelFunc
}

// Supervisor starts and stops session workers.
type Supervisor struct {
	newClient ClientFactory
	keyring   *secret.Keyring
	bus       *event.Bus
	logger    *logging.Logger
	cfg       config.EngineConfig

	mu      sync.Mutex
	workers map[int]*runningWorker

	// startMark is the pacing watermark: no worker starts before it.
	paceMu    sync.Mutex
	startMark time.Time

	// sleep is swapped out by tests.
	sleep func(time.Duration)
}

// New creates a Supervisor.
func New(factory ClientFactory, kr *secret.Keyring, bus *event.Bus, logger *logging.Logger, cfg config.EngineConfig) *Supervisor {
	return &Supervisor{
		newClient: factory,
		keyring:   kr,
		bus:       bus,
		logger:    logger.WithComponent("supervisor"),
		cfg:       cfg,
		workers:   make(map[int]*runningWorker),
		sleep:     time.Sleep,
	}
}

// Start launches a worker for the session. A session with a live worker is
// left alone with a warning; a session missing required fields is
// rejected. Consecutive starts are spaced out so a burst of sessions does
// not hit the site simultaneously.
func (sv *Supervisor) Start(s *session.Session) error {
	sv.mu.Lock()
	if rw, ok := sv.workers[s.ID]; ok && alive(rw.w) {
		sv.mu.Unlock()
		sv.emit(s, "already running", event.LevelWarning)
		return nil
	}
	sv.mu.Unlock()

	if !s.Startable() {
		sv.emit(s, "user id, password, title and content are all required", event.LevelError)
		return errors.NewSessionError("missing required fields", errors.ErrSessionNotStartable).
			WithSessionID(s.ID)
	}

	sv.pace()

	cl, err := sv.newClient()
	if err != nil {
		sv.emit(s, "failed to prepare client", event.LevelError)
		return errors.NewSessionError("client construction failed", err).WithSessionID(s.ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := worker.New(s, cl, sv.keyring, sv.bus, sv.logger, worker.Options{
		KeepLimit: sv.cfg.KeepLimit,
		MaxPages:  sv.cfg.EvictionMaxPages,
	})

	// Re-check under the lock: a racing Start for the same id may have
	// registered a worker while this one was pacing or building its client.
	sv.mu.Lock()
	if rw, ok := sv.workers[s.ID]; ok && alive(rw.w) {
		sv.mu.Unlock()
		cancel()
		sv.emit(s, "already running", event.LevelWarning)
		return nil
	}
	sv.workers[s.ID] = &runningWorker{w: w, cancel: cancel}
	sv.mu.Unlock()

	go w.Run(ctx)

	sv.logger.Info("worker started", "session_id", s.ID, "run_id", w.RunID())
	sv.emit(s, "worker started", event.LevelSuccess)
	return nil
}

// Stop cancels the session's worker and waits briefly for it to exit. A
// worker that does not come back within the stop timeout is abandoned; it
// will observe the cancellation at its next checkpoint.
func (sv *Supervisor) Stop(sessionID int) {
	sv.mu.Lock()
	rw, ok := sv.workers[sessionID]
	if ok {
		delete(sv.workers, sessionID)
	}
	sv.mu.Unlock()
	if !ok {
		return
	}

	rw.cancel()
	sv.join(rw.w, sv.cfg.StopTimeout(), sessionID)
}

// StopAll stops every live worker.
func (sv *Supervisor) StopAll() {
	sv.mu.Lock()
	workers := sv.workers
	sv.workers = make(map[int]*runningWorker)
	sv.mu.Unlock()

	for _, rw := range workers {
		rw.cancel()
	}
	for id, rw := range workers {
		sv.join(rw.w, sv.cfg.StopTimeout(), id)
	}
}

// Cleanup is the shutdown path: cancel everything and give each worker
// the longer cleanup timeout to finish.
func (sv *Supervisor) Cleanup() {
	sv.mu.Lock()
	workers := sv.workers
	sv.workers = make(map[int]*runningWorker)
	sv.mu.Unlock()

	for _, rw := range workers {
		rw.cancel()
	}
	for id, rw := range workers {
		sv.join(rw.w, sv.cfg.CleanupTimeout(), id)
	}
}

// Running reports whether the session has a live worker.
func (sv *Supervisor) Running(sessionID int) bool {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	rw, ok := sv.workers[sessionID]
	return ok && alive(rw.w)
}

// RunningCount returns the number of live workers.
func (sv *Supervisor) RunningCount() int {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	n := 0
	for _, rw := range sv.workers {
		if alive(rw.w) {
			n++
		}
	}
	return n
}

func alive(w *worker.Worker) bool {
	select {
	case <-w.Done():
		return false
	default:
		return true
	}
}

func (sv *Supervisor) join(w *worker.Worker, timeout time.Duration, sessionID int) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-w.Done():
	case <-t.C:
		sv.logger.Warn("worker did not exit in time, abandoning",
			"session_id", sessionID, "run_id", w.RunID(), "timeout", timeout)
	}
}

// pace enforces the minimum gap between worker starts. Each caller claims
// its slot under the lock and sleeps outside it, so concurrent starts are
// serialized pairwise without blocking each other on the sleep.
func (sv *Supervisor) pace() {
	spacing := sv.cfg.StartSpacing()
	if spacing <= 0 {
		return
	}

	sv.paceMu.Lock()
	now := time.Now()
	var wait time.Duration
	if next := sv.startMark.Add(spacing); next.After(now) {
		wait = next.Sub(now)
	}
	sv.startMark = now.Add(wait)
	sv.paceMu.Unlock()

	if wait > 0 {
		sv.sleep(wait)
	}
}

func (sv *Supervisor) emit(s *session.Session, message string, level event.Level) {
	sv.bus.Publish(event.NewLogEvent(s.ID, s.Name, fmt.Sprintf("[%s] %s", s.Name, message), level))
}
