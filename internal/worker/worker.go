// Package worker runs one session's automation loop: login, write cycles,
// eviction of old posts, and the paced waits in between. A worker owns its
// session for the duration of a run and reports everything through the
// event bus.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/coldhawk/coldhawk/internal/event"
	"github.com/coldhawk/coldhawk/internal/logging"
	"github.com/coldhawk/coldhawk/internal/secret"
	"github.com/coldhawk/coldhawk/internal/session"
)

// Options tunes a worker's eviction pass.
type Options struct {
	// KeepLimit is how many of the newest own posts survive eviction.
	KeepLimit int
	// MaxPages bounds the listing walk during eviction.
	MaxPages int
}

// DefaultOptions matches the engine defaults.
func DefaultOptions() Options {
	return Options{KeepLimit: 3, MaxPages: 50}
}

// waitSlice is the longest single sleep during an interval wait. Slicing
// keeps stop latency bounded regardless of the configured interval.
const waitSlice = time.Second

// Worker executes one run of a session.
type Worker struct {
	session *session.Session
	client  AutomationClient
	keyring *secret.Keyring
	bus     *event.Bus
	logger  *logging.Logger
	opts    Options

	runID string
	done  chan struct{}

	// wroteThisRun gates eviction: nothing is ever deleted before this
	// run has created at least one post.
	wroteThisRun bool
}

// New creates a worker for one run of the given session.
func New(s *session.Session, client AutomationClient, kr *secret.Keyring, bus *event.Bus, logger *logging.Logger, opts Options) *Worker {
	runID := uuid.NewString()[:8]
	return &Worker{
		session: s,
		client:  client,
		keyring: kr,
		bus:     bus,
		logger:  logger.WithSession(s.ID).WithRun(runID),
		opts:    opts,
		runID:   runID,
		done:    make(chan struct{}),
	}
}

// RunID identifies this run in logs.
func (w *Worker) RunID() string {
	return w.runID
}

// Done is closed when the run has fully exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Run executes the session loop until the context is canceled, the
// configured duration elapses, or login fails. It always leaves the
// session in a terminal state.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("worker panicked", "panic", r, "stack", string(debug.Stack()))
			w.emit(fmt.Sprintf("error: %v", r), event.LevelError)
			w.setState(event.StateError)
		}
	}()

	s := w.session

	w.setState(event.StateLogin)
	if err := w.client.Login(ctx, s.UserID, s.Password(w.keyring)); err != nil {
		w.logger.Error("login failed", "error", err)
		w.emit("login failed", event.LevelError)
		w.setState(event.StateError)
		return
	}
	w.emit("login complete", event.LevelSuccess)
	s.UpdateLastRun()

	w.reconcile(ctx)

	start := time.Now()
	bound := s.RunDuration()
	interval := s.Interval()
	postCount := 0
	batch := 0
	cadenceLogged := false

	for ctx.Err() == nil {
		if bound > 0 && time.Since(start) >= bound {
			w.emit("configured run time reached", event.LevelInfo)
			break
		}

		w.setState(event.StateRunning)
		batch++

		if batch > 1 && !cadenceLogged {
			w.emit(fmt.Sprintf("re-uploading every %s", formatInterval(s.UploadInterval)), event.LevelInfo)
			cadenceLogged = true
		}

		successInBatch := 0
		for i := 0; i < s.WriteCount; i++ {
			if ctx.Err() != nil {
				break
			}

			ref, err := w.client.CreatePost(ctx, s.Board, s.Title, s.Content)
			if err != nil {
				// Per-item failures stay silent on the bus; long runs
				// would otherwise drown the log.
				w.logger.Debug("post creation failed", "error", err)
				s.IncrementFail()
				continue
			}

			postCount++
			successInBatch++
			w.wroteThisRun = true
			s.AddPost(ref)

			w.bus.Publish(event.NewPostCreatedEvent(s.ID, ref))
			w.bus.Publish(event.NewProgressEvent(s.ID, i+1, s.WriteCount, successInBatch))
			if batch == 1 {
				w.emit("post created", event.LevelSuccess)
			}

			w.evict(ctx)
		}

		w.setState(event.StateWaiting)
		if !w.wait(ctx, interval) {
			break
		}
	}

	if ctx.Err() == nil {
		w.emit(fmt.Sprintf("run complete (%d posts written)", postCount), event.LevelSuccess)
	} else {
		w.emit("stopped", event.LevelWarning)
	}
	w.setState(event.StateStopped)
}

// reconcile compares the server's view of own posts against the local
// history at run start. Observation only: nothing is ever deleted here.
func (w *Worker) reconcile(ctx context.Context) {
	local := len(w.session.RecentPosts())
	remote, err := w.client.ListOwnPosts(ctx, w.session.Board, 1)
	if err != nil {
		w.logger.Warn("startup post check failed, continuing", "error", err)
		return
	}
	w.logger.Info("startup post check", "remote_posts", len(remote), "local_recent", local)
}

// wait sleeps the interval in slices so cancellation is honored within a
// slice. Returns false when the context was canceled during the wait.
func (w *Worker) wait(ctx context.Context, interval time.Duration) bool {
	remain := interval
	for remain > 0 {
		slice := remain
		if slice > waitSlice {
			slice = waitSlice
		}
		t := time.NewTimer(slice)
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}
		remain -= slice
	}
	return true
}

func (w *Worker) setState(state event.State) {
	w.session.SetState(state)
	w.bus.Publish(event.NewStateChangedEvent(w.session.ID, state))
}

func (w *Worker) emit(message string, level event.Level) {
	w.bus.Publish(event.NewLogEvent(w.session.ID, w.session.Name, message, level))
}

// formatInterval renders a seconds count the way the cadence log shows it:
// "45s", "2m", "1m 30s".
func formatInterval(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	m, s := seconds/60, seconds%60
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}
