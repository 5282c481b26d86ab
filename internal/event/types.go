package event

import (
	"time"

	"github.com/coldhawk/coldhawk/internal/board"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g. "session.state_changed").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Level classifies a log event for display purposes.
type Level string

// Log levels carried by LogEvent. "success" is a display level, not a
// severity: the console sink renders it distinctly from plain info.
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelDebug   Level = "debug"
)

// State is a session worker's externally visible state.
type State string

// Worker states. Stopped and Error are terminal for a given run.
const (
	StateLogin   State = "login"
	StateRunning State = "running"
	StateWaiting State = "waiting"
	StateStopped State = "stopped"
	StateError   State = "error"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Session Lifecycle Events
// -----------------------------------------------------------------------------

// LogEvent is a human-readable milestone line from a worker or the
// supervisor. Per-item write failures are intentionally not emitted as
// LogEvents to keep output readable during long unattended runs.
type LogEvent struct {
	baseEvent
	SessionID   int    // Session the line belongs to (-1 for engine-wide lines)
	SessionName string // Human label for display
	Message     string
	Level       Level
}

// NewLogEvent creates a LogEvent.
func NewLogEvent(sessionID int, sessionName, message string, level Level) LogEvent {
	return LogEvent{
		baseEvent:   newBaseEvent("session.log"),
		SessionID:   sessionID,
		SessionName: sessionName,
		Message:     message,
		Level:       level,
	}
}

// StateChangedEvent is emitted on every worker state transition.
type StateChangedEvent struct {
	baseEvent
	SessionID int
	State     State
}

// NewStateChangedEvent creates a StateChangedEvent.
func NewStateChangedEvent(sessionID int, state State) StateChangedEvent {
	return StateChangedEvent{
		baseEvent: newBaseEvent("session.state_changed"),
		SessionID: sessionID,
		State:     state,
	}
}

// ProgressEvent reports batch progress within a worker's current write batch
// or a bulk-delete operation.
type ProgressEvent struct {
	baseEvent
	SessionID    int
	Current      int // 1-based index of the item just processed
	Total        int // Batch size
	SuccessCount int // Successes so far in this batch
}

// NewProgressEvent creates a ProgressEvent.
func NewProgressEvent(sessionID, current, total, successCount int) ProgressEvent {
	return ProgressEvent{
		baseEvent:    newBaseEvent("session.progress"),
		SessionID:    sessionID,
		Current:      current,
		Total:        total,
		SuccessCount: successCount,
	}
}

// PostCreatedEvent is emitted after each successfully created and resolved
// post, before the eviction pass runs.
type PostCreatedEvent struct {
	baseEvent
	SessionID int
	Post      board.PostRef
}

// NewPostCreatedEvent creates a PostCreatedEvent.
func NewPostCreatedEvent(sessionID int, post board.PostRef) PostCreatedEvent {
	return PostCreatedEvent{
		baseEvent: newBaseEvent("session.post_created"),
		SessionID: sessionID,
		Post:      post,
	}
}
