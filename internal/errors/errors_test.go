package errors

import (
	"fmt"
	"testing"
	"time"
)

func TestClientErrorFormatting(t *testing.T) {
	err := NewClientError("write form fetch failed", ErrMissingToken).
		WithOperation("create_post").
		WithURL("https://example.com/write")

	msg := err.Error()
	want := "client error [op=create_post, url=https://example.com/write]: write form fetch failed: form token missing"
	if msg != want {
		t.Errorf("Error() = %q, want %q", msg, want)
	}

	if !Is(err, ErrMissingToken) {
		t.Error("ClientError should match its cause via errors.Is")
	}
}

func TestSessionErrorFormatting(t *testing.T) {
	err := NewSessionError("start rejected", ErrSessionAlreadyRunning).WithSessionID(3)
	want := "session error [session=3]: start rejected: session already running"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	// SessionID unset omits the bracket context.
	plain := NewSessionError("load failed", nil)
	if plain.Error() != "session error: load failed" {
		t.Errorf("Error() = %q", plain.Error())
	}
}

func TestWorkerErrorContext(t *testing.T) {
	err := NewWorkerError("run aborted", ErrCanceled).WithSessionID(1).WithRunID("abc123")
	want := "worker error [session=1, run=abc123]: run aborted: operation canceled"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorsAs(t *testing.T) {
	var target *ClientError
	err := fmt.Errorf("wrapped: %w", NewClientError("boom", nil))
	if !As(err, &target) {
		t.Fatal("As should find the ClientError through wrapping")
	}
	if target.Error() != "client error: boom" {
		t.Errorf("unexpected message %q", target.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("must not be blank").WithField("title").WithValue("")

	if !Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
	if !IsUserFacing(err) {
		t.Error("ValidationError should be user facing")
	}
	if IsRetryable(err) {
		t.Error("ValidationError should not be retryable")
	}
}

func TestTimeoutErrorRetryable(t *testing.T) {
	err := NewTimeoutError("waiting for worker stop", 500*time.Millisecond)

	if !IsRetryable(err) {
		t.Error("timeout errors should be retryable by default")
	}
	if !Is(err, ErrTimeout) {
		t.Error("TimeoutError should match ErrTimeout")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("session", "7")
	if err.Error() != "session '7' not found" {
		t.Errorf("Error() = %q", err.Error())
	}

	withCause := NewNotFoundError("post", "123").WithCause(ErrBadStatus)
	if !Is(withCause, ErrBadStatus) {
		t.Error("cause should be matchable")
	}
}

func TestGetSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Severity
	}{
		{"nil", nil, SeverityDebug},
		{"plain error", New("boom"), SeverityError},
		{"validation", NewValidationError("bad"), SeverityWarning},
		{"client", NewClientError("boom", nil), SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSeverity(tt.err); got != tt.want {
				t.Errorf("GetSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityWarning.String() != "warning" {
		t.Errorf("SeverityWarning.String() = %q", SeverityWarning.String())
	}
	if Severity(99).String() != "unknown" {
		t.Errorf("unknown severity should stringify to 'unknown'")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should be nil")
	}

	err := Wrapf(ErrLoginFailed, "session %d", 2)
	if !Is(err, ErrLoginFailed) {
		t.Error("wrapped error should match sentinel")
	}
	if err.Error() != "session 2: login failed" {
		t.Errorf("Error() = %q", err.Error())
	}
}
