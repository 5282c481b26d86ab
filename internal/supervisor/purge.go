package supervisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/coldhawk/coldhawk/internal/board"
	"github.com/coldhawk/coldhawk/internal/errors"
	"github.com/coldhawk/coldhawk/internal/event"
	"github.com/coldhawk/coldhawk/internal/session"
)

// purgeListingPages is how many listing pages a full purge walks. Bulk
// deletion is a user-facing action on recent posts, not a crawl of the
// account's whole history.
const purgeListingPages = 2

// PurgeAll logs in as the session's account and deletes every own post on
// its board, pacing requests and reporting progress on the bus. The
// session's local history is cleared afterwards. Runs independently of any
// worker; callers should stop the session's worker first.
func (sv *Supervisor) PurgeAll(ctx context.Context, s *session.Session) (int, int, error) {
	cl, err := sv.purgeClient(ctx, s)
	if err != nil {
		return 0, 0, err
	}

	onProgress := func(current, total, success int) {
		sv.bus.Publish(event.NewProgressEvent(s.ID, current, total, success))
	}

	total, success, err := cl.DeleteAllOwnPosts(ctx, s.Board, purgeListingPages, sv.cfg.DeletePacing(), onProgress)
	if err != nil {
		sv.emit(s, "purge aborted", event.LevelError)
		sv.setState(s, event.StateError)
		return total, success, errors.NewSessionError("purge failed", err).WithSessionID(s.ID)
	}

	s.ClearPosts()

	switch {
	case total == 0:
		sv.emit(s, "nothing to delete", event.LevelInfo)
	case success == total:
		sv.emit(s, fmt.Sprintf("deleted %d posts", success), event.LevelSuccess)
	default:
		sv.emit(s, fmt.Sprintf("partially deleted: %d/%d", success, total), event.LevelWarning)
	}
	sv.setState(s, event.StateStopped)
	return total, success, nil
}

// PurgeOldest logs in and deletes the single oldest own post on the
// session's board.
func (sv *Supervisor) PurgeOldest(ctx context.Context, s *session.Session) (board.PostRef, bool, error) {
	cl, err := sv.purgeClient(ctx, s)
	if err != nil {
		return board.PostRef{}, false, err
	}

	ref, ok := cl.DeleteOldestPost(ctx, s.Board)
	if !ok {
		sv.emit(s, "no post to delete", event.LevelInfo)
	} else {
		sv.emit(s, fmt.Sprintf("deleted oldest post %s", ref.PostID), event.LevelSuccess)
	}
	sv.setState(s, event.StateStopped)
	return ref, ok, nil
}

// purgeClient validates credentials, builds a fresh client, and logs it
// in. Purges need an account but not the posting fields.
func (sv *Supervisor) purgeClient(ctx context.Context, s *session.Session) (Client, error) {
	if strings.TrimSpace(s.UserID) == "" || !s.HasPassword() {
		sv.emit(s, "user id and password are required", event.LevelError)
		return nil, errors.NewSessionError("missing credentials", errors.ErrSessionNotStartable).
			WithSessionID(s.ID)
	}

	cl, err := sv.newClient()
	if err != nil {
		return nil, errors.NewSessionError("client construction failed", err).WithSessionID(s.ID)
	}

	sv.setState(s, event.StateRunning)
	if err := cl.Login(ctx, s.UserID, s.Password(sv.keyring)); err != nil {
		sv.emit(s, "login failed", event.LevelError)
		sv.setState(s, event.StateError)
		return nil, errors.NewSessionError("purge login failed", err).WithSessionID(s.ID)
	}
	return cl, nil
}

func (sv *Supervisor) setState(s *session.Session, state event.State) {
	s.SetState(state)
	sv.bus.Publish(event.NewStateChangedEvent(s.ID, state))
}
