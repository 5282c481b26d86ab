package worker

import (
	"context"

	"github.com/coldhawk/coldhawk/internal/board"
)

// AutomationClient is the slice of the forum client a worker drives. The
// concrete implementation lives in internal/client; tests substitute fakes.
type AutomationClient interface {
	// Login authenticates the client's session state.
	Login(ctx context.Context, userID, password string) error

	// CreatePost submits a post and resolves its identity.
	CreatePost(ctx context.Context, b board.Board, title, content string) (board.PostRef, error)

	// ListOwnPosts returns the account's own posts, newest first, walking
	// up to pages listing pages.
	ListOwnPosts(ctx context.Context, b board.Board, pages int) ([]board.PostRef, error)

	// DeletePost removes a post and reports whether it verified as gone.
	DeletePost(ctx context.Context, ref board.PostRef) bool
}
