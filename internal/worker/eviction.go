package worker

import (
	"context"
	"sort"
	"strconv"

	"github.com/coldhawk/coldhawk/internal/board"
)

// evict trims the account's own posts down to the newest KeepLimit after a
// successful write. The pass never runs before this run has written at
// least one post, so a fresh start cannot destroy an earlier session's
// posts on a mere login. Every failure in here is swallowed: eviction is
// housekeeping, not correctness.
func (w *Worker) evict(ctx context.Context) {
	if !w.wroteThisRun {
		return
	}

	posts, err := w.client.ListOwnPosts(ctx, w.session.Board, w.opts.MaxPages)
	if err != nil {
		w.logger.Debug("eviction listing failed", "error", err)
		return
	}
	if len(posts) <= w.opts.KeepLimit {
		return
	}

	sortNewestFirst(posts)

	// Delete beyond the keep limit, oldest first.
	doomed := posts[w.opts.KeepLimit:]
	for i := len(doomed) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return
		}
		if !w.client.DeletePost(ctx, doomed[i]) {
			w.logger.Debug("eviction delete unverified", "post", doomed[i].String())
		}
	}
}

// sortNewestFirst orders posts by numeric id descending. Pairs where
// either id is non-numeric keep their relative listing order; the sort is
// stable so a wholly non-numeric listing comes through untouched.
func sortNewestFirst(posts []board.PostRef) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, errA := strconv.Atoi(posts[i].PostID)
		b, errB := strconv.Atoi(posts[j].PostID)
		if errA != nil || errB != nil {
			return false
		}
		return a > b
	})
}
