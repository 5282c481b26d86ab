package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/coldhawk/coldhawk/internal/board"
)

const multiDeletePath = "/board/bbs/include/multi_delete.php"

// deletedMarkers are the phrases the site renders on a view page for a
// post that no longer exists or cannot be accessed.
var deletedMarkers = []string{
	"삭제된",
	"존재하지 않는",
	"없는 게시물",
	"잘못된 접근",
	"글이 없습니다",
}

// DeletePost removes a post through the listing's multi-delete endpoint and
// reports whether the post is actually gone afterwards. The endpoint's own
// response is ignored entirely; only the independent verification fetch
// decides the outcome.
func (c *Client) DeletePost(ctx context.Context, ref board.PostRef) bool {
	viewURL := fmt.Sprintf("%s/board/powerbbs.php?query=view&name=%s&come_idx=%s&idx=%s&my=post",
		c.cfg.BaseURL, ref.Slug, ref.BoardID, ref.PostID)

	// Prime the server-side listing context the endpoint expects. Best
	// effort.
	if _, err := c.get(ctx, viewURL); err != nil {
		c.logger.Debug("delete priming fetch failed", "post", ref.String(), "error", err)
	}

	form := url.Values{}
	form.Set("come_idx", ref.BoardID)
	form.Set("p", "1")
	form.Set("l", ref.PostID)
	form.Set("my", "post")
	form.Set("name", ref.Slug)

	headers := map[string]string{
		"Origin":  c.cfg.BaseURL,
		"Referer": viewURL,
	}
	if _, err := c.postForm(ctx, c.cfg.BaseURL+multiDeletePath, form, headers); err != nil {
		c.logger.Debug("delete request failed", "post", ref.String(), "error", err)
	}

	deleted := c.verifyDeleted(ctx, ref)
	if deleted {
		c.logger.Info("post deleted", "post", ref.String())
	} else {
		c.logger.Warn("post still present after delete", "post", ref.String())
	}
	return deleted
}

// verifyDeleted fetches the post's view page and decides whether it is
// gone: a redirect away from the canonical URL or one of the site's
// deleted-post phrases means yes. An unreachable page counts as deleted,
// which errs toward the pessimistic side for an eviction pass.
func (c *Client) verifyDeleted(ctx context.Context, ref board.PostRef) bool {
	viewURL := fmt.Sprintf("%s/board/%s/%s/%s", c.cfg.BaseURL, ref.Slug, ref.BoardID, ref.PostID)

	resp, err := c.get(ctx, viewURL)
	if err != nil {
		return true
	}
	if resp.FinalURL != "" && resp.FinalURL != viewURL {
		return true
	}
	for _, marker := range deletedMarkers {
		if strings.Contains(resp.Body, marker) {
			return true
		}
	}
	return false
}

// DeleteOldestPost deletes the single oldest own post on the board, per
// the first listing page (last entry is the oldest). Returns the deleted
// post and whether the deletion verified, or ok=false when there was
// nothing to delete.
func (c *Client) DeleteOldestPost(ctx context.Context, b board.Board) (board.PostRef, bool) {
	posts, err := c.ListOwnPosts(ctx, b, 1)
	if err != nil || len(posts) == 0 {
		return board.PostRef{}, false
	}

	oldest := posts[len(posts)-1]
	return oldest, c.DeletePost(ctx, oldest)
}

// DeleteAllOwnPosts deletes every own post found within pages listing
// pages, pausing pacing between deletions. onProgress, when non-nil, is
// called after each attempt with the 1-based index, the total, and the
// verified-success count so far. Returns total found and verified deletes.
func (c *Client) DeleteAllOwnPosts(ctx context.Context, b board.Board, pages int, pacing time.Duration, onProgress func(current, total, success int)) (int, int, error) {
	posts, err := c.ListOwnPosts(ctx, b, pages)
	if err != nil {
		return 0, 0, err
	}

	total := len(posts)
	success := 0
	for i, ref := range posts {
		if ctx.Err() != nil {
			return total, success, ctx.Err()
		}

		if c.DeletePost(ctx, ref) {
			success++
		}
		if onProgress != nil {
			onProgress(i+1, total, success)
		}

		if pacing > 0 && i < total-1 {
			select {
			case <-ctx.Done():
				return total, success, ctx.Err()
			case <-time.After(pacing):
			}
		}
	}
	return total, success, nil
}
