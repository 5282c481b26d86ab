package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/coldhawk/coldhawk/internal/board"
	"github.com/coldhawk/coldhawk/internal/errors"
)

// ListOwnPosts walks up to pages pages of the logged-in account's own-post
// listing and returns the linked posts in listing order (newest first, as
// the site renders them). Duplicate ids across pages are collapsed. A page
// that yields no new posts ends the walk early; a later page that fails to
// fetch or parse is skipped.
func (c *Client) ListOwnPosts(ctx context.Context, b board.Board, pages int) ([]board.PostRef, error) {
	if pages < 1 {
		pages = 1
	}

	var found []board.PostRef
	seen := make(map[string]bool)

	for page := 1; page <= pages; page++ {
		listURL := fmt.Sprintf("%s/board/%s/%s?my=post", c.cfg.BaseURL, board.Slug, b.ID())
		if page > 1 {
			listURL += fmt.Sprintf("&p=%d", page)
		}

		resp, err := c.get(ctx, listURL)
		if err != nil {
			if page == 1 {
				return nil, errors.NewClientError("own-post listing fetch failed", err).
					WithOperation("list_own_posts").WithURL(listURL)
			}
			// A bad later page is skipped, not fatal; the rest of the walk
			// may still yield posts.
			c.logger.Warn("listing page fetch failed, skipping", "page", page, "error", err)
			continue
		}

		doc, err := parsePage(resp.Body)
		if err != nil {
			c.logger.Warn("listing page parse failed, skipping", "page", page, "error", err)
			continue
		}

		added := 0
		for _, href := range anchorHrefsByClass(doc, "subject-link") {
			u, err := url.Parse(href)
			if err != nil {
				continue
			}
			parts := strings.Split(strings.Trim(u.Path, "/"), "/")
			if len(parts) < 4 || parts[1] != board.Slug || parts[2] != b.ID() {
				continue
			}
			id := parts[3]
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			found = append(found, board.PostRef{
				Slug:    board.Slug,
				BoardID: b.ID(),
				PostID:  id,
			})
			added++
		}

		if added == 0 {
			break
		}
	}

	return found, nil
}
