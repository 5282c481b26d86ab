package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coldhawk/coldhawk/internal/board"
	"github.com/coldhawk/coldhawk/internal/errors"
)

const (
	writeQueryPath = "/board/powerbbs.php?query=write&come_idx="
	writeDataPath  = "/board/bbs/include/write_data.php"

	// settleDelay gives the site time to index a new post before the
	// listing-based resolution fallback queries for it.
	settleDelay = 500 * time.Millisecond
)

// htmlMarkers are the tags whose presence switches the submission to HTML
// editor mode. Plain text is sent as-is either way; the site handles line
// breaks itself in text mode.
var htmlMarkers = []string{
	"<p>", "<br>", "<div>", "<span>", "<b>", "<i>", "<u>",
	"<strong>", "<em>", "<a>", "<img>", "<h1>", "<h2>", "<h3>",
	"<ul>", "<ol>", "<li>", "<table>", "<tr>", "<td>",
}

func isHTMLContent(content string) bool {
	lower := strings.ToLower(content)
	for _, tag := range htmlMarkers {
		if strings.Contains(lower, tag) {
			return true
		}
	}
	return false
}

// refFromPath extracts a PostRef from a view URL path of the form
// /board/<slug>/<board_id>/<post_id>. Returns false when the path does not
// have that shape.
func refFromPath(rawURL string) (board.PostRef, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return board.PostRef{}, false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 {
		return board.PostRef{}, false
	}
	return board.PostRef{
		Slug:    parts[1],
		BoardID: parts[2],
		PostID:  parts[3],
	}, true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CreatePost submits a new post and resolves its identity. Tokens are
// fetched fresh from the write form for every submission; they are
// single-use. Identity resolution tries, in order: the redirect URL, links
// and the og:url meta tag in the response body, and finally the own-post
// listing with a title check on the candidate pages.
func (c *Client) CreatePost(ctx context.Context, b board.Board, title, content string) (board.PostRef, error) {
	writeURL := c.cfg.BaseURL + writeQueryPath + b.ID()

	tokens, err := c.writeTokens(ctx, writeURL)
	if err != nil {
		return board.PostRef{}, err
	}

	isHTML := isHTMLContent(content)
	mode := "text"
	if isHTML {
		mode = "html"
	}

	form := url.Values{}
	form.Set("SUBJECT", title)
	form.Set("subject", title)
	form.Set("memo", content)
	form.Set("CONTENT", content)
	form.Set("CONTENT2", content)
	form.Set("HTML", content)
	form.Set("content", content)
	form.Set("query", "write")
	form.Set("come_idx", b.ID())
	form.Set("editor_mode", mode)
	form.Set("mode", mode)
	if isHTML {
		form.Set("html", "html")
	}
	// Form tokens win over the static fields above.
	for name, value := range tokens {
		form.Set(name, value)
	}

	headers := map[string]string{"Referer": writeURL}
	resp, err := c.postForm(ctx, c.cfg.BaseURL+writeDataPath, form, headers)
	if err != nil {
		return board.PostRef{}, errors.NewClientError("post submission failed", err).
			WithOperation("create_post")
	}
	if resp.Status != http.StatusOK && resp.Status != http.StatusFound {
		return board.PostRef{}, errors.NewClientError("post submission rejected", errors.ErrBadStatus).
			WithOperation("create_post").WithURL(resp.FinalURL)
	}

	if ref, ok := c.resolveFromRedirect(resp.FinalURL, title); ok {
		return ref, nil
	}
	if ref, ok := c.resolveFromBody(resp.Body, b, title); ok {
		return ref, nil
	}
	if ref, ok := c.resolveFromListing(ctx, b, title); ok {
		return ref, nil
	}

	return board.PostRef{}, errors.NewClientError("created post could not be identified", errors.ErrPostUnresolved).
		WithOperation("create_post")
}

// writeTokens fetches the write form and collects its hidden fields plus
// the auto-selected category.
func (c *Client) writeTokens(ctx context.Context, writeURL string) (map[string]string, error) {
	resp, err := c.get(ctx, writeURL)
	if err != nil {
		return nil, errors.NewClientError("write form fetch failed", err).
			WithOperation("create_post").WithURL(writeURL)
	}
	if resp.Status != http.StatusOK {
		return nil, errors.NewClientError("write form unavailable", errors.ErrBadStatus).
			WithOperation("create_post").WithURL(writeURL)
	}

	doc, err := parsePage(resp.Body)
	if err != nil {
		return nil, errors.NewClientError("write form parse failed", err).
			WithOperation("create_post").WithURL(writeURL)
	}

	tokens := hiddenInputs(doc)
	if category := chooseCategory(doc); category != "" {
		tokens["CATEGORY"] = category
		tokens["category"] = category
	}
	tokens["HTML"] = "html"
	return tokens, nil
}

// resolveFromRedirect reads the post identity off the final URL after
// redirects. Endpoint script names in the id position mean the redirect
// went back to the form, not to the new post.
func (c *Client) resolveFromRedirect(finalURL, title string) (board.PostRef, bool) {
	ref, ok := refFromPath(finalURL)
	if !ok || ref.PostID == "" {
		return board.PostRef{}, false
	}
	if ref.PostID == "write_data.php" || ref.PostID == "powerbbs.php" {
		return board.PostRef{}, false
	}
	ref.Title = title
	ref.URL = finalURL
	return ref, true
}

// resolveFromBody scans the response markup for a link or og:url meta tag
// pointing at the new post.
func (c *Client) resolveFromBody(body string, b board.Board, title string) (board.PostRef, bool) {
	doc, err := parsePage(body)
	if err != nil {
		return board.PostRef{}, false
	}

	needle := "/" + board.Slug + "/" + b.ID() + "/"
	for _, href := range anchorHrefs(doc) {
		if !strings.Contains(href, needle) {
			continue
		}
		u, err := url.Parse(href)
		if err != nil {
			continue
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		id := parts[len(parts)-1]
		if !isNumeric(id) {
			continue
		}
		ref := board.PostRef{
			Slug:    board.Slug,
			BoardID: b.ID(),
			PostID:  id,
			Title:   title,
		}
		ref.URL = ref.ViewURL(c.cfg.BaseURL)
		return ref, true
	}

	if meta := metaProperty(doc, "og:url"); meta != "" {
		if ref, ok := refFromPath(meta); ok && isNumeric(ref.PostID) {
			ref.Title = title
			ref.URL = meta
			return ref, true
		}
	}

	return board.PostRef{}, false
}

// resolveFromListing is the last-resort resolution: list the first page of
// own posts and take the first whose page actually contains the title.
func (c *Client) resolveFromListing(ctx context.Context, b board.Board, title string) (board.PostRef, bool) {
	select {
	case <-ctx.Done():
		return board.PostRef{}, false
	case <-time.After(settleDelay):
	}

	posts, err := c.ListOwnPosts(ctx, b, 1)
	if err != nil {
		c.logger.Warn("own-post listing failed during resolution", "error", err)
		return board.PostRef{}, false
	}

	for _, candidate := range posts {
		viewURL := candidate.ViewURL(c.cfg.BaseURL)
		resp, err := c.get(ctx, viewURL)
		if err != nil {
			continue
		}
		if strings.Contains(resp.Body, title) {
			candidate.Title = title
			candidate.URL = viewURL
			return candidate, true
		}
	}
	return board.PostRef{}, false
}
