// Package board defines the target forum boards and the identity of remote
// posts. Board selection is specific to one forum's markup conventions; the
// label-to-numeric-id map mirrors the site's board index and is not meant to
// generalize to arbitrary sites.
package board

import "fmt"

// Board is the human label of a target forum section.
type Board string

// The boards the engine knows how to post to.
const (
	BoardTrade Board = "거래게시판"
	BoardBus   Board = "버스게시판"
)

// Slug is the path segment shared by every board the engine targets.
const Slug = "diablo4"

// boardIDs maps a board label to the site's numeric board identifier
// (the come_idx parameter in its URLs).
var boardIDs = map[Board]string{
	BoardTrade: "6383",
	BoardBus:   "6085",
}

// DefaultBoard is used when a session's configured board is unknown.
const DefaultBoard = BoardTrade

// ID returns the numeric identifier for the board. Unknown boards resolve
// to the default board's id, matching the site's tolerant query handling.
func (b Board) ID() string {
	if id, ok := boardIDs[b]; ok {
		return id
	}
	return boardIDs[DefaultBoard]
}

// Valid reports whether the board is one of the known labels.
func (b Board) Valid() bool {
	_, ok := boardIDs[b]
	return ok
}

// All returns the known board labels in a stable order.
func All() []Board {
	return []Board{BoardTrade, BoardBus}
}

// PostRef identifies a remote post. It is ephemeral: returned by write/list
// operations and consumed immediately by the worker, never authoritative for
// remote state.
type PostRef struct {
	Slug    string `json:"slug" toml:"slug"`
	BoardID string `json:"board_id" toml:"board_id"`
	PostID  string `json:"post_id" toml:"post_id"`
	Title   string `json:"title,omitempty" toml:"title,omitempty"`
	URL     string `json:"url,omitempty" toml:"url,omitempty"`
}

// ViewURL returns the canonical view URL for the post under the given base
// (e.g. "https://www.inven.co.kr").
func (p PostRef) ViewURL(base string) string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("%s/board/%s/%s/%s", base, p.Slug, p.BoardID, p.PostID)
}

// String implements fmt.Stringer for log output.
func (p PostRef) String() string {
	return fmt.Sprintf("%s/%s/%s", p.Slug, p.BoardID, p.PostID)
}
