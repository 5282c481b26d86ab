package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/coldhawk/coldhawk/internal/board"
)

// schemaVersion guards against loading files written by incompatible
// future layouts.
const schemaVersion = 1

// fileSchema is the on-disk layout of sessions.toml. Credentials are not
// part of the schema at all: the password never leaves process memory.
type fileSchema struct {
	Version  int             `toml:"version"`
	Sessions []sessionRecord `toml:"sessions"`
}

type sessionRecord struct {
	ID             int             `toml:"id"`
	Name           string          `toml:"name"`
	Board          string          `toml:"board"`
	UserID         string          `toml:"user_id,omitempty"`
	Title          string          `toml:"title,omitempty"`
	Content        string          `toml:"content,omitempty"`
	WriteCount     int             `toml:"write_count"`
	RunHours       int             `toml:"run_hours"`
	UploadInterval int             `toml:"upload_interval"`
	TotalPosts     int             `toml:"total_posts,omitempty"`
	SuccessCount   int             `toml:"success_count,omitempty"`
	FailCount      int             `toml:"fail_count,omitempty"`
	LastRunAt      string          `toml:"last_run_at,omitempty"`
	RecentPosts    []board.PostRef `toml:"recent_posts,omitempty"`
}

// Store persists a pool's sessions to a TOML file. Writes go through a
// temp file and rename so a crash mid-write cannot corrupt the previous
// contents.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (st *Store) Path() string {
	return st.path
}

// Save writes every session in the pool. Passwords are deliberately absent
// from the serialized form.
func (st *Store) Save(pool *Pool) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	schema := fileSchema{Version: schemaVersion}
	for _, s := range pool.All() {
		schema.Sessions = append(schema.Sessions, recordFromSession(s))
	}

	data, err := toml.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}

	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sessions-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set session file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp session file: %w", err)
	}
	if err := os.Rename(tmpPath, st.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Load merges persisted records into the pool by slot id. A missing file is
// not an error: the pool keeps its defaults. Records whose id has no slot
// in the pool are ignored.
func (st *Store) Load(pool *Pool) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var schema fileSchema
	if err := toml.Unmarshal(data, &schema); err != nil {
		return fmt.Errorf("failed to decode session file: %w", err)
	}
	if schema.Version > schemaVersion {
		return fmt.Errorf("session file version %d is newer than supported version %d",
			schema.Version, schemaVersion)
	}

	for _, rec := range schema.Sessions {
		s, err := pool.Get(rec.ID)
		if err != nil {
			continue
		}
		applyRecord(s, rec)
	}
	return nil
}

func recordFromSession(s *Session) sessionRecord {
	total, success, fail := s.Stats()
	rec := sessionRecord{
		ID:             s.ID,
		Name:           s.Name,
		Board:          string(s.Board),
		UserID:         s.UserID,
		Title:          s.Title,
		Content:        s.Content,
		WriteCount:     s.WriteCount,
		RunHours:       s.RunHours,
		UploadInterval: s.UploadInterval,
		TotalPosts:     total,
		SuccessCount:   success,
		FailCount:      fail,
		RecentPosts:    s.RecentPosts(),
	}
	if last := s.LastRunAt(); !last.IsZero() {
		rec.LastRunAt = last.Format(time.RFC3339)
	}
	return rec
}

func applyRecord(s *Session, rec sessionRecord) {
	if rec.Name != "" {
		s.Name = rec.Name
	}
	if b := board.Board(rec.Board); b.Valid() {
		s.Board = b
	}
	s.UserID = rec.UserID
	s.Title = rec.Title
	s.Content = rec.Content
	if rec.WriteCount > 0 {
		s.WriteCount = rec.WriteCount
	}
	if rec.RunHours >= 0 {
		s.RunHours = rec.RunHours
	}
	if rec.UploadInterval > 0 {
		s.UploadInterval = rec.UploadInterval
	}

	s.mu.Lock()
	s.totalPosts = rec.TotalPosts
	s.success = rec.SuccessCount
	s.fail = rec.FailCount
	s.recentPosts = nil
	if len(rec.RecentPosts) > 0 {
		n := len(rec.RecentPosts)
		if n > MaxRecentPosts {
			n = MaxRecentPosts
		}
		s.recentPosts = append(s.recentPosts, rec.RecentPosts[:n]...)
	}
	if rec.LastRunAt != "" {
		if t, err := time.Parse(time.RFC3339, rec.LastRunAt); err == nil {
			s.lastRunAt = t
		}
	}
	s.mu.Unlock()
}
