package cmd

import (
	"fmt"
	"os"

	"github.com/coldhawk/coldhawk/internal/board"
	"github.com/coldhawk/coldhawk/internal/client"
	"github.com/coldhawk/coldhawk/internal/config"
	"github.com/coldhawk/coldhawk/internal/event"
	"github.com/coldhawk/coldhawk/internal/logging"
	"github.com/coldhawk/coldhawk/internal/secret"
	"github.com/coldhawk/coldhawk/internal/session"
	"github.com/coldhawk/coldhawk/internal/supervisor"
)

// app bundles the engine pieces every command needs: validated config, the
// file logger, the keyring, the event bus with its console sink, the session
// pool backed by its store, and a supervisor wired to a real client factory.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	keyring *secret.Keyring
	bus     *event.Bus
	pool    *session.Pool
	store   *session.Store
	sup     *supervisor.Supervisor
	console *console
}

// newApp loads and validates configuration, then assembles the engine. A
// validation failure aborts the whole command; there is no partial load.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logDir := ""
	if cfg.Logging.Enabled {
		logDir = cfg.ResolveLogDir()
	}
	logger, err := logging.NewLogger(logDir, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	keyring, err := secret.NewKeyring()
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("failed to set up keyring: %w", err)
	}

	bus := event.NewBus()

	pool := session.NewPool(cfg.Engine.PoolSize)
	for _, s := range pool.All() {
		// Configured defaults seed fresh slots; persisted records loaded
		// below override them.
		s.WriteCount = cfg.Session.WriteCount
		s.RunHours = cfg.Session.RunHours
		s.UploadInterval = cfg.Session.UploadIntervalSeconds
	}
	store := session.NewStore(cfg.Paths.ResolveSessionFile())
	if err := store.Load(pool); err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("failed to load sessions from %s: %w", store.Path(), err)
	}

	// Each worker gets a fresh client with its own cookie jar; sessions
	// must not share login state.
	factory := func() (supervisor.Client, error) {
		return client.New(client.FromAppConfig(cfg, logger))
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		keyring: keyring,
		bus:     bus,
		pool:    pool,
		store:   store,
		sup:     supervisor.New(factory, keyring, bus, logger, cfg.Engine),
		console: newConsole(bus, os.Stdout),
	}, nil
}

// Close releases the app's resources. Safe to call once per app.
func (a *app) Close() {
	a.console.Close()
	_ = a.logger.Close()
}

// newClient builds a standalone client for one-shot commands that bypass
// the supervisor.
func (a *app) newClient() (*client.Client, error) {
	return client.New(client.FromAppConfig(a.cfg, a.logger))
}

// loadPasswordsFromEnv fills session credentials from the environment.
// COLDHAWK_PASSWORD_<slot> wins over the shared COLDHAWK_PASSWORD fallback.
// Slots whose variable is absent are left untouched.
func (a *app) loadPasswordsFromEnv() {
	shared := os.Getenv("COLDHAWK_PASSWORD")
	for _, s := range a.pool.All() {
		pw := os.Getenv(fmt.Sprintf("COLDHAWK_PASSWORD_%d", s.ID))
		if pw == "" {
			pw = shared
		}
		if pw != "" {
			s.SetPassword(pw, a.keyring)
		}
	}
}

// parseBoard maps a CLI board name to a known board label. Accepts the
// short English aliases and the site's own Korean labels.
func parseBoard(name string) (board.Board, error) {
	switch name {
	case "", "trade":
		return board.BoardTrade, nil
	case "bus":
		return board.BoardBus, nil
	}
	if b := board.Board(name); b.Valid() {
		return b, nil
	}
	return "", fmt.Errorf("unknown board %q (valid: trade, bus)", name)
}
