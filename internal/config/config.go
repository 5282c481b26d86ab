package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config represents the complete Coldhawk configuration
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
	Paths   PathsConfig   `mapstructure:"paths"`
}

// HTTPConfig controls the forum client's transport behavior
type HTTPConfig struct {
	// TimeoutSeconds is the per-request timeout (default: 10)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// MaxRetries is the number of attempts per request; retries apply to
	// transport failures only, never to HTTP error statuses (default: 3)
	MaxRetries int `mapstructure:"max_retries"`
	// RetryDelayMs is the base backoff delay, doubled per attempt (default: 500)
	RetryDelayMs int `mapstructure:"retry_delay_ms"`
	// MaxRetryDelayMs caps the exponential backoff (default: 2000)
	MaxRetryDelayMs int `mapstructure:"max_retry_delay_ms"`
	// UserAgent is sent on every request
	UserAgent string `mapstructure:"user_agent"`
	// BaseURL is the forum's main host
	BaseURL string `mapstructure:"base_url"`
	// MemberBaseURL is the login host
	MemberBaseURL string `mapstructure:"member_base_url"`
}

// EngineConfig controls the supervisor and worker behavior
type EngineConfig struct {
	// PoolSize is the number of session slots (default: 10)
	PoolSize int `mapstructure:"pool_size"`
	// KeepLimit is how many of the newest own posts survive an eviction
	// pass (default: 3)
	KeepLimit int `mapstructure:"keep_limit"`
	// StartSpacingMs is the minimum gap between worker starts (default: 300)
	StartSpacingMs int `mapstructure:"start_spacing_ms"`
	// StopTimeoutMs bounds the wait for a worker to exit on stop; workers
	// still running after this are abandoned, not killed (default: 500)
	StopTimeoutMs int `mapstructure:"stop_timeout_ms"`
	// CleanupTimeoutMs bounds the per-worker wait during engine shutdown
	// (default: 1000)
	CleanupTimeoutMs int `mapstructure:"cleanup_timeout_ms"`
	// EvictionMaxPages bounds how many listing pages an eviction pass or a
	// bulk delete will walk (default: 50)
	EvictionMaxPages int `mapstructure:"eviction_max_pages"`
	// DeletePacingMs is the pause between consecutive deletions in bulk
	// operations (default: 200)
	DeletePacingMs int `mapstructure:"delete_pacing_ms"`
}

// SessionConfig holds defaults applied to freshly created session slots
type SessionConfig struct {
	// WriteCount is how many posts a cycle writes (default: 1)
	WriteCount int `mapstructure:"write_count"`
	// RunHours bounds a run's duration; 0 means unbounded (default: 1)
	RunHours int `mapstructure:"run_hours"`
	// UploadIntervalSeconds is the pause between write cycles (default: 30)
	UploadIntervalSeconds int `mapstructure:"upload_interval_seconds"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether file logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is where the log file is written; empty means the data dir
	Dir string `mapstructure:"dir"`
}

// PathsConfig controls where Coldhawk stores data
type PathsConfig struct {
	// DataDir holds persisted sessions and logs (default: ~/.coldhawk).
	// Supports ~ for home directory expansion.
	DataDir string `mapstructure:"data_dir"`
	// SessionFile overrides the session store path; empty means
	// <data_dir>/sessions.toml
	SessionFile string `mapstructure:"session_file"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			TimeoutSeconds:  10,
			MaxRetries:      3,
			RetryDelayMs:    500,
			MaxRetryDelayMs: 2000,
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			BaseURL:         "https://www.inven.co.kr",
			MemberBaseURL:   "https://member.inven.co.kr",
		},
		Engine: EngineConfig{
			PoolSize:         10,
			KeepLimit:        3,
			StartSpacingMs:   300,
			StopTimeoutMs:    500,
			CleanupTimeoutMs: 1000,
			EvictionMaxPages: 50,
			DeletePacingMs:   200,
		},
		Session: SessionConfig{
			WriteCount:            1,
			RunHours:              1,
			UploadIntervalSeconds: 30,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     "",
		},
		Paths: PathsConfig{
			DataDir:     "~/.coldhawk",
			SessionFile: "",
		},
	}
}

// Timeout returns the per-request timeout as a time.Duration
func (c *HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryDelay returns the base backoff delay as a time.Duration
func (c *HTTPConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// MaxRetryDelay returns the backoff cap as a time.Duration
func (c *HTTPConfig) MaxRetryDelay() time.Duration {
	return time.Duration(c.MaxRetryDelayMs) * time.Millisecond
}

// StartSpacing returns the minimum start gap as a time.Duration
func (c *EngineConfig) StartSpacing() time.Duration {
	return time.Duration(c.StartSpacingMs) * time.Millisecond
}

// StopTimeout returns the stop join bound as a time.Duration
func (c *EngineConfig) StopTimeout() time.Duration {
	return time.Duration(c.StopTimeoutMs) * time.Millisecond
}

// CleanupTimeout returns the shutdown join bound as a time.Duration
func (c *EngineConfig) CleanupTimeout() time.Duration {
	return time.Duration(c.CleanupTimeoutMs) * time.Millisecond
}

// DeletePacing returns the bulk-delete pause as a time.Duration
func (c *EngineConfig) DeletePacing() time.Duration {
	return time.Duration(c.DeletePacingMs) * time.Millisecond
}

// ResolveDataDir returns the data directory with ~ expanded.
func (p *PathsConfig) ResolveDataDir() string {
	dir := p.DataDir
	if dir == "" {
		dir = "~/.coldhawk"
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return dir
	}
	return expanded
}

// ResolveSessionFile returns the session store path. An explicit
// session_file wins; otherwise it lives in the data dir.
func (p *PathsConfig) ResolveSessionFile() string {
	if p.SessionFile != "" {
		expanded, err := homedir.Expand(p.SessionFile)
		if err != nil {
			return p.SessionFile
		}
		return expanded
	}
	return filepath.Join(p.ResolveDataDir(), "sessions.toml")
}

// ResolveLogDir returns the directory the log file is written to.
func (c *Config) ResolveLogDir() string {
	if c.Logging.Dir != "" {
		expanded, err := homedir.Expand(c.Logging.Dir)
		if err != nil {
			return c.Logging.Dir
		}
		return expanded
	}
	return c.Paths.ResolveDataDir()
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// HTTP defaults
	viper.SetDefault("http.timeout_seconds", defaults.HTTP.TimeoutSeconds)
	viper.SetDefault("http.max_retries", defaults.HTTP.MaxRetries)
	viper.SetDefault("http.retry_delay_ms", defaults.HTTP.RetryDelayMs)
	viper.SetDefault("http.max_retry_delay_ms", defaults.HTTP.MaxRetryDelayMs)
	viper.SetDefault("http.user_agent", defaults.HTTP.UserAgent)
	viper.SetDefault("http.base_url", defaults.HTTP.BaseURL)
	viper.SetDefault("http.member_base_url", defaults.HTTP.MemberBaseURL)

	// Engine defaults
	viper.SetDefault("engine.pool_size", defaults.Engine.PoolSize)
	viper.SetDefault("engine.keep_limit", defaults.Engine.KeepLimit)
	viper.SetDefault("engine.start_spacing_ms", defaults.Engine.StartSpacingMs)
	viper.SetDefault("engine.stop_timeout_ms", defaults.Engine.StopTimeoutMs)
	viper.SetDefault("engine.cleanup_timeout_ms", defaults.Engine.CleanupTimeoutMs)
	viper.SetDefault("engine.eviction_max_pages", defaults.Engine.EvictionMaxPages)
	viper.SetDefault("engine.delete_pacing_ms", defaults.Engine.DeletePacingMs)

	// Session defaults
	viper.SetDefault("session.write_count", defaults.Session.WriteCount)
	viper.SetDefault("session.run_hours", defaults.Session.RunHours)
	viper.SetDefault("session.upload_interval_seconds", defaults.Session.UploadIntervalSeconds)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	// Paths defaults
	viper.SetDefault("paths.data_dir", defaults.Paths.DataDir)
	viper.SetDefault("paths.session_file", defaults.Paths.SessionFile)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "coldhawk")
	}
	// Fall back to ~/.config/coldhawk
	home, err := os.UserHomeDir()
	if err != nil {
		return ".coldhawk"
	}
	return filepath.Join(home, ".config", "coldhawk")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
