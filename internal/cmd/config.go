package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/coldhawk/coldhawk/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View ColdHawk configuration",
	Long: `View ColdHawk configuration.

Without arguments, displays the current configuration.
Use subcommands to create a config file or locate it.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/coldhawk/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	fmt.Println("Current configuration:")
	fmt.Println()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Config file: (none - using defaults)\n")
	}
	fmt.Println()

	fmt.Println("http:")
	fmt.Printf("  base_url: %s\n", cfg.HTTP.BaseURL)
	fmt.Printf("  member_base_url: %s\n", cfg.HTTP.MemberBaseURL)
	fmt.Printf("  timeout_seconds: %d\n", cfg.HTTP.TimeoutSeconds)
	fmt.Printf("  max_retries: %d\n", cfg.HTTP.MaxRetries)
	fmt.Printf("  retry_delay_ms: %d\n", cfg.HTTP.RetryDelayMs)
	fmt.Printf("  max_retry_delay_ms: %d\n", cfg.HTTP.MaxRetryDelayMs)

	fmt.Println("engine:")
	fmt.Printf("  pool_size: %d\n", cfg.Engine.PoolSize)
	fmt.Printf("  keep_limit: %d\n", cfg.Engine.KeepLimit)
	fmt.Printf("  start_spacing_ms: %d\n", cfg.Engine.StartSpacingMs)
	fmt.Printf("  stop_timeout_ms: %d\n", cfg.Engine.StopTimeoutMs)
	fmt.Printf("  cleanup_timeout_ms: %d\n", cfg.Engine.CleanupTimeoutMs)
	fmt.Printf("  eviction_max_pages: %d\n", cfg.Engine.EvictionMaxPages)
	fmt.Printf("  delete_pacing_ms: %d\n", cfg.Engine.DeletePacingMs)

	fmt.Println("session:")
	fmt.Printf("  write_count: %d\n", cfg.Session.WriteCount)
	fmt.Printf("  run_hours: %d\n", cfg.Session.RunHours)
	fmt.Printf("  upload_interval_seconds: %d\n", cfg.Session.UploadIntervalSeconds)

	fmt.Println("logging:")
	fmt.Printf("  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Printf("  level: %s\n", cfg.Logging.Level)
	fmt.Printf("  dir: %s\n", cfg.ResolveLogDir())

	fmt.Println("paths:")
	fmt.Printf("  data_dir: %s\n", cfg.Paths.ResolveDataDir())
	fmt.Printf("  session_file: %s\n", cfg.Paths.ResolveSessionFile())

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configContent := `# ColdHawk Configuration

# HTTP transport settings
http:
  base_url: https://www.inven.co.kr
  member_base_url: https://member.inven.co.kr
  # Per-request timeout in seconds
  timeout_seconds: 10
  # Attempts per request; only transport errors are retried
  max_retries: 3
  retry_delay_ms: 500
  max_retry_delay_ms: 2000

# Engine settings
engine:
  # Number of session slots
  pool_size: 10
  # Own posts kept on the board after each write
  keep_limit: 3
  # Minimum gap between worker starts in milliseconds
  start_spacing_ms: 300
  stop_timeout_ms: 500
  cleanup_timeout_ms: 1000
  # Listing pages walked when pruning old posts
  eviction_max_pages: 50
  # Gap between deletes during a purge in milliseconds
  delete_pacing_ms: 200

# Defaults applied to new session slots
session:
  write_count: 1
  run_hours: 1
  upload_interval_seconds: 30

# Logging settings
logging:
  enabled: true
  # debug, info, warn, or error
  level: info
  # Log directory; empty means <data_dir>/logs
  dir: ""

# Data locations
paths:
  data_dir: ~/.coldhawk
  # Session store; empty means <data_dir>/sessions.toml
  session_file: ""
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Default path: %s (not created)\n", configFile)
	}

	fmt.Println("\nSearch paths:")
	fmt.Printf("  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Printf("  2. $HOME/.config/coldhawk/config.yaml\n")
	fmt.Printf("  3. ./config.yaml (current directory)\n")
	fmt.Println("\nEnvironment variables: COLDHAWK_* (e.g., COLDHAWK_HTTP_MAX_RETRIES)")

	return nil
}
