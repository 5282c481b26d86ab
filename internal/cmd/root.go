package cmd

import (
	"strings"

	"github.com/coldhawk/coldhawk/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "coldhawk",
	Short: "Scheduled post automation for the Inven Diablo 4 boards",
	Long: `ColdHawk runs up to ten posting sessions against the Inven Diablo 4
boards. Each session logs in with its own account, re-uploads its configured
post on an interval, and prunes its older copies so only the newest few
remain on the board.

Passwords are never stored; provide them through the environment:
COLDHAWK_PASSWORD_<slot> for a specific slot, or COLDHAWK_PASSWORD as a
fallback for every slot.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/coldhawk/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/coldhawk")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("COLDHAWK")
	// Replace dots with underscores for nested keys in env vars
	// e.g., COLDHAWK_HTTP_MAX_RETRIES for http.max_retries
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
