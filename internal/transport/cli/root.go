// Package cli is the booruq command line: local query evaluation and the API server.
package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/booruq/internal/config"
)

var (
	configPath string
	envName    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "booruq",
	Short: "Booru search query engine",
	Long: `booruq parses booru-style search queries such as
"safe, (pinkie pie || rarity), score.gte:100, -my:faves"
and evaluates them against image records, locally or over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "environment name (default $ENV or local)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the log level")
}

// Execute runs the root command. Command output goes to stdout.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func currentEnv() string {
	if envName != "" {
		return envName
	}
	return config.GetEnv()
}

// loadConfig reads --config or the env's default file. A missing default file yields defaults.
func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	cfg, err := config.Load(currentEnv())
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Config{}
		cfg.ApplyDefaults()
		return cfg, nil
	}
	return cfg, err
}
