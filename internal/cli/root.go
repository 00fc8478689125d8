// Package cli implements the llmstream command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mdreader/llmstream/internal/buildinfo"
	"github.com/mdreader/llmstream/internal/config"
	"github.com/mdreader/llmstream/internal/logging"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "llmstream",
	Short: "Decode captured LLM provider streams",
	Long: `llmstream replays captured provider response streams through the
decoding pipeline: provider frame decoding, text deltas, and embedded
command extraction.

Captures come from files or stdin and may be gzip, deflate, brotli, or
zstd compressed.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// bootstrapConfig prepares logging and loads the configuration for a
// subcommand. The config file is optional unless --config names one.
func bootstrapConfig() (*config.Config, error) {
	logging.SetupBaseLogger()
	config.LoadDotEnv()

	path := cfgFile
	optional := path == ""
	if path == "" {
		path = defaultConfigPath()
	}
	cfg, err := config.LoadConfigOptional(path, optional)
	if err != nil {
		return nil, err
	}

	level := logLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	if level != "" {
		if err := logging.SetLevel(level); err != nil {
			return nil, err
		}
	}
	if err := logging.ConfigureLogOutput(cfg.Logging.ToFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(base, "llmstream", "config.yaml")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(c *cobra.Command, args []string) {
		fmt.Printf("llmstream %s (commit %s, %s/%s)\n",
			buildinfo.Version, buildinfo.Commit, runtime.GOOS, runtime.GOARCH)
	},
}

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(c *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = defaultConfigPath()
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, config.GenerateDefaultConfigYAML(), 0o600); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default: <user config dir>/llmstream/config.yaml)")
	f.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}
