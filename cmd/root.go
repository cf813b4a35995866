package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/cladeloom/internal/config"
	"github.com/KaramelBytes/cladeloom/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration and logger
	cfg    *cfgpkg.Global
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cladeloom",
	Short: "CladeLoom: collect Nextclade reports into report-ready tables",
	Long: `CladeLoom reads Nextclade CSV reports, merges them into one per-sample dataset
with normalized field names and typed values, and assembles the run table and
general statistics contribution together with their column metadata.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.cladeloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	l, err := logging.New(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	} else {
		logger = l
	}

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// effectiveConfig returns the configuration loaded at startup, or loads it
// when the command runs without the initializer.
func effectiveConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		c := *cfg
		c.CleanExtensions = append([]string(nil), cfg.CleanExtensions...)
		c.IgnoreSamples = append([]string(nil), cfg.IgnoreSamples...)
		return &c, nil
	}
	return cfgpkg.Load(cfgFile)
}
