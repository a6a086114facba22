// Command carousel inspects, runs and rewrites hero sliders on landing pages.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	sourceRef  string
	presetName string
	slideClass string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "carousel",
	Short: "Hero slider tooling for landing pages",
	Long: `carousel finds the hero slides on a landing page, checks which of their
images actually load, and rotates them on a timer with manual navigation
that resets the schedule.

Timing comes from a named preset (swift, classic, calm) and can be
overridden by a YAML settings file that is reloaded when it changes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		observe(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML settings file (reloaded on change)")
	rootCmd.PersistentFlags().StringVar(&sourceRef, "source", "", "Settings source URL to follow instead of --config ("+sourceSchemes()+")")
	rootCmd.PersistentFlags().StringVarP(&presetName, "preset", "p", "classic", "Timing preset: swift, classic or calm")
	rootCmd.PersistentFlags().StringVar(&slideClass, "slide-class", "hero-slide", "Class carried by slide elements")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(normalizeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
