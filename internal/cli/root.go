// Package cli provides the command-line interface for enumcmp.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Execute creates and runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the enumcmp command tree.
func NewRootCommand() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "enumcmp",
		Short: "Generate tag-only comparisons for sealed-interface tagged unions",
		Long: `enumcmp scans Go packages for interfaces annotated with //enumcmp:generate
and writes, next to each source file, a shadow tag type and a comparison
function that checks which variant a value holds while ignoring its payload.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			config := zap.NewProductionConfig()
			config.Encoding = "console"
			config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			config.DisableStacktrace = true
			if a.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = a.logger.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newGenerateCommand(a), newInspectCommand(a))
	return rootCmd
}

// app carries state shared by subcommands.
type app struct {
	verbose bool
	logger  *zap.Logger
}
