package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gork-labs/enumcmp/internal/generator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGenerateCommand(a *app) *cobra.Command {
	var config GenerateConfig

	cmd := &cobra.Command{
		Use:   "generate [dirs...]",
		Short: "Generate shadow tag types and comparison functions",
		Long: `Generate writes <file>_enumcmp.go next to every source file declaring an
annotated tagged union. A directory ending in /... is processed recursively.
Without arguments the current directory is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, &config, args)
		},
	}

	bindConfigFlags(cmd, &config)
	cmd.Flags().BoolVar(&config.Stdout, "stdout", false, "Print generated files instead of writing them")
	cmd.Flags().BoolVar(&config.Watch, "watch", false, "Regenerate whenever sources change")

	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, config *GenerateConfig, args []string) error {
	gen, err := a.newGenerator(cmd, config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	roots := rootsOrCurrent(args)
	if config.Watch {
		if config.Stdout {
			return fmt.Errorf("--watch and --stdout cannot be combined")
		}
		a.logger.Info("Watching for changes", zap.Strings("roots", roots))
		return gen.Watch(ctx, roots, func(report *generator.Report, err error) {
			if err != nil {
				a.logger.Error("Generation failed", zap.Error(err))
				return
			}
			printDiagnostics(cmd.ErrOrStderr(), report)
		})
	}

	report, err := gen.GenerateDirs(ctx, roots)
	if err != nil {
		return err
	}
	if config.Stdout {
		for _, f := range report.Files {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "// %s\n%s", f.Path, f.Content); err != nil {
				return err
			}
		}
	}
	a.logger.Debug("Generation finished",
		zap.Int("packages", report.Packages),
		zap.Int("written", len(report.Written)),
		zap.Int("removed", len(report.Removed)))
	return checkDiagnostics(cmd.ErrOrStderr(), report)
}

func (a *app) newGenerator(cmd *cobra.Command, config *GenerateConfig) (*generator.Generator, error) {
	if err := loadConfigFile(config, cmd.Flags().Changed); err != nil {
		return nil, err
	}
	return generator.New(config.Options(), a.logger)
}

func rootsOrCurrent(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

func printDiagnostics(w io.Writer, report *generator.Report) {
	for _, d := range report.Diagnostics {
		_, _ = fmt.Fprintln(w, d.Error())
	}
}

// checkDiagnostics prints every diagnostic and fails when there was any.
func checkDiagnostics(w io.Writer, report *generator.Report) error {
	if len(report.Diagnostics) == 0 {
		return nil
	}
	printDiagnostics(w, report)
	return fmt.Errorf("%d diagnostic(s) reported", len(report.Diagnostics))
}
