package cli

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/gork-labs/enumcmp/internal/generator"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// InspectEntry describes one annotated declaration.
type InspectEntry struct {
	Name         string   `json:"name" yaml:"name"`
	Kind         string   `json:"kind" yaml:"kind"`
	Package      string   `json:"package" yaml:"package"`
	Position     string   `json:"position" yaml:"position"`
	Tags         []string `json:"tags" yaml:"tags"`
	Declarations []string `json:"declarations,omitempty" yaml:"declarations,omitempty"`
	Diagnostic   string   `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
}

func newInspectCommand(a *app) *cobra.Command {
	var (
		config GenerateConfig
		format string
	)

	cmd := &cobra.Command{
		Use:   "inspect [dirs...]",
		Short: "Print annotated declarations, their tags and diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := a.newGenerator(cmd, &config)
			if err != nil {
				return err
			}
			report, err := gen.Inspect(cmd.Context(), rootsOrCurrent(args))
			if err != nil {
				return err
			}

			data, err := marshalEntries(inspectEntries(report), format)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return err
			}
			return checkDiagnostics(cmd.ErrOrStderr(), report)
		},
	}

	bindConfigFlags(cmd, &config)
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")

	return cmd
}

func inspectEntries(report *generator.Report) []InspectEntry {
	entries := make([]InspectEntry, 0, len(report.Expansions))
	for _, exp := range report.Expansions {
		e := InspectEntry{
			Name:     exp.Decl.Name,
			Kind:     exp.Decl.Kind.String(),
			Package:  exp.Decl.Package,
			Position: exp.Decl.Pos.String(),
			Tags:     exp.Tags(),
		}
		for _, d := range exp.Declarations {
			e.Declarations = append(e.Declarations, d.Name)
		}
		if exp.Diagnostic != nil {
			e.Diagnostic = exp.Diagnostic.Message
		}
		entries = append(entries, e)
	}
	return entries
}

func marshalEntries(entries []InspectEntry, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(entries)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
