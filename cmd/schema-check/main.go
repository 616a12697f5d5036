// Command schema-check lints record schema definition documents before they
// are deployed to a definition source.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"archivecore/internal/schemasource"
	schemafs "archivecore/internal/schemasource/fs"
	"archivecore/pkg/schema"
)

// DocumentReport holds the findings for one definition document.
type DocumentReport struct {
	Document string   `json:"document"`
	Type     string   `json:"type,omitempty"`
	Findings []string `json:"findings,omitempty"`
}

func newRootCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema-check <schema-dir>",
		Short: "Lint record schema definition documents",
		Long: `Parse every YAML or JSON definition document in the directory and
report structural defects: unknown property kinds, arrays without item
shapes, required properties carrying defaults, and similar mistakes that
would be rejected at registry load time.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", format)
			}
			reports, err := checkDirectory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeReports(cmd, format, reports)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json)")
	return cmd
}

func checkDirectory(ctx context.Context, dir string) ([]DocumentReport, error) {
	src, err := schemafs.New(dir)
	if err != nil {
		return nil, err
	}
	names, err := src.List(ctx)
	if err != nil {
		return nil, err
	}

	var reports []DocumentReport
	for _, name := range names {
		switch strings.ToLower(path.Ext(name)) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		body, err := src.Read(ctx, name)
		if err != nil {
			return nil, err
		}
		report := DocumentReport{Document: name}
		def, err := schemasource.ParseDefinition(name, body)
		if err != nil {
			report.Findings = []string{err.Error()}
		} else {
			report.Type = def.Type
			report.Findings = def.Check()
		}
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Document < reports[j].Document })
	return reports, nil
}

func writeReports(cmd *cobra.Command, format string, reports []DocumentReport) error {
	defective := 0
	for _, r := range reports {
		if len(r.Findings) > 0 {
			defective++
		}
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			if len(r.Findings) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "ok\t%s\n", r.Document)
				continue
			}
			for _, finding := range r.Findings {
				fmt.Fprintf(cmd.OutOrStdout(), "defect\t%s\t%s\n", r.Document, finding)
			}
		}
	}

	if defective > 0 {
		return fmt.Errorf("%d of %d documents have defects", defective, len(reports))
	}
	return nil
}

// builtinsSound guards against shipping defective built-in definitions; the
// command refuses to run if its own baseline fails the check.
func builtinsSound() error {
	for _, def := range schema.Builtins() {
		if findings := def.Check(); len(findings) > 0 {
			return fmt.Errorf("built-in definition %s: %s", def.Type, findings[0])
		}
	}
	return nil
}

func main() {
	if err := builtinsSound(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
