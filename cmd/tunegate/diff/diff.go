// Package diffcmder provides the diff command, a dry-run of validate that
// reports every mismatch without touching the stored snapshot.
package diffcmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tunegate/cmd/tunegate/cmdutil"
	"github.com/papercomputeco/tunegate/pkg/cliui"
	"github.com/papercomputeco/tunegate/pkg/config"
	"github.com/papercomputeco/tunegate/pkg/finetune"
	"github.com/papercomputeco/tunegate/pkg/gate"
	"github.com/papercomputeco/tunegate/pkg/project"
)

// ErrIncompatible is returned with --exit-code when the report has mismatches.
var ErrIncompatible = errors.New("project is not compatible with the stored snapshot")

// Format selects how a report is printed.
type Format string

const (
	FormatPretty   Format = "pretty"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

type diffCommander struct {
	store      cmdutil.StoreOptions
	minVersion string
	format     string
	exitCode   bool
}

const diffLongDesc string = `Show every difference between the project and the stored snapshot.

Runs the same comparison as "tunegate validate" but reports all mismatches
instead of stopping at the first failing check, and never replaces the stored
snapshot.

Output formats:
  pretty     markdown rendered for the terminal (default)
  markdown   raw markdown, e.g. for a pull request comment
  json       the report as JSON

Examples:
  tunegate diff
  tunegate diff ./assistant --format markdown
  tunegate diff --core --exit-code`

const diffShortDesc string = "Dry-run a finetuning validation"

func NewDiffCmd() *cobra.Command {
	cmder := &diffCommander{}

	cmd := &cobra.Command{
		Use:   "diff [project-dir]",
		Short: diffShortDesc,
		Long:  diffLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmder.store.AddFlags(cmd)
	cmder.store.Keys = []string{config.FlagMinVersion}
	config.AddStringFlag(cmd, config.Registry, config.FlagMinVersion, &cmder.minVersion)
	cmdutil.AddScopeFlags(cmd)
	cmd.Flags().StringVarP(&cmder.format, "format", "f", string(FormatPretty), "Output format (pretty, markdown, json)")
	cmd.Flags().BoolVar(&cmder.exitCode, "exit-code", false, "Exit non-zero when the project is incompatible")

	return cmd
}

func (c *diffCommander) run(cmd *cobra.Command, args []string) error {
	format := Format(c.format)
	switch format {
	case FormatPretty, FormatMarkdown, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q (want pretty, markdown or json)", c.format)
	}

	ctx := cmd.Context()
	g, cfg, _, err := c.store.Open(ctx, cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	report, err := BuildReport(ctx, g, c.store.Resource, cmdutil.ProjectDir(args, cfg), cmdutil.Scope(cmd))
	if err != nil {
		return err
	}

	if err := PrintReport(cmd.OutOrStdout(), report, format); err != nil {
		return err
	}

	if c.exitCode && !report.Compatible() {
		return ErrIncompatible
	}
	return nil
}

// BuildReport compares the project in dir with the snapshot of resource.
func BuildReport(ctx context.Context, g *gate.Gate, resource, dir string, scope finetune.Scope) (*finetune.Report, error) {
	imp := project.NewFileImporter(dir)
	schema, err := imp.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline schema: %w", err)
	}

	checker, err := g.Checker(ctx, resource, true, schema)
	if errors.Is(err, finetune.ErrMissingSnapshot) {
		return nil, fmt.Errorf("%w; run \"tunegate train\" first", err)
	}
	if err != nil {
		return nil, err
	}

	return checker.Report(ctx, imp, scope)
}

// PrintReport writes report to w in the given format.
func PrintReport(w io.Writer, report *finetune.Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)

	case FormatMarkdown:
		_, err := io.WriteString(w, report.Markdown())
		return err

	default:
		rendered, err := cliui.RenderMarkdown(report.Markdown())
		if err != nil {
			// Fall back to raw markdown
			rendered = report.Markdown()
		}
		_, err = io.WriteString(w, rendered)
		return err
	}
}
