// Package validatecmder provides the validate command, which decides whether
// a trained model may be finetuned on the current project.
package validatecmder

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tunegate/cmd/tunegate/cmdutil"
	"github.com/papercomputeco/tunegate/pkg/cliui"
	"github.com/papercomputeco/tunegate/pkg/config"
	"github.com/papercomputeco/tunegate/pkg/dotdir"
	"github.com/papercomputeco/tunegate/pkg/finetune"
	"github.com/papercomputeco/tunegate/pkg/project"
	"github.com/papercomputeco/tunegate/pkg/utils"
)

// maxDetailWidth caps printed mismatch details.
const maxDetailWidth = 96

type validateCommander struct {
	store      cmdutil.StoreOptions
	minVersion string
}

const validateLongDesc string = `Validate that the current project can be finetuned.

Compares the project against the snapshot recorded by "tunegate train":
  - pipeline nodes must match exactly, configs may only differ in ignored
    fields such as epochs
  - the snapshot must come from a compatible framework version
  - with --core, no domain action or response may be removed
  - with --nlu, no intent or action label may be removed

Both --core and --nlu are on by default. Passing only one of them checks only
that part. A compatible project replaces the stored snapshot; an incompatible
one leaves it untouched and exits non-zero.

Examples:
  tunegate validate
  tunegate validate ./assistant --core
  tunegate validate --resource support-bot --nlu`

const validateShortDesc string = "Validate finetuning compatibility"

func NewValidateCmd() *cobra.Command {
	cmder := &validateCommander{}

	cmd := &cobra.Command{
		Use:   "validate [project-dir]",
		Short: validateShortDesc,
		Long:  validateLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmder.store.AddFlags(cmd)
	cmder.store.Keys = []string{config.FlagMinVersion}
	config.AddStringFlag(cmd, config.Registry, config.FlagMinVersion, &cmder.minVersion)
	cmdutil.AddScopeFlags(cmd)

	return cmd
}

func (c *validateCommander) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	g, cfg, _, err := c.store.Open(ctx, cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	dir := cmdutil.ProjectDir(args, cfg)
	imp := project.NewFileImporter(dir)
	schema, err := imp.Schema(ctx)
	if err != nil {
		return fmt.Errorf("reading pipeline schema: %w", err)
	}

	checker, err := g.Checker(ctx, c.store.Resource, true, schema)
	if errors.Is(err, finetune.ErrMissingSnapshot) {
		return fmt.Errorf("%w; run \"tunegate train\" first", err)
	}
	if err != nil {
		return err
	}

	scope := cmdutil.Scope(cmd)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	err = cliui.Step(out, fmt.Sprintf("Validating %s (%s)", cliui.NameStyle.Render(checker.Resource()), scope), func() error {
		return checker.ValidateScope(ctx, imp, scope)
	})

	run := &dotdir.LastRun{
		Command:    "validate",
		Resource:   checker.Resource(),
		ProjectDir: dir,
		Scope:      scope.String(),
		Compatible: err == nil,
	}

	var incompatible *finetune.IncompatibilityError
	switch {
	case errors.As(err, &incompatible):
		run.Categories = []string{string(incompatible.Category)}
		cmdutil.RecordRun(cmd, run)
		printMismatches(out, incompatible)
		return err

	case err != nil:
		return err
	}

	snap := checker.Baseline()
	run.SnapshotID = snap.ID
	cmdutil.RecordRun(cmd, run)

	fmt.Fprintf(out, "\n  %s The model can be finetuned. Snapshot %s recorded.\n\n",
		cliui.SuccessMark,
		cliui.HashStyle.Render(cliui.ShortHash(snap.Fingerprint)),
	)
	return nil
}

func printMismatches(w io.Writer, e *finetune.IncompatibilityError) {
	fmt.Fprintf(w, "\n  %s %s\n\n", cliui.FailMark, cliui.HeaderStyle.Render(string(e.Category)))
	for _, m := range e.Mismatches {
		line := cliui.ValueStyle.Render(m.Subject)
		if m.Detail != "" {
			line += " " + cliui.DimStyle.Render(utils.Truncate(m.Detail, maxDetailWidth))
		}
		fmt.Fprintf(w, "    %s %s\n", cliui.DimStyle.Render("-"), line)
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.WarnStyle.Render("Train a new model from scratch instead."))
}
