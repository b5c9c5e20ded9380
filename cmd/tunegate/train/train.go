// Package traincmder provides the train command, which records the training
// snapshot later finetuning runs are validated against.
package traincmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tunegate/cmd/tunegate/cmdutil"
	"github.com/papercomputeco/tunegate/pkg/cliui"
	"github.com/papercomputeco/tunegate/pkg/dotdir"
	"github.com/papercomputeco/tunegate/pkg/finetune"
	"github.com/papercomputeco/tunegate/pkg/project"
)

type trainCommander struct {
	store cmdutil.StoreOptions
}

const trainLongDesc string = `Record a training snapshot for a project.

Reads config.yml, domain.yml and data/ from the project directory (default:
project.dir from config, or the current directory) and stores the pipeline
node configs, domain actions and training label values under the resource
name. A later "tunegate validate" compares a changed project against it.

Recording a snapshot always succeeds and replaces any earlier snapshot of the
same resource.

Examples:
  tunegate train
  tunegate train ./assistant --resource support-bot
  tunegate train --sqlite ./snapshots.sqlite`

const trainShortDesc string = "Record a training snapshot"

func NewTrainCmd() *cobra.Command {
	cmder := &trainCommander{}

	cmd := &cobra.Command{
		Use:   "train [project-dir]",
		Short: trainShortDesc,
		Long:  trainLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmder.store.AddFlags(cmd)

	return cmd
}

func (c *trainCommander) run(cmd *cobra.Command, args []string) error {
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

	checker, err := g.Checker(ctx, c.store.Resource, false, schema)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	err = cliui.Step(out, fmt.Sprintf("Recording snapshot %s", cliui.NameStyle.Render(checker.Resource())), func() error {
		return checker.Validate(ctx, imp)
	})
	if err != nil {
		return err
	}

	snap := checker.Baseline()
	fmt.Fprintf(out, "\n  %s  %s\n", cliui.KeyStyle.Render("Snapshot:   "), cliui.HashStyle.Render(snap.ID))
	fmt.Fprintf(out, "  %s  %s\n", cliui.KeyStyle.Render("Fingerprint:"), cliui.HashStyle.Render(cliui.ShortHash(snap.Fingerprint)))
	fmt.Fprintf(out, "  %s  %s\n", cliui.KeyStyle.Render("Nodes:      "), cliui.ValueStyle.Render(fmt.Sprint(len(snap.Nodes))))
	fmt.Fprintf(out, "  %s  %s\n\n", cliui.KeyStyle.Render("Actions:    "), cliui.ValueStyle.Render(fmt.Sprint(len(snap.DomainActions))))

	cmdutil.RecordRun(cmd, &dotdir.LastRun{
		Command:    "train",
		Resource:   checker.Resource(),
		ProjectDir: dir,
		Scope:      finetune.FullScope.String(),
		Compatible: true,
		SnapshotID: snap.ID,
	})
	return nil
}
