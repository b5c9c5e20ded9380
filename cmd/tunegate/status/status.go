// Package statuscmder provides the status command for displaying stored
// training snapshots and the outcome of the last run.
package statuscmder

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tunegate/cmd/tunegate/cmdutil"
	"github.com/papercomputeco/tunegate/pkg/cliui"
	"github.com/papercomputeco/tunegate/pkg/dotdir"
	"github.com/papercomputeco/tunegate/pkg/storage"
)

type statusCommander struct {
	store cmdutil.StoreOptions
}

const statusLongDesc string = `Show stored training snapshots.

Lists every resource in the snapshot store with its snapshot id, fingerprint
and recording time, followed by the last "tunegate train" or
"tunegate validate" run recorded in the .tunegate/ directory.

Examples:
  tunegate status
  tunegate status --storage postgres --postgres-dsn postgres://localhost/tunegate`

const statusShortDesc string = "Show stored snapshots"

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmder.store.AddFlags(cmd)

	return cmd
}

func (c *statusCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	g, _, _, err := c.store.Open(ctx, cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	entries, err := g.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing snapshots: %w", err)
	}

	out := cmd.OutOrStdout()
	printEntries(out, entries)

	configDir, _ := cmd.Flags().GetString("config-dir")
	run, err := dotdir.NewManager().LoadLastRun(configDir)
	if err != nil {
		return fmt.Errorf("loading last run: %w", err)
	}
	printLastRun(out, run)

	return nil
}

func printEntries(w io.Writer, entries []storage.Entry) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "\n  %s No snapshots stored. Run \"tunegate train\" first.\n\n", cliui.DimStyle.Render("●"))
		return
	}

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Resource))
	}

	fmt.Fprintf(w, "\n  %s\n\n", cliui.HeaderStyle.Render(fmt.Sprintf("Snapshots (%d)", len(entries))))
	for _, e := range entries {
		fmt.Fprintf(w, "  %s  %s  %s\n",
			cliui.NameStyle.Render(fmt.Sprintf("%-*s", width, e.Resource)),
			cliui.HashStyle.Render(cliui.ShortHash(e.Fingerprint)),
			cliui.DimStyle.Render(e.CreatedAt.Local().Format(time.DateTime)),
		)
	}
	fmt.Fprintln(w)
}

func printLastRun(w io.Writer, run *dotdir.LastRun) {
	if run == nil {
		return
	}

	result := cliui.SuccessMark + " compatible"
	if !run.Compatible {
		result = cliui.FailMark + " " + strings.Join(run.Categories, ", ")
	}

	fmt.Fprintf(w, "  %s  %s %s %s\n",
		cliui.KeyStyle.Render("Last run:"),
		cliui.ValueStyle.Render(run.Command),
		cliui.NameStyle.Render(run.Resource),
		cliui.DimStyle.Render(fmt.Sprintf("(%s, %s)", run.Scope, run.At.Local().Format(time.DateTime))),
	)
	if run.Revision != "" {
		fmt.Fprintf(w, "  %s  %s\n", cliui.KeyStyle.Render("Revision:"), cliui.HashStyle.Render(run.Revision))
	}
	fmt.Fprintf(w, "  %s  %s\n\n", cliui.KeyStyle.Render("Result:  "), result)
}
