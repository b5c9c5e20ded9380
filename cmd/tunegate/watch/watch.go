// Package watchcmder provides the watch command, which re-runs the
// compatibility report whenever project files change.
package watchcmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tunegate/cmd/tunegate/cmdutil"
	diffcmder "github.com/papercomputeco/tunegate/cmd/tunegate/diff"
	"github.com/papercomputeco/tunegate/pkg/cliui"
)

type watchCommander struct {
	store    cmdutil.StoreOptions
	debounce time.Duration
}

const watchLongDesc string = `Watch a project and report finetuning compatibility on every change.

Prints the "tunegate diff" report once, then again each time config.yml,
domain.yml or a YAML file under data/ is written. Nothing is persisted.
Stop with Ctrl-C.

Examples:
  tunegate watch
  tunegate watch ./assistant --core`

const watchShortDesc string = "Re-run diff when project files change"

func NewWatchCmd() *cobra.Command {
	cmder := &watchCommander{}

	cmd := &cobra.Command{
		Use:   "watch [project-dir]",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmder.store.AddFlags(cmd)
	cmdutil.AddScopeFlags(cmd)
	cmd.Flags().DurationVar(&cmder.debounce, "debounce", defaultDebounce, "Wait this long after the last change before reporting")

	return cmd
}

func (c *watchCommander) run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, cfg, log, err := c.store.Open(ctx, cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	dir := cmdutil.ProjectDir(args, cfg)
	scope := cmdutil.Scope(cmd)
	out := cmd.OutOrStdout()

	w := &Watcher{
		Dir:      dir,
		Debounce: c.debounce,
		Logger:   log,
		OnChange: func(ctx context.Context) error {
			fmt.Fprintf(out, "\n  %s %s\n",
				cliui.DimStyle.Render(time.Now().Format(time.TimeOnly)),
				cliui.DimStyle.Render("checking "+dir),
			)

			report, err := diffcmder.BuildReport(ctx, g, c.store.Resource, dir, scope)
			if err != nil {
				fmt.Fprintf(out, "  %s %s\n", cliui.FailMark, err)
				return nil
			}
			return diffcmder.PrintReport(out, report, diffcmder.FormatPretty)
		},
	}

	return w.Run(ctx)
}
