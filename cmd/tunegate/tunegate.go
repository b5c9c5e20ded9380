// Package tunegatecmder provides the root tunegate command.
package tunegatecmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/tunegate/cmd/tunegate/config"
	diffcmder "github.com/papercomputeco/tunegate/cmd/tunegate/diff"
	servecmder "github.com/papercomputeco/tunegate/cmd/tunegate/serve"
	statuscmder "github.com/papercomputeco/tunegate/cmd/tunegate/status"
	traincmder "github.com/papercomputeco/tunegate/cmd/tunegate/train"
	validatecmder "github.com/papercomputeco/tunegate/cmd/tunegate/validate"
	watchcmder "github.com/papercomputeco/tunegate/cmd/tunegate/watch"
	versioncmder "github.com/papercomputeco/tunegate/cmd/version"
)

const tunegateLongDesc string = `Tunegate decides whether a trained assistant model can be finetuned.

Record a snapshot when training from scratch, then validate every later
change against it before finetuning:
  tunegate train       Record a training snapshot
  tunegate validate    Validate finetuning compatibility
  tunegate diff        Show every mismatch without recording
  tunegate watch       Re-run diff when project files change
  tunegate status      Show stored snapshots and the last run
  tunegate serve       Run the HTTP API and MCP server
  tunegate config      Manage persistent configuration`

const tunegateShortDesc string = "Tunegate - finetuning compatibility checks"

func NewTunegateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tunegate",
		Short:        tunegateShortDesc,
		Long:         tunegateLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default: ./.tunegate or ~/.tunegate)")

	// Add subcommands
	cmd.AddCommand(traincmder.NewTrainCmd())
	cmd.AddCommand(validatecmder.NewValidateCmd())
	cmd.AddCommand(diffcmder.NewDiffCmd())
	cmd.AddCommand(watchcmder.NewWatchCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
