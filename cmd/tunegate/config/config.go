// Package configcmder provides the config command for managing persistent
// tunegate configuration stored in the .tunegate/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tunegate/pkg/cliui"
	"github.com/papercomputeco/tunegate/pkg/config"
)

const configLongDesc string = `Manage persistent tunegate configuration.

Configuration is stored as config.toml in the .tunegate/ directory and provides
default values for command flags. CLI flags and TUNEGATE_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  finetune.resource, finetune.ignored_fields,
  finetune.minimum_compatible_version, project.dir,
  eventstream.provider, eventstream.brokers, eventstream.topic,
  eventstream.async, eventstream.workers, eventstream.queue_size,
  api.listen, log.json, log.pretty, log.file

Use subcommands to get, set, or list configuration values:
  tunegate config set <key> <value>    Set a configuration value
  tunegate config get <key>            Get a configuration value
  tunegate config list                 List all configuration values

Examples:
  tunegate config set storage.driver postgres
  tunegate config set finetune.ignored_fields epochs,evaluate_every_number_of_epochs
  tunegate config get finetune.resource
  tunegate config list`

const configShortDesc string = "Manage persistent tunegate configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func printTarget(w io.Writer, target string) {
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
