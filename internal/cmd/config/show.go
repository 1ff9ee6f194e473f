package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rnscaffold/cli/internal/cmdtypes"
	"github.com/rnscaffold/cli/internal/output"
)

// NewConfigShowCmd creates the config show command.
func NewConfigShowCmd(gc *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration and where each value comes from",
		Long: `Show every configuration key with its effective value and source.

Sources, highest precedence first: flag, env, config, default.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runShow(c, gc)
		},
	}
}

func runShow(c *cobra.Command, gc *cmdtypes.GlobalConfig) error {
	if gc.LoadErr != nil {
		return exitError(gc.LoadErr)
	}

	out := c.OutOrStdout()
	fmt.Fprintf(out, "Config file: %s (%s)\n\n", gc.ConfigPath, gc.ConfigSource)

	tbl := output.NewTable("KEY", "VALUE", "SOURCE")
	for _, v := range gc.Loader.Resolved() {
		tbl.Row(v.Key, v.Value, string(v.Source))
	}
	fmt.Fprintln(out, tbl.String())
	return nil
}
