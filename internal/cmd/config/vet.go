package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rnscaffold/cli/internal/cmdtypes"
	"github.com/rnscaffold/cli/internal/config"
	oerrors "github.com/rnscaffold/cli/internal/errors"
	"github.com/rnscaffold/cli/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(gc *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate the configuration file",
		Long: `Validate the rnscaffold configuration file.

Checks YAML syntax, the bundle prefix format and the pod policy.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runVet(c, gc)
		},
	}
}

func runVet(c *cobra.Command, gc *cmdtypes.GlobalConfig) error {
	path, err := config.ExpandPath(gc.ConfigPath)
	if err != nil {
		return exitError(fmt.Errorf("expanding config path: %w", err))
	}

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return exitError(fmt.Errorf("checking config file: %w", err))
	}
	if !exists {
		return exitError(oerrors.NewNotFoundError(
			"config file not found", path,
			"Run 'rnscaffold config init' to create one."))
	}

	if _, err := config.LoadFile(path); err != nil {
		return exitError(err)
	}

	fmt.Fprintln(c.OutOrStdout(), output.FormatCheck("Config file is valid", path))
	return nil
}
