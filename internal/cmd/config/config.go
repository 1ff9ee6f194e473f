// Package config provides CLI command implementations for the config command group.
package config

import (
	"github.com/spf13/cobra"

	"github.com/rnscaffold/cli/internal/cmdtypes"
	oerrors "github.com/rnscaffold/cli/internal/errors"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(gc *cmdtypes.GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Configuration management for the rnscaffold CLI.`,
	}

	c.AddCommand(
		NewConfigInitCmd(gc),
		NewConfigShowCmd(gc),
		NewConfigVetCmd(gc),
	)

	return c
}

func exitError(err error) error {
	return &oerrors.ExitError{Code: oerrors.ExitCodeFromError(err), Err: err}
}
