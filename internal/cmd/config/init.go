package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rnscaffold/cli/internal/cmdtypes"
	"github.com/rnscaffold/cli/internal/config"
	oerrors "github.com/rnscaffold/cli/internal/errors"
)

const configHeader = `# rnscaffold configuration
#
# Every key can be overridden by an RNSCAFFOLD_* environment variable or a
# command-line flag; run 'rnscaffold config show' to see where each value
# comes from.

`

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(gc *cmdtypes.GlobalConfig) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file with default values",
		Long: `Create the rnscaffold configuration file with default values.

The file is created at ~/.rnscaffold/config.yaml unless --config or
RNSCAFFOLD_CONFIG points elsewhere.

Examples:
  # Initialize configuration
  rnscaffold config init

  # Overwrite existing configuration
  rnscaffold config init --force`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runInit(c, gc, force)
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config file")

	return c
}

func runInit(c *cobra.Command, gc *cmdtypes.GlobalConfig, force bool) error {
	path, err := config.ExpandPath(gc.ConfigPath)
	if err != nil {
		return exitError(fmt.Errorf("expanding config path: %w", err))
	}

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return exitError(fmt.Errorf("checking config file: %w", err))
	}
	if exists && !force {
		return exitError(oerrors.NewValidationError(
			"configuration already exists", path, "",
			"Use --force to overwrite existing configuration."))
	}

	// Secure permissions: the file may carry an author email.
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return exitError(oerrors.NewPermissionError(
			fmt.Sprintf("could not create %s: %v", filepath.Dir(path), err), nil, ""))
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return exitError(fmt.Errorf("marshaling config: %w", err))
	}
	data = append([]byte(configHeader), data...)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return exitError(oerrors.NewPermissionError(
			fmt.Sprintf("could not write %s: %v", path, err), nil, ""))
	}

	fmt.Fprintf(c.OutOrStdout(), "Config file created: %s\n", path)
	return nil
}
