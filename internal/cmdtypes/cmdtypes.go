// Package cmdtypes provides shared types for the cmd package and its sub-packages.
// It is separate from internal/cmd to avoid import cycles between internal/cmd
// and internal/cmd/config.
package cmdtypes

import (
	"github.com/rnscaffold/cli/internal/config"
)

// GlobalConfig holds CLI-wide state resolved during PersistentPreRunE.
// It is populated once at startup and passed explicitly into every sub-command
// constructor.
type GlobalConfig struct {
	// Loader holds every configuration layer; commands add their flag
	// overrides before calling Load.
	Loader *config.Loader

	// Config is the configuration as resolved before command-local flags.
	Config *config.Config

	// ConfigPath is the resolved --config path.
	ConfigPath string

	// ConfigSource tells where ConfigPath came from.
	ConfigSource config.ConfigSource

	// LoadErr is set when the config file could not be read or validated.
	// Commands that need configuration report it.
	LoadErr error

	Verbose bool
}
