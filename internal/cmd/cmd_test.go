package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rnscaffold/cli/internal/config"
	"github.com/rnscaffold/cli/internal/output"
)

// executeCmd runs the root command with args, capturing everything written
// to stdout by either cobra or the output package.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Keep the user's config and environment out of the run.
	t.Setenv(config.EnvConfig, filepath.Join(t.TempDir(), "config.yaml"))
	for _, key := range config.Keys {
		t.Setenv(config.EnvVar(key), "")
	}

	var out bytes.Buffer
	restore := output.SetStdout(&out)
	defer restore()

	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}
