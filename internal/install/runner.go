package install

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner executes an external command in a directory.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner runs commands with os/exec. When Output is nil the combined
// output is captured and the last lines are attached to a failure.
type ExecRunner struct {
	Output io.Writer
}

// outputTail is how many trailing output lines a failure carries.
const outputTail = 20

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var buf bytes.Buffer
	if r.Output != nil {
		cmd.Stdout = r.Output
		cmd.Stderr = r.Output
	} else {
		cmd.Stdout = &buf
		cmd.Stderr = &buf
	}

	if err := cmd.Run(); err != nil {
		line := strings.TrimSpace(name + " " + strings.Join(args, " "))
		if tail := lastLines(buf.String(), outputTail); tail != "" {
			return fmt.Errorf("%s: %w\n%s", line, err, tail)
		}
		return fmt.Errorf("%s: %w", line, err)
	}
	return nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
