package installer

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"setup-packages/internal/logger"
)

// Runner executes external commands.
// - Probe runs a command only for its exit status; output is discarded.
// - Exec runs a command attached to the terminal so installers can prompt.
type Runner interface {
	Probe(ctx context.Context, name string, args ...string) error
	Exec(ctx context.Context, name string, args ...string) error
}

// ExecRunner is the Runner backed by os/exec.
type ExecRunner struct{}

// Probe runs the command and returns its exit error, if any.
func (ExecRunner) Probe(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))
	// Output is only kept for debug logging
	output, err := cmd.CombinedOutput()
	if err != nil {
		logger.Debug("[DEBUG] %s exited with %v: %s\n", name, err, strings.TrimSpace(string(output)))
	}
	return err
}

// Exec runs the command with the process's stdin, stdout and stderr.
func (ExecRunner) Exec(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	// Attach the terminal so pacman and the helpers can prompt the user
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))
	return cmd.Run()
}

// withArgs returns a fresh slice of prefix followed by rest, so callers never
// share the backing array of configured argument lists.
func withArgs(prefix []string, rest ...string) []string {
	out := make([]string, 0, len(prefix)+len(rest))
	out = append(out, prefix...)
	return append(out, rest...)
}
