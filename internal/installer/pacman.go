package installer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"setup-packages/internal/config"
	"setup-packages/internal/logger"
)

// ErrPackageManagerMissing is returned when the configured package manager is not on PATH.
var ErrPackageManagerMissing = errors.New("package manager not found")

// Pacman answers installed/in-repo questions by probing the package manager's
// exit status (0 means yes). Any failure, including a missing binary, means no.
type Pacman struct {
	pm     config.PackageManager
	runner Runner
}

// NewPacman returns a query adapter for pm that runs commands through runner.
func NewPacman(pm config.PackageManager, runner Runner) *Pacman {
	return &Pacman{pm: pm, runner: runner}
}

// IsInstalled runs e.g. `pacman -Q <name>`.
func (p *Pacman) IsInstalled(ctx context.Context, name string) bool {
	return p.runner.Probe(ctx, p.pm.Command, withArgs(p.pm.InstalledArgs, name)...) == nil
}

// IsInRepo runs e.g. `pacman -Si <name>`.
func (p *Pacman) IsInRepo(ctx context.Context, name string) bool {
	return p.runner.Probe(ctx, p.pm.Command, withArgs(p.pm.RepoArgs, name)...) == nil
}

// RequireTool checks that name resolves on PATH through lookPath.
func RequireTool(name string, lookPath func(string) (string, error)) (string, error) {
	// Fall back to searching the real PATH
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrPackageManagerMissing, name, err)
	}
	logger.Debug("[DEBUG] Found %s at %s\n", name, path)
	return path, nil
}

// DetectHelper returns the first helper in names that resolves on PATH.
func DetectHelper(names []string, lookPath func(string) (string, error)) (string, bool) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	// Helpers are tried in configured order; the first hit wins
	for _, name := range names {
		if _, err := lookPath(name); err == nil {
			return name, true
		}
		logger.Debug("[DEBUG] AUR helper %s not found on PATH\n", name)
	}
	return "", false
}
