package installer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"setup-packages/internal/config"
	"setup-packages/internal/logger"
)

var errNoHelper = errors.New("no secondary repository helper available")

// Installer turns a bucket of package names into one batched install command.
// - Helper: Name of the detected AUR helper, empty when none was found.
// - DryRun: Print the planned commands instead of running them.
// - NoConfirm: Append the tool's no-confirm flag.
// - Root: The process already runs as root, so sudo is never prepended.
type Installer struct {
	Settings  config.Settings
	Runner    Runner
	Helper    string
	DryRun    bool
	NoConfirm bool
	Root      bool
}

// RepoCommand builds e.g. `sudo pacman -S --needed --noconfirm pkg...`.
func (in *Installer) RepoCommand(pkgs []string) []string {
	pm := in.Settings.PackageManager
	var argv []string
	// Elevate only when configured and not already root
	if pm.Sudo && !in.Root {
		argv = append(argv, "sudo")
	}
	argv = append(argv, pm.Command)
	argv = append(argv, pm.InstallArgs...)
	// Suppress prompts when --no-confirm was given
	if in.NoConfirm && pm.NoConfirmFlag != "" {
		argv = append(argv, pm.NoConfirmFlag)
	}
	// Package names always go last
	return append(argv, pkgs...)
}

// SecondaryCommand builds e.g. `yay -S --needed --noconfirm pkg...`.
// AUR helpers elevate on their own and refuse to run as root, so no sudo here.
func (in *Installer) SecondaryCommand(pkgs []string) ([]string, error) {
	if in.Helper == "" {
		return nil, errNoHelper
	}
	// A helper missing from the settings gets the yay/paru defaults
	h, ok := in.Settings.Helper(in.Helper)
	if !ok {
		h = config.Helper{Name: in.Helper, InstallArgs: []string{"-S", "--needed"}, NoConfirmFlag: "--noconfirm"}
	}
	argv := []string{h.Name}
	argv = append(argv, h.InstallArgs...)
	if in.NoConfirm && h.NoConfirmFlag != "" {
		argv = append(argv, h.NoConfirmFlag)
	}
	return append(argv, pkgs...), nil
}

// InstallRepo installs pkgs from the main repository in a single call.
// An empty bucket is a no-op.
func (in *Installer) InstallRepo(ctx context.Context, pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}
	logger.Info("[INFO] Installing %d packages from the main repository...\n", len(pkgs))
	if err := in.run(ctx, in.RepoCommand(pkgs)); err != nil {
		return fmt.Errorf("repository install failed: %w", err)
	}
	return nil
}

// InstallSecondary installs pkgs through the AUR helper in a single call.
// An empty bucket is a no-op.
func (in *Installer) InstallSecondary(ctx context.Context, pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}
	argv, err := in.SecondaryCommand(pkgs)
	if err != nil {
		return err
	}
	logger.Info("[INFO] Installing %d packages with %s...\n", len(pkgs), in.Helper)
	if err := in.run(ctx, argv); err != nil {
		return fmt.Errorf("%s install failed: %w", in.Helper, err)
	}
	return nil
}

// run executes argv, or prints it in dry-run mode.
func (in *Installer) run(ctx context.Context, argv []string) error {
	// Dry run only prints the command line
	if in.DryRun {
		logger.Plain("[DRY-RUN] %s\n", strings.Join(argv, " "))
		return nil
	}
	logger.Debug("[DEBUG] run: %s\n", strings.Join(argv, " "))
	return in.Runner.Exec(ctx, argv[0], argv[1:]...)
}
