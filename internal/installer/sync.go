package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/fatih/color"

	"setup-packages/internal/classifier"
	"setup-packages/internal/config"
	"setup-packages/internal/logger"
	"setup-packages/internal/report"
)

// Options are the per-run choices taken from the command line.
// - ManifestPath: Local path or http(s) URL of the manifest.
// - Categories: Explicit category selection; empty means every category.
// - Secondary: Allow installs from the AUR through a helper.
// - Jobs: Concurrent lookups; 0 falls back to the settings value.
// - ReportPath: Optional JSON report destination.
type Options struct {
	ManifestPath string
	Categories   []string
	Secondary    bool
	DryRun       bool
	NoConfirm    bool
	Jobs         int
	ReportPath   string
}

// Syncer wires settings, the command runner and the package query together.
// - Query: Defaults to a Pacman adapter over Runner when nil.
// - Out: Destination of the summary; nil means color.Output.
type Syncer struct {
	Settings config.Settings
	Runner   Runner
	Query    classifier.PackageQuery
	LookPath func(string) (string, error)
	Root     bool
	Out      io.Writer
}

// NewSyncer returns a Syncer that runs real commands on this machine.
func NewSyncer(settings config.Settings) *Syncer {
	return &Syncer{
		Settings: settings,
		Runner:   ExecRunner{},
		LookPath: exec.LookPath,
		Root:     os.Geteuid() == 0, // root never needs sudo
	}
}

// SyncPackages classifies the selected manifest categories, prints the summary and
// installs the repository and AUR buckets. Manifest and environment problems
// abort before any classification; an unresolved package never fails the run.
// Both install batches are attempted even if the first one fails.
//
// A cancelled ctx makes every remaining lookup fail, which would look like "not
// installed"; so cancellation is checked after classification and before each
// install batch, and the half-finished plan is neither reported nor installed.
func (s *Syncer) SyncPackages(ctx context.Context, opts Options) (classifier.Result, error) {
	// The package manager is the one hard environment requirement
	pm := s.Settings.PackageManager
	if _, err := RequireTool(pm.Command, s.LookPath); err != nil {
		return classifier.Result{}, err
	}

	// Load and validate the manifest before any query runs
	m, err := config.LoadManifest(ctx, opts.ManifestPath)
	if err != nil {
		return classifier.Result{}, err
	}
	categories := m.Select(opts.Categories)
	logger.Debug("[DEBUG] SyncPackages: %d categories selected\n", len(categories))

	// Only look for an AUR helper when AUR installs were asked for
	helper, helperFound := "", false
	if opts.Secondary {
		helper, helperFound = DetectHelper(s.Settings.HelperNames(), s.LookPath)
		if helperFound {
			logger.Info("[INFO] Using %s for AUR packages\n", helper)
		} else {
			logger.Warn("[WARN] AUR installs requested but none of %v is installed. AUR packages will be reported as unresolved.\n",
				s.Settings.HelperNames())
		}
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = s.Settings.Jobs
	}

	query := s.Query
	if query == nil {
		query = NewPacman(pm, s.Runner)
	}

	res := classifier.Classify(ctx, m, categories, query, classifier.Options{
		SecondaryEnabled: opts.Secondary,
		HelperAvailable:  helperFound,
		Jobs:             jobs,
	})
	if err := ctx.Err(); err != nil {
		return classifier.Result{}, fmt.Errorf("classification interrupted: %w", err)
	}

	out := s.Out
	if out == nil {
		out = color.Output
	}
	report.Print(out, res, helper)

	var errs []error
	if opts.ReportPath != "" {
		if err := report.WriteJSON(opts.ReportPath, res); err != nil {
			// Installs still run; the failed write is returned with them
			logger.Error("[ERROR] %v\n", err)
			errs = append(errs, err)
		}
	}

	in := &Installer{
		Settings:  s.Settings,
		Runner:    s.Runner,
		Helper:    helper,
		DryRun:    opts.DryRun,
		NoConfirm: opts.NoConfirm,
		Root:      s.Root,
	}

	// One batched call per bucket: main repository first, then the AUR
	batches := []struct {
		install func(context.Context, []string) error
		pkgs    []string
	}{
		{in.InstallRepo, res.RepoInstall},
		{in.InstallSecondary, res.SecondaryInstall},
	}
	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("installation interrupted: %w", err))
			break
		}
		if err := b.install(ctx, b.pkgs); err != nil {
			logger.Error("[ERROR] %v\n", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return res, fmt.Errorf("sync incomplete: %w", errors.Join(errs...))
	}

	if len(res.Unresolved) > 0 {
		logger.Warn("[WARN] %d packages could not be resolved\n", len(res.Unresolved))
	}
	if opts.DryRun {
		logger.Info("[INFO] Dry run complete. Nothing was installed.\n")
	} else {
		logger.Info("[INFO] Done.\n")
	}
	return res, nil
}
