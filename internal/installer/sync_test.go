package installer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"setup-packages/internal/config"
)

func newTestSyncer(r *fakeRunner, found ...string) *Syncer {
	return &Syncer{
		Settings: config.DefaultSettings(),
		Runner:   r,
		LookPath: lookPathFor(found...),
		Root:     true,
	}
}

const baseManifest = `{"base":{"packages":["git","ghost-pkg"]}}`

func TestSyncPackagesSecondaryDisabled(t *testing.T) {
	out := captureOutput(t)
	r := &fakeRunner{ok: map[string]bool{"pacman -Q git": true}}
	s := newTestSyncer(r, "pacman", "yay")

	res, err := s.SyncPackages(context.Background(), Options{ManifestPath: writeManifest(t, baseManifest)})
	require.NoError(t, err)
	require.Equal(t, []string{"git"}, res.Installed)
	require.Equal(t, []string{"ghost-pkg"}, res.Unresolved)
	require.Empty(t, res.SecondaryInstall)
	require.Empty(t, r.execs)
	require.Contains(t, out.String(), "ghost-pkg")
}

func TestSyncPackagesSecondaryEnabled(t *testing.T) {
	captureOutput(t)
	r := &fakeRunner{ok: map[string]bool{"pacman -Q git": true}}
	s := newTestSyncer(r, "pacman", "paru")

	res, err := s.SyncPackages(context.Background(), Options{
		ManifestPath: writeManifest(t, baseManifest),
		Secondary:    true,
		NoConfirm:    true,
	})
	require.NoError(t, err)
	require.Empty(t, res.Unresolved)
	require.Equal(t, []string{"ghost-pkg"}, res.SecondaryInstall)
	require.Equal(t, []string{"paru -S --needed --noconfirm ghost-pkg"}, r.execs)
}

func TestSyncPackagesHelperMissingDegrades(t *testing.T) {
	out := captureOutput(t)
	r := &fakeRunner{}
	s := newTestSyncer(r, "pacman")

	res, err := s.SyncPackages(context.Background(), Options{
		ManifestPath: writeManifest(t, baseManifest),
		Secondary:    true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"git", "ghost-pkg"}, res.Unresolved)
	require.Empty(t, r.execs)
	require.Contains(t, out.String(), "AUR installs requested")
}

func TestSyncPackagesUnknownCategory(t *testing.T) {
	captureOutput(t)
	r := &fakeRunner{}
	s := newTestSyncer(r, "pacman")

	res, err := s.SyncPackages(context.Background(), Options{
		ManifestPath: writeManifest(t, baseManifest),
		Categories:   []string{"missing_cat"},
	})
	require.NoError(t, err)
	require.Zero(t, res.Total())
	require.Equal(t, []string{"missing_cat"}, res.Skipped)
	require.Empty(t, r.probes)
	require.Empty(t, r.execs)
}

func TestSyncPackagesDryRun(t *testing.T) {
	out := captureOutput(t)
	r := &fakeRunner{ok: map[string]bool{
		"pacman -Q git":     true,
		"pacman -Si neovim": true,
	}}
	s := newTestSyncer(r, "pacman", "yay")
	s.Root = false

	res, err := s.SyncPackages(context.Background(), Options{
		ManifestPath: writeManifest(t, `{"base":{"packages":["git","neovim","yay-bin"]}}`),
		Secondary:    true,
		DryRun:       true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"neovim"}, res.RepoInstall)
	require.Equal(t, []string{"yay-bin"}, res.SecondaryInstall)
	require.NotEmpty(t, r.probes)
	require.Empty(t, r.execs)
	require.Contains(t, out.String(), "[DRY-RUN] sudo pacman -S --needed neovim")
	require.Contains(t, out.String(), "[DRY-RUN] yay -S --needed yay-bin")
}

func TestSyncPackagesFatalErrors(t *testing.T) {
	captureOutput(t)

	t.Run("package manager missing", func(t *testing.T) {
		r := &fakeRunner{}
		_, err := newTestSyncer(r).SyncPackages(context.Background(), Options{ManifestPath: writeManifest(t, baseManifest)})
		require.ErrorIs(t, err, ErrPackageManagerMissing)
		require.Empty(t, r.probes)
	})

	t.Run("manifest missing", func(t *testing.T) {
		r := &fakeRunner{}
		_, err := newTestSyncer(r, "pacman").SyncPackages(context.Background(), Options{
			ManifestPath: filepath.Join(t.TempDir(), "nope.json"),
		})
		require.ErrorIs(t, err, config.ErrManifestNotFound)
		require.Empty(t, r.probes)
	})

	t.Run("manifest malformed", func(t *testing.T) {
		r := &fakeRunner{}
		_, err := newTestSyncer(r, "pacman").SyncPackages(context.Background(), Options{
			ManifestPath: writeManifest(t, `{"base":["git"]}`),
		})
		require.ErrorIs(t, err, config.ErrMalformedManifest)
		require.Empty(t, r.probes)
	})
}

func TestSyncPackagesAttemptsBothInstalls(t *testing.T) {
	captureOutput(t)
	boom := errors.New("exit status 1")
	r := &fakeRunner{
		ok:      map[string]bool{"pacman -Si neovim": true},
		execErr: map[string]error{"pacman": boom},
	}
	s := newTestSyncer(r, "pacman", "yay")

	_, err := s.SyncPackages(context.Background(), Options{
		ManifestPath: writeManifest(t, `{"base":{"packages":["neovim","yay-bin"]}}`),
		Secondary:    true,
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"pacman -S --needed neovim", "yay -S --needed yay-bin"}, r.execs)
}

func TestSyncPackagesWritesReport(t *testing.T) {
	captureOutput(t)
	r := &fakeRunner{ok: map[string]bool{"pacman -Q git": true}}
	s := newTestSyncer(r, "pacman")
	reportPath := filepath.Join(t.TempDir(), "report.json")

	_, err := s.SyncPackages(context.Background(), Options{
		ManifestPath: writeManifest(t, baseManifest),
		Categories:   []string{"base", "extra"},
		Jobs:         4,
		ReportPath:   reportPath,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var got struct {
		Installed  []string `json:"installed"`
		Repo       []string `json:"repo_install"`
		Unresolved []string `json:"unresolved"`
		Skipped    []string `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, []string{"git"}, got.Installed)
	require.Equal(t, []string{}, got.Repo)
	require.Equal(t, []string{"ghost-pkg"}, got.Unresolved)
	require.Equal(t, []string{"extra"}, got.Skipped)
}

// cancelQuery answers like a real package manager whose lookups start failing once
// the run is interrupted: it cancels the context after the first lookup and
// reports "no" from then on.
type cancelQuery struct {
	cancel context.CancelFunc
	calls  int
}

func (q *cancelQuery) IsInstalled(ctx context.Context, _ string) bool {
	q.calls++
	if q.calls == 1 {
		q.cancel()
		return true
	}
	return ctx.Err() == nil
}

func (q *cancelQuery) IsInRepo(ctx context.Context, _ string) bool { return ctx.Err() == nil }

func TestSyncPackagesInterruptedDuringClassification(t *testing.T) {
	out := captureOutput(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &fakeRunner{}
	s := newTestSyncer(r, "pacman", "yay")
	s.Query = &cancelQuery{cancel: cancel}
	reportPath := filepath.Join(t.TempDir(), "report.json")

	res, err := s.SyncPackages(ctx, Options{
		ManifestPath: writeManifest(t, `{"base":{"packages":["git","neovim","yay-bin"]}}`),
		Secondary:    true,
		ReportPath:   reportPath,
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, res.Total())
	require.Empty(t, r.execs)
	require.NoFileExists(t, reportPath)
	require.NotContains(t, out.String(), "Summary")
}

func TestSyncPackagesAlreadyCancelled(t *testing.T) {
	captureOutput(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeRunner{}
	_, err := newTestSyncer(r, "pacman").SyncPackages(ctx, Options{ManifestPath: writeManifest(t, baseManifest)})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, r.execs)
}

func TestSyncPackagesInterruptedBetweenInstalls(t *testing.T) {
	captureOutput(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &fakeRunner{
		ok:     map[string]bool{"pacman -Si neovim": true},
		onExec: func(string) { cancel() },
	}
	s := newTestSyncer(r, "pacman", "yay")

	_, err := s.SyncPackages(ctx, Options{
		ManifestPath: writeManifest(t, `{"base":{"packages":["neovim","yay-bin"]}}`),
		Secondary:    true,
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []string{"pacman -S --needed neovim"}, r.execs)
}

func TestSyncPackagesReportWriteFailure(t *testing.T) {
	captureOutput(t)
	r := &fakeRunner{ok: map[string]bool{"pacman -Si neovim": true}}
	s := newTestSyncer(r, "pacman")

	res, err := s.SyncPackages(context.Background(), Options{
		ManifestPath: writeManifest(t, `{"base":{"packages":["neovim"]}}`),
		ReportPath:   filepath.Join(t.TempDir(), "missing", "report.json"),
	})
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Equal(t, []string{"neovim"}, res.RepoInstall)
	require.Equal(t, []string{"pacman -S --needed neovim"}, r.execs)
}
