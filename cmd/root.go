package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"setup-packages/internal/classifier"
	"setup-packages/internal/config"
	"setup-packages/internal/installer"
	"setup-packages/internal/logger"
)

// debug flag indicates whether debug logging should be enabled.
var debug bool

// manifestPath is the JSON manifest (path or URL), passed via `--file` or `-f`.
var manifestPath string

// settingsPath is the optional YAML tool settings file.
var settingsPath string

var (
	categoriesFlag string
	aur            bool
	dryRun         bool
	noConfirm      bool
	jobs           int
	reportPath     string
)

// rootCmd is the base command. Running it without a subcommand classifies the
// manifest and installs what it can.
var rootCmd = &cobra.Command{
	Use:   "setup-packages",
	Short: "Install categorized packages from a JSON manifest with pacman and an AUR helper",
	Long: `setup-packages reads a JSON manifest of the form
  {"category": {"packages": ["name", ...]}, ...}
and sorts every package of the selected categories into four buckets:
already installed, available in the official repositories, available in the
AUR (with --aur and yay or paru installed), and unresolved. Each installable
bucket is then installed with one batched command.`,
	SilenceUsage: true,

	// PersistentPreRun is a hook that runs before any subcommand.
	// Here, we initialize the logger based on the debug flag.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := config.LoadSettings(settingsPath)
		if err != nil {
			return err
		}

		opts := installer.Options{
			ManifestPath: manifestPath,
			Categories:   parseCategories(categoriesFlag),
			Secondary:    aur,
			DryRun:       dryRun,
			NoConfirm:    noConfirm,
			ReportPath:   reportPath,
		}
		// The settings file decides the lookup concurrency unless --jobs was given
		opts.Jobs = st.Jobs
		if cmd.Flags().Changed("jobs") {
			opts.Jobs = jobs
		}

		return runSync(cmd.Context(), st, opts)
	},
}

// runSync performs the classification and installs for the root command.
// Tests replace it to inspect the resolved settings and options.
var runSync = func(ctx context.Context, st config.Settings, opts installer.Options) error {
	_, err := installer.NewSyncer(st).SyncPackages(ctx, opts)
	return err
}

// parseCategories splits a comma-separated --categories value, trimming blanks and
// dropping empty and repeated entries.
func parseCategories(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return classifier.Dedup(out)
}

// Execute initializes flags, registers subcommands, and starts the command execution.
// Any returned error exits the process with status 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&debug, "debug", false, "Enable debug logging")
	pf.StringVarP(&manifestPath, "file", "f", "", "Path or URL of the JSON package manifest (required)")
	_ = rootCmd.MarkPersistentFlagRequired("file")

	f := rootCmd.Flags()
	f.StringVar(&categoriesFlag, "categories", "", `Comma-separated categories to process, e.g. "base,dev" (default: all)`)
	f.BoolVar(&aur, "aur", false, "Install packages missing from the official repositories from the AUR")
	f.BoolVar(&dryRun, "dry-run", false, "Print the planned install commands without running them")
	f.BoolVar(&noConfirm, "no-confirm", false, "Pass --noconfirm to pacman and the AUR helper")
	f.StringVarP(&settingsPath, "config", "c", "", "Path to a YAML settings file for the package manager and helpers")
	f.IntVar(&jobs, "jobs", 1, "Number of concurrent package lookups")
	f.StringVar(&reportPath, "report", "", "Write the classification result as JSON to this path")

	rootCmd.AddCommand(categoriesCmd)
}
