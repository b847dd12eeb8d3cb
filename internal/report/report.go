package report

import (
	"encoding/json" // For JSON encoding of the report file
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color" // Colored headings and warnings in the summary

	"setup-packages/internal/classifier"
	"setup-packages/internal/logger"
)

// Summary colors, matching the logger levels: bold titles, magenta for unresolved.
var (
	heading = color.New(color.Bold)
	warn    = color.New(color.FgHiMagenta)
)

// Report is the JSON form of a classification result.
type Report struct {
	GeneratedAt      time.Time `json:"generated_at"`      // When the report was written, in UTC
	Installed        []string  `json:"installed"`         // Already present on the system
	RepoInstall      []string  `json:"repo_install"`      // Installable from the main repository
	SecondaryInstall []string  `json:"secondary_install"` // Installable from the AUR
	Unresolved       []string  `json:"unresolved"`        // Not available anywhere usable
	Skipped          []string  `json:"skipped"`           // Requested categories missing from the manifest
}

// New converts res into a Report. Empty buckets become empty arrays, not null.
func New(res classifier.Result, now time.Time) Report {
	return Report{
		GeneratedAt:      now.UTC(),
		Installed:        nonNil(res.Installed),
		RepoInstall:      nonNil(res.RepoInstall),
		SecondaryInstall: nonNil(res.SecondaryInstall),
		Unresolved:       nonNil(res.Unresolved),
		Skipped:          nonNil(res.Skipped),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Print writes the per-bucket counts to w, followed by the contents of every
// non-empty bucket. helper names the AUR helper used for the secondary bucket, if any.
func Print(w io.Writer, res classifier.Result, helper string) {
	secondaryLabel := "AUR"
	if helper != "" {
		secondaryLabel = "AUR (" + helper + ")"
	}

	// Counts first, so the outcome is visible even for long package lists
	heading.Fprintf(w, "\nSummary\n")
	fmt.Fprintf(w, "  Already installed: %d\n", len(res.Installed))
	fmt.Fprintf(w, "  From repository:   %d\n", len(res.RepoInstall))
	fmt.Fprintf(w, "  From %s: %d\n", secondaryLabel, len(res.SecondaryInstall))
	fmt.Fprintf(w, "  Unresolved:        %d\n", len(res.Unresolved))
	if len(res.Skipped) > 0 {
		fmt.Fprintf(w, "  Unknown categories: %s\n", strings.Join(res.Skipped, ", "))
	}

	// Then the bucket contents, in first-seen order
	printBucket(w, heading, "Already installed", res.Installed)
	printBucket(w, heading, "Repository packages", res.RepoInstall)
	printBucket(w, heading, secondaryLabel+" packages", res.SecondaryInstall)
	printBucket(w, warn, "Unresolved packages", res.Unresolved)
	fmt.Fprintln(w)
}

func printBucket(w io.Writer, title *color.Color, name string, pkgs []string) {
	if len(pkgs) == 0 {
		return
	}
	title.Fprintf(w, "\n%s:\n", name)
	fmt.Fprintf(w, "  %s\n", strings.Join(pkgs, " "))
}

// WriteJSON writes the report for res to path as indented JSON.
func WriteJSON(path string, res classifier.Result) error {
	// Marshal the report into indented JSON bytes
	data, err := json.MarshalIndent(New(res, time.Now()), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	logger.Debug("[DEBUG] Writing report to %s\n", path)

	// Write the JSON bytes to the file with mode 0644 (read/write owner, read others)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report file %s: %w", path, err)
	}
	return nil
}
