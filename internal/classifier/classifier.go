// Package classifier decides, for every package of the selected manifest
// categories, which installation route applies to it.
package classifier

import (
	"context"

	"golang.org/x/sync/errgroup"

	"setup-packages/internal/config"
	"setup-packages/internal/logger"
)

// PackageQuery answers read-only questions about the system package database.
// Implementations report a failed lookup as false.
type PackageQuery interface {
	IsInstalled(ctx context.Context, name string) bool
	IsInRepo(ctx context.Context, name string) bool
}

// Class is the outcome of classifying one package.
type Class int

const (
	Installed Class = iota
	RepoInstall
	SecondaryInstall
	Unresolved
)

func (c Class) String() string {
	switch c {
	case Installed:
		return "installed"
	case RepoInstall:
		return "repo"
	case SecondaryInstall:
		return "secondary"
	default:
		return "unresolved"
	}
}

// Options controls how packages missing from the main repository are routed.
// - SecondaryEnabled: The caller asked for secondary-repository (AUR) installs.
// - HelperAvailable: A secondary-repository helper was found on the system.
// - Jobs: Maximum number of concurrent lookups; values below 2 run sequentially.
type Options struct {
	SecondaryEnabled bool
	HelperAvailable  bool
	Jobs             int
}

// Result holds the four disjoint buckets in first-seen order, plus the requested
// categories that the manifest does not define.
type Result struct {
	Installed        []string
	RepoInstall      []string
	SecondaryInstall []string
	Unresolved       []string
	Skipped          []string
}

// Total returns the number of distinct packages across all buckets.
func (r Result) Total() int {
	return len(r.Installed) + len(r.RepoInstall) + len(r.SecondaryInstall) + len(r.Unresolved)
}

type occurrence struct {
	category string
	name     string
	class    Class
}

// Classify walks categories in order and every package of each category in
// manifest order, asking q where the package can come from. Categories absent
// from the manifest are skipped and listed in Result.Skipped.
//
// A package listed more than once is looked up at every occurrence, but only its
// first classification is kept, at the position of its first occurrence.
func Classify(ctx context.Context, m *config.Manifest, categories []string, q PackageQuery, opts Options) Result {
	var res Result
	var occ []occurrence

	for _, cat := range categories {
		c, ok := m.Lookup(cat)
		if !ok {
			logger.Warn("[WARN] Category %q not found in manifest. Skipping.\n", cat)
			res.Skipped = append(res.Skipped, cat)
			continue
		}
		logger.Info("[INFO] Processing category %s (%d packages)\n", cat, len(c.Packages))
		for _, name := range c.Packages {
			occ = append(occ, occurrence{category: cat, name: name})
		}
	}

	if opts.Jobs > 1 && len(occ) > 1 {
		classifyParallel(ctx, occ, q, opts)
	} else {
		for i := range occ {
			occ[i].class = classifyOne(ctx, occ[i].name, q, opts)
		}
	}

	seen := make(map[string]Class, len(occ))
	for _, o := range occ {
		if prev, dup := seen[o.name]; dup {
			if prev != o.class {
				logger.Warn("[WARN] %s classified as %s in %s but already kept as %s\n", o.name, o.class, o.category, prev)
			}
			continue
		}
		seen[o.name] = o.class
		switch o.class {
		case Installed:
			res.Installed = append(res.Installed, o.name)
		case RepoInstall:
			res.RepoInstall = append(res.RepoInstall, o.name)
		case SecondaryInstall:
			res.SecondaryInstall = append(res.SecondaryInstall, o.name)
		default:
			res.Unresolved = append(res.Unresolved, o.name)
		}
	}
	if len(res.Skipped) > 1 {
		res.Skipped = Dedup(res.Skipped)
	}
	return res
}

// classifyParallel fills occ[i].class using up to opts.Jobs concurrent lookups.
// Each goroutine owns exactly one slot, so no locking is needed.
func classifyParallel(ctx context.Context, occ []occurrence, q PackageQuery, opts Options) {
	var g errgroup.Group
	g.SetLimit(opts.Jobs)
	for i := range occ {
		g.Go(func() error {
			occ[i].class = classifyOne(ctx, occ[i].name, q, opts)
			return nil
		})
	}
	_ = g.Wait()
}

func classifyOne(ctx context.Context, name string, q PackageQuery, opts Options) Class {
	if q.IsInstalled(ctx, name) {
		logger.Debug("[DEBUG] %s is already installed\n", name)
		return Installed
	}
	if q.IsInRepo(ctx, name) {
		logger.Debug("[DEBUG] %s found in main repository\n", name)
		return RepoInstall
	}
	if opts.SecondaryEnabled && opts.HelperAvailable {
		logger.Debug("[DEBUG] %s queued for secondary repository\n", name)
		return SecondaryInstall
	}
	logger.Debug("[DEBUG] %s cannot be resolved\n", name)
	return Unresolved
}

// Dedup returns items with later duplicates removed, keeping first-seen order.
func Dedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
