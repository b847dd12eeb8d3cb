package cmd

import (
	"github.com/spf13/cobra"

	"setup-packages/internal/config"
	"setup-packages/internal/logger"
)

// categoriesCmd lists the categories of the manifest in file order with their
// package counts, which is what --categories accepts.
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories defined in the manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := config.LoadManifest(cmd.Context(), manifestPath)
		if err != nil {
			return err
		}
		logger.Heading("%d categories in %s:\n", len(m.Order), manifestPath)
		printCategories(m)
		return nil
	},
}

// printCategories lists the categories in file order with aligned package counts.
func printCategories(m *config.Manifest) {
	// Pad names to the longest one so the counts line up
	width := 0
	for _, name := range m.Order {
		width = max(width, len(name))
	}
	for _, name := range m.Order {
		cat := m.Categories[name]
		logger.Plain("%-*s  %3d packages", width, name, len(cat.Packages))
		if cat.Description != "" {
			logger.Plain("  %s", cat.Description)
		}
		logger.Plain("\n")
	}
}
