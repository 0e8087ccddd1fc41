// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/manuscript-engine/internal/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show section drafts from the last composition run",
	Long: `Status reads the per-section artifacts under the output directory and
prints each section's state, model, attempts, and quality score. Terminal
sections are reused by the next compose run; delete a section's artifact
to force its regeneration.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	outputDir, _ := cmd.Flags().GetString("output-dir")
	drafts := pipeline.LoadSections(outputDir)
	if len(drafts) == 0 {
		fmt.Printf("No section drafts under %s/sections/\n", outputDir)
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-10s  %-18s  %-8s  %-7s  %s\n",
		"Section", "Status", "Model", "Attempts", "Words", "Overall")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 72))
	for _, d := range drafts {
		fmt.Fprintf(os.Stdout, "%-14s  %-10s  %-18s  %-8d  %-7d  %.2f\n",
			d.Section, d.Status, d.Model, d.Attempts, d.WordCount, d.Score.Overall)
	}
	return nil
}

func init() {
	statusCmd.Flags().String("output-dir", "output", "directory holding the run's artifacts")

	rootCmd.AddCommand(statusCmd)
}
