// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/manuscript-engine/internal/literature"
)

var literatureCmd = &cobra.Command{
	Use:   "literature",
	Short: "Manage the citation database (import, list, libraries)",
	Long: `Literature manages the local SQLite citation database. Import one or more
library export files (YAML), then inspect the merged entries. Entries from
different libraries that share a normalized title and year fold into one
canonical citation at composition time.`,
}

var literatureImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import a library export file into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runLiteratureImport,
}

func runLiteratureImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	library, _ := cmd.Flags().GetString("library")
	if library == "" {
		library = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	store, err := openLiterature(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.ImportFile(cmd.Context(), path, library)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d entries into library %q\n", n, library)
	return nil
}

var literatureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all entries in the database",
	RunE:  runLiteratureList,
}

func runLiteratureList(cmd *cobra.Command, args []string) error {
	store, err := openLiterature(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.All(cmd.Context())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No entries.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-14s  %-6s  %-50s  %s\n", "ID", "Citekey", "Year", "Title", "Library")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, e := range entries {
		title := e.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-14s  %-14s  %-6d  %-50s  %s\n", e.ID, e.Citekey(), e.Year, title, e.Library)
	}
	fmt.Fprintf(os.Stdout, "\n%d entries\n", len(entries))
	return nil
}

var literatureLibrariesCmd = &cobra.Command{
	Use:   "libraries",
	Short: "List the imported libraries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLiterature(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		libs, err := store.Libraries(cmd.Context())
		if err != nil {
			return err
		}
		for _, l := range libs {
			fmt.Println(l)
		}
		return nil
	},
}

func openLiterature(cmd *cobra.Command) (*literature.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = "literature.db"
	}
	return literature.Open(dbPath)
}

func init() {
	literatureCmd.PersistentFlags().String("db", "literature.db", "path to the literature SQLite database")
	literatureImportCmd.Flags().String("library", "", "library name for the imported entries (default: file name)")

	literatureCmd.AddCommand(literatureImportCmd)
	literatureCmd.AddCommand(literatureListCmd)
	literatureCmd.AddCommand(literatureLibrariesCmd)

	rootCmd.AddCommand(literatureCmd)
}
