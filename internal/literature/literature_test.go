// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "literature.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(title string, year int, authors ...string) types.LiteratureEntry {
	return types.LiteratureEntry{Title: title, Year: year, Authors: authors}
}

func TestImportAndAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.Import(ctx, []types.LiteratureEntry{
		entry("Deep Learning for Breast Cancer Detection", 2023, "Jane Zhang"),
		entry("Attention Is All You Need", 2017, "Ashish Vaswani"),
		{Title: ""}, // skipped: no title
	}, "zotero")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d entries, want 2", n)
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(All) = %d, want 2", len(all))
	}
	for _, e := range all {
		if e.ID == "" {
			t.Errorf("entry %q has no generated id", e.Title)
		}
		if e.Library != "zotero" {
			t.Errorf("entry %q library = %q, want zotero", e.Title, e.Library)
		}
	}
}

func TestImportFile(t *testing.T) {
	s := openTestStore(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.yaml")
	yaml := `entries:
  - title: Transfer Learning in Radiology
    authors: [Maria Lopez]
    year: 2022
    abstract: Transfer learning improves radiology classifiers.
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := s.ImportFile(context.Background(), path, "mendeley")
	if err != nil {
		t.Fatalf("import file: %v", err)
	}
	if n != 1 {
		t.Errorf("imported %d entries, want 1", n)
	}

	libs, err := s.Libraries(context.Background())
	if err != nil {
		t.Fatalf("libraries: %v", err)
	}
	if len(libs) != 1 || libs[0] != "mendeley" {
		t.Errorf("Libraries = %v, want [mendeley]", libs)
	}
}

func TestBuildIndexFoldsDuplicates(t *testing.T) {
	// Same work imported from two libraries with trivial text differences.
	a := entry("Deep Learning for Breast Cancer Detection", 2023, "Jane Zhang")
	a.Library = "zotero"
	b := entry("Deep  learning for breast cancer detection.", 2023, "Jane Zhang")
	b.Library = "mendeley"
	b.Abstract = "CNNs detect tumors in mammograms."
	c := entry("Attention Is All You Need", 2017, "Ashish Vaswani")

	idx := BuildIndex([]types.LiteratureEntry{a, b, c})
	if idx.Len() != 2 {
		t.Fatalf("index has %d entries, want 2 after folding", idx.Len())
	}
	// First occurrence wins but inherits the abstract it lacked.
	canonical := idx.Entries()[0]
	if canonical.Library != "zotero" {
		t.Errorf("canonical entry library = %q, want zotero", canonical.Library)
	}
	if canonical.Abstract != "CNNs detect tumors in mammograms." {
		t.Errorf("canonical entry did not inherit abstract: %q", canonical.Abstract)
	}
}

func TestResolve(t *testing.T) {
	idx := BuildIndex([]types.LiteratureEntry{
		entry("Attention Is All You Need", 2017, "Ashish Vaswani"),
	})

	tests := []struct {
		marker string
		want   bool
	}{
		{"Vaswani2017", true},
		{"vaswani2017", true},
		{" Vaswani2017 ", true},
		{"Smith2020", false},
	}
	for _, tt := range tests {
		if _, ok := idx.Resolve(tt.marker); ok != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.marker, ok, tt.want)
		}
	}
}

func TestRank(t *testing.T) {
	idx := BuildIndex([]types.LiteratureEntry{
		{Title: "Mammography Screening Outcomes", Year: 2021, Authors: []string{"A Chen"},
			Abstract: "Screening mammography reduces mortality in large cohorts."},
		{Title: "Protein Folding with Transformers", Year: 2022, Authors: []string{"B Kim"},
			Abstract: "Transformers predict protein structure."},
		{Title: "Convolutional Networks for Mammography", Year: 2020, Authors: []string{"C Diaz"},
			Abstract: "Convolutional networks classify mammography images into cancer categories."},
	})

	ranked := idx.Rank("We trained convolutional networks on mammography images for cancer screening.", 2)
	if len(ranked) != 2 {
		t.Fatalf("Rank returned %d entries, want 2", len(ranked))
	}
	if ranked[0].Authors[0] != "C Diaz" {
		t.Errorf("top entry = %q, want the convolutional mammography paper", ranked[0].Title)
	}
	for _, e := range ranked {
		if e.Title == "Protein Folding with Transformers" {
			t.Error("zero-overlap entry should be dropped")
		}
	}
}

func TestRankDeterministic(t *testing.T) {
	entries := []types.LiteratureEntry{
		{Title: "Study One on Imaging", Year: 2020, Abstract: "imaging cancer detection"},
		{Title: "Study Two on Imaging", Year: 2021, Abstract: "imaging cancer detection"},
	}
	idx := BuildIndex(entries)
	first := idx.Rank("cancer imaging detection", 2)
	for i := 0; i < 5; i++ {
		again := idx.Rank("cancer imaging detection", 2)
		for j := range again {
			if again[j].Title != first[j].Title {
				t.Fatalf("tie-broken order changed between runs")
			}
		}
	}
}

func TestAllRejectsCorruptAuthors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Import(ctx, []types.LiteratureEntry{
		{Title: "Clean Entry", Authors: []string{"A Author"}, Year: 2021},
	}, "lib"); err != nil {
		t.Fatalf("importing: %v", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, title, authors, year, abstract, library, normalized_key)
		 VALUES ('badrow000000', 'Broken Entry', '{not json', 2022, '', 'lib', 'broken-entry-2022')`); err != nil {
		t.Fatalf("inserting corrupt row: %v", err)
	}

	if _, err := s.All(ctx); err == nil {
		t.Fatal("All accepted a corrupt authors column")
	}
}
