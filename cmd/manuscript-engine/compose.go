// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/manuscript-engine/internal/backend"
	"github.com/pdiddy/manuscript-engine/internal/content"
	"github.com/pdiddy/manuscript-engine/internal/literature"
	"github.com/pdiddy/manuscript-engine/internal/pipeline"
	"github.com/pdiddy/manuscript-engine/internal/secrets"
	"github.com/pdiddy/manuscript-engine/pkg/types"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose the manuscript from extracted content and literature",
	Long: `Compose runs the full section-generation pipeline: it schedules sections
over their dependency graph, generates each one through its model chain with
quality-gated retries, and assembles the terminal drafts into a manuscript
with renumbered citations.

Section drafts land in <output-dir>/sections/, the manuscript in
<output-dir>/manuscript.md, and the assembly report in <output-dir>/report.yaml.
Re-running reuses terminal section drafts already on disk.`,
	RunE: runCompose,
}

func runCompose(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd)

	store, err := content.Load(cfg.Pipeline.ContentPath)
	if err != nil {
		return err
	}

	index, err := loadIndex(cmd, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Composing %q with %d literature entries\n", store.Title(), index.Len())

	styleGuide := ""
	if cfg.Pipeline.StyleGuidePath != "" {
		data, err := os.ReadFile(cfg.Pipeline.StyleGuidePath)
		if err != nil {
			return fmt.Errorf("reading style guide: %w", err)
		}
		styleGuide = string(data)
	}

	var client backend.Client = backend.NewHTTPClient(cfg.Backend)
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		fmt.Fprintln(os.Stderr, "offline mode: using the template backend for every section")
		client = backend.NewTemplate()
	}

	p, err := pipeline.New(pipeline.Options{
		Store:      store,
		Index:      index,
		Client:     client,
		StyleGuide: styleGuide,
		Config:     cfg,
		Out:        os.Stdout,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paper, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nManuscript: %s/manuscript.md (%d words)\n",
		cfg.Pipeline.OutputDir, paper.Report.TotalWords)
	if len(paper.Report.Degraded) > 0 {
		fmt.Fprintf(os.Stdout, "Degraded sections: %v\n", paper.Report.Degraded)
	}
	if len(paper.Report.Unresolved) > 0 {
		fmt.Fprintf(os.Stdout, "Unresolved citations: %d (see report.yaml)\n", len(paper.Report.Unresolved))
	}
	return nil
}

// loadIndex opens the literature database and builds the merged index. A
// missing database is not fatal; composition proceeds without citations.
func loadIndex(cmd *cobra.Command, cfg types.Config) (*literature.Index, error) {
	dbPath := cfg.Literature.DBPath
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "no literature database at %s, composing without citations\n", dbPath)
		return literature.BuildIndex(nil), nil
	}

	db, err := literature.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	entries, err := db.All(cmd.Context())
	if err != nil {
		return nil, err
	}

	if libs, _ := cmd.Flags().GetStringSlice("library"); len(libs) > 0 {
		selected := make(map[string]bool, len(libs))
		for _, l := range libs {
			selected[l] = true
		}
		var filtered []types.LiteratureEntry
		for _, e := range entries {
			if selected[e.Library] {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	return literature.BuildIndex(entries), nil
}

// buildConfig resolves the run configuration: explicit flags win, then
// config-file/environment values via viper, then package defaults.
func buildConfig(cmd *cobra.Command) types.Config {
	var cfg types.Config

	cfg.Backend.BaseURL = stringSetting(cmd, "base-url", "backend.base_url")
	cfg.Backend.APIKey = stringSetting(cmd, "api-key", "backend.api_key")
	if cfg.Backend.APIKey == "" {
		cfg.Backend.APIKey = secrets.First(loadedSecrets,
			"openai-api-key", "anthropic-api-key", "deepseek-api-key")
	}
	cfg.Backend.Timeout = viper.GetDuration("backend.timeout")
	cfg.Backend.MaxTokens = viper.GetInt("backend.max_tokens")
	cfg.Backend.UserAgent = viper.GetString("backend.user_agent")

	cfg.Quality.CompletenessThreshold = viper.GetFloat64("quality.completeness_threshold")
	cfg.Quality.StyleThreshold = viper.GetFloat64("quality.style_threshold")
	cfg.Quality.CitationThreshold = viper.GetFloat64("quality.citation_threshold")
	cfg.Quality.OverallThreshold = viper.GetFloat64("quality.overall_threshold")
	cfg.Quality.CompletenessWeight = viper.GetFloat64("quality.completeness_weight")
	cfg.Quality.StyleWeight = viper.GetFloat64("quality.style_weight")
	cfg.Quality.CitationWeight = viper.GetFloat64("quality.citation_weight")

	cfg.Literature.DBPath = stringSetting(cmd, "db", "literature.db_path")
	if cfg.Literature.DBPath == "" {
		cfg.Literature.DBPath = "literature.db"
	}
	cfg.Literature.MaxPerSection = viper.GetInt("literature.max_per_section")

	cfg.Pipeline.ContentPath = stringSetting(cmd, "content", "pipeline.content_path")
	if cfg.Pipeline.ContentPath == "" {
		cfg.Pipeline.ContentPath = "content.yaml"
	}
	cfg.Pipeline.StyleGuidePath = stringSetting(cmd, "style-guide", "pipeline.style_guide_path")
	cfg.Pipeline.OutputDir = stringSetting(cmd, "output-dir", "pipeline.output_dir")
	if cfg.Pipeline.OutputDir == "" {
		cfg.Pipeline.OutputDir = "output"
	}
	cfg.Pipeline.MaxRetries = intSetting(cmd, "max-retries", "pipeline.max_retries")
	cfg.Pipeline.Concurrency = intSetting(cmd, "concurrency", "pipeline.concurrency")
	cfg.Pipeline.UpstreamExcerptRunes = viper.GetInt("pipeline.upstream_excerpt_runes")

	// Model chains only come from the config file.
	_ = viper.UnmarshalKey("models", &cfg.Models)

	return cfg
}

func stringSetting(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

func intSetting(cmd *cobra.Command, flag, key string) int {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetInt(flag)
		return v
	}
	if v := viper.GetInt(key); v != 0 {
		return v
	}
	v, _ := cmd.Flags().GetInt(flag)
	return v
}

func init() {
	composeCmd.Flags().String("content", "content.yaml", "path to extracted research content (YAML)")
	composeCmd.Flags().String("style-guide", "", "path to a style guide with per-section ## headings")
	composeCmd.Flags().String("db", "literature.db", "path to the literature SQLite database")
	composeCmd.Flags().StringSlice("library", nil, "restrict literature to these libraries (repeatable)")
	composeCmd.Flags().String("output-dir", "output", "directory for section drafts, manuscript, and report")
	composeCmd.Flags().String("base-url", "", "OpenAI-compatible backend base URL")
	composeCmd.Flags().String("api-key", "", "backend API key (default: .secrets/ key files)")
	composeCmd.Flags().Int("max-retries", 0, "generation attempt budget per section (0 = default)")
	composeCmd.Flags().Int("concurrency", 0, "parallel section workers (0 = default)")
	composeCmd.Flags().Bool("offline", false, "skip the backend and render template sections only")

	rootCmd.AddCommand(composeCmd)
}
