package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-test/internal/indexer"
	"github.com/ziadkadry99/auto-test/internal/knowledge"
	"github.com/ziadkadry99/auto-test/internal/progress"
	"github.com/ziadkadry99/auto-test/internal/retrieval"
	"github.com/ziadkadry99/auto-test/internal/vectordb"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Rebuild the vector index from the knowledge base",
	Long: `Walks the knowledge base, embeds every accepted document and replaces the
vector index and the article cache. Documents that fail to embed are
skipped with a warning.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("check", false, "report how many documents changed since the last ingest without re-indexing")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	check, _ := cmd.Flags().GetBool("check")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	loader := knowledge.NewLoader(cfg.KnowledgeDir, cfg.Extensions, log)
	loaded, err := loader.Load()
	if err != nil {
		return fmt.Errorf("loading knowledge base: %w", err)
	}
	if loaded.Seeded {
		fmt.Fprintf(os.Stderr, "Knowledge base was empty; wrote %d starter documents to %s\n", knowledge.SeedCount, cfg.KnowledgeDir)
		if loaded, err = loader.Load(); err != nil {
			return fmt.Errorf("loading seeded knowledge base: %w", err)
		}
	}
	docs := loaded.Documents

	if check {
		state, err := indexer.LoadState(cfg.IndexDir)
		if err != nil {
			return fmt.Errorf("reading index state: %w", err)
		}
		stale := state.Stale(docs)
		if stale == 0 {
			fmt.Printf("Index is up to date (%d documents).\n", len(docs))
		} else {
			fmt.Printf("%d of %d documents changed since the last ingest. Run `autotest ingest`.\n", stale, len(docs))
		}
		return nil
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	store, err := vectordb.NewChromemStore(cfg.IndexDir, embedder, log)
	if err != nil {
		return fmt.Errorf("opening vector index: %w", err)
	}

	pipeline := indexer.NewPipeline(embedder, store, log)
	reporter := progress.NewReporter("Indexing")
	reporter.Start(len(docs))
	pipeline.SetProgressFunc(func(processed int, total int, currentID string) {
		reporter.Update(processed, currentID)
	})

	result, err := pipeline.Ingest(ctx, docs)
	reporter.Finish()
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if err := retrieval.SaveArticles(cfg.ArticlesFile, result.Articles); err != nil {
		return fmt.Errorf("saving article cache: %w", err)
	}
	if err := pipeline.State(docs, result, cfg.KnowledgeDir).SaveState(cfg.IndexDir); err != nil {
		log.Warn("Could not save index state", zap.Error(err))
	}

	fmt.Println(result.Summary())
	for _, f := range result.Failures {
		fmt.Printf("  skipped %s: %v\n", f.ID, f.Err)
	}
	return nil
}
