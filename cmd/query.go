package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/auto-test/internal/config"
	"github.com/ziadkadry99/auto-test/internal/retrieval"
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Show which knowledge would be retrieved for a text",
	Long:  `Runs the configured retrieval strategy for the given text and prints the matching knowledge-base entries with their scores.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().Int("limit", 0, "maximum number of results (default: retrieval.top_k)")
	queryCmd.Flags().String("strategy", "", "override the retrieval strategy: cascade or boosted")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := strings.Join(args, " ")

	limit, _ := cmd.Flags().GetInt("limit")
	strategy, _ := cmd.Flags().GetString("strategy")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if strategy != "" {
		cfg.Retrieval.Strategy = config.Strategy(strategy)
	}
	if limit <= 0 {
		limit = cfg.Retrieval.TopK
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	retriever, err := createRetrieverFromConfig(cfg, embedder, log)
	if err != nil {
		return err
	}

	results := retriever.Retrieve(ctx, queryText, limit)
	if jsonOutput {
		return printQueryResultsJSON(results)
	}
	fmt.Print(retrieval.Format(results))
	return nil
}

type queryResultJSON struct {
	Rank       int     `json:"rank"`
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
	Summary    string  `json:"summary"`
}

func printQueryResultsJSON(results []retrieval.Context) error {
	out := make([]queryResultJSON, 0, len(results))
	for i, r := range results {
		out = append(out, queryResultJSON{
			Rank:       i + 1,
			ID:         r.ID,
			Type:       string(r.Type),
			Score:      r.Score,
			Similarity: r.Similarity,
			Summary:    truncate(r.Content, 200),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
