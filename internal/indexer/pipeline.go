package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-test/internal/embeddings"
	"github.com/ziadkadry99/auto-test/internal/knowledge"
	"github.com/ziadkadry99/auto-test/internal/retrieval"
	"github.com/ziadkadry99/auto-test/internal/vectordb"
)

// Pipeline rebuilds the vector index from knowledge documents:
// reset -> embed -> store, one document at a time in walk order.
type Pipeline struct {
	embedder   embeddings.Embedder
	index      vectordb.Index
	logger     *zap.Logger
	onProgress ProgressFunc
}

// NewPipeline creates a new Pipeline.
func NewPipeline(embedder embeddings.Embedder, index vectordb.Index, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// SetProgressFunc sets the progress callback.
func (p *Pipeline) SetProgressFunc(fn ProgressFunc) {
	p.onProgress = fn
}

// Ingest replaces the whole index with docs. A document that fails to embed
// or store is logged, recorded in Result.Failures and skipped; only a failed
// reset aborts the run.
func (p *Pipeline) Ingest(ctx context.Context, docs []knowledge.Document) (*Result, error) {
	start := time.Now()

	if err := p.index.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset index: %w", err)
	}

	result := &Result{}
	for i, doc := range docs {
		if err := p.ingestOne(ctx, doc, result); err != nil {
			p.logger.Warn("Skipping document", zap.String("id", doc.ID), zap.Error(err))
			result.Failures = append(result.Failures, Failure{ID: doc.ID, Err: err})
		}
		if p.onProgress != nil {
			p.onProgress(i+1, len(docs), doc.ID)
		}
	}

	result.Duration = time.Since(start)
	p.logger.Info("Ingestion finished",
		zap.Int("indexed", result.Indexed),
		zap.Int("failed", len(result.Failures)),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func (p *Pipeline) ingestOne(ctx context.Context, doc knowledge.Document, result *Result) error {
	vec, err := p.embedder.Embed(ctx, doc.Text)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	item := vectordb.Item{
		ID:      doc.ID,
		Content: doc.Text,
		Type:    string(doc.Type),
		Vector:  vec,
		Meta:    doc.Meta,
	}
	if err := p.index.Add(ctx, item); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	result.Indexed++
	result.Articles = append(result.Articles, retrieval.Article{
		ID:        doc.ID,
		Type:      doc.Type,
		Title:     doc.Meta["title"],
		Text:      doc.Text,
		Embedding: vec,
	})
	return nil
}

// State builds the IndexState describing a finished run over docs.
// Failed documents are left out so the next run sees them as stale.
func (p *Pipeline) State(docs []knowledge.Document, result *Result, kbRoot string) *IndexState {
	failed := make(map[string]bool, len(result.Failures))
	for _, f := range result.Failures {
		failed[f.ID] = true
	}

	state := &IndexState{
		EmbeddingModel: p.embedder.Name(),
		LastCommitSHA:  GetGitCommitSHA(kbRoot),
		DocumentHashes: make(map[string]string, len(docs)),
	}
	for _, d := range docs {
		if !failed[d.ID] {
			state.DocumentHashes[d.ID] = ContentHash(d.Text)
		}
	}
	return state
}

// Summary returns a one-line description of result.
func (r *Result) Summary() string {
	s := fmt.Sprintf("Indexed %d document(s)", r.Indexed)
	if n := len(r.Failures); n > 0 {
		s += fmt.Sprintf(", skipped %d", n)
	}
	return s + fmt.Sprintf(" in %s", r.Duration.Round(time.Millisecond))
}
