package indexer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ziadkadry99/auto-test/internal/knowledge"
	"github.com/ziadkadry99/auto-test/internal/vectordb"
)

// --- Mock Embedder ---

type mockEmbedder struct {
	failOn string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, errors.New("embedding service unavailable")
	}
	return []float32{float32(len(text)%7) + 1, 1, 0.5}, nil
}

func (m *mockEmbedder) Dimensions() int { return 3 }
func (m *mockEmbedder) Name() string    { return "mock-embedder" }

// --- Mock Index ---

type mockIndex struct {
	items    []vectordb.Item
	resets   int
	resetErr error
}

func (m *mockIndex) Reset(_ context.Context) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resets++
	m.items = nil
	return nil
}

func (m *mockIndex) Add(_ context.Context, item vectordb.Item) error {
	m.items = append(m.items, item)
	return nil
}

func (m *mockIndex) Query(_ context.Context, _ []float32, _ int) ([]vectordb.Hit, error) {
	return nil, nil
}

func (m *mockIndex) Count() int { return len(m.items) }

func docs(texts ...string) []knowledge.Document {
	var out []knowledge.Document
	for i, t := range texts {
		out = append(out, knowledge.Document{
			ID:   "selectors/doc" + string(rune('a'+i)) + ".md",
			Text: t,
			Type: knowledge.TypeSelector,
			Meta: map[string]string{"title": "Doc " + string(rune('A'+i))},
		})
	}
	return out
}

func TestIngest_AllDocuments(t *testing.T) {
	index := &mockIndex{}
	p := NewPipeline(&mockEmbedder{}, index, nil)

	var progress []string
	p.SetProgressFunc(func(processed, total int, id string) {
		progress = append(progress, id)
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
	})

	in := docs("first", "second", "third")
	result, err := p.Ingest(context.Background(), in)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.Indexed != 3 || index.Count() != 3 {
		t.Fatalf("indexed %d, count %d; want 3", result.Indexed, index.Count())
	}
	if len(result.Articles) != 3 || result.Articles[0].ID != in[0].ID || result.Articles[0].Title != "Doc A" {
		t.Errorf("unexpected articles: %+v", result.Articles)
	}
	if len(result.Articles[1].Embedding) != 3 {
		t.Errorf("article embedding not carried over")
	}
	if len(progress) != 3 || progress[2] != in[2].ID {
		t.Errorf("unexpected progress: %v", progress)
	}
	if index.items[0].Type != "selector" || index.items[0].Meta["title"] != "Doc A" {
		t.Errorf("item metadata not stored: %+v", index.items[0])
	}
}

// With k of n documents failing to embed, the index holds exactly n-k items.
func TestIngest_SkipsFailures(t *testing.T) {
	index := &mockIndex{}
	p := NewPipeline(&mockEmbedder{failOn: "broken"}, index, nil)

	result, err := p.Ingest(context.Background(), docs("ok one", "broken one", "ok two", "broken two", "ok three"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if index.Count() != 3 || result.Indexed != 3 {
		t.Errorf("count = %d, indexed = %d; want 3", index.Count(), result.Indexed)
	}
	if len(result.Failures) != 2 {
		t.Fatalf("failures = %d, want 2", len(result.Failures))
	}
	if result.Failures[0].ID != "selectors/docb.md" || result.Failures[1].ID != "selectors/docd.md" {
		t.Errorf("unexpected failures: %+v", result.Failures)
	}
	if len(result.Articles) != 3 {
		t.Errorf("articles = %d, want 3", len(result.Articles))
	}
	if !strings.Contains(result.Summary(), "skipped 2") {
		t.Errorf("summary = %q", result.Summary())
	}
}

func TestIngest_ResetsBeforeInserting(t *testing.T) {
	index := &mockIndex{}
	p := NewPipeline(&mockEmbedder{}, index, nil)
	ctx := context.Background()

	if _, err := p.Ingest(ctx, docs("a", "b", "c", "d")); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Ingest(ctx, docs("a", "b")); err != nil {
		t.Fatal(err)
	}
	if index.resets != 2 || index.Count() != 2 {
		t.Errorf("resets = %d, count = %d; want 2, 2", index.resets, index.Count())
	}
}

func TestIngest_ResetError(t *testing.T) {
	p := NewPipeline(&mockEmbedder{}, &mockIndex{resetErr: errors.New("disk full")}, nil)
	if _, err := p.Ingest(context.Background(), docs("a")); err == nil {
		t.Fatal("expected error when the index cannot be reset")
	}
}

// An empty knowledge base is seeded, re-loaded and ingested into exactly
// three items, the first being the login selectors document.
func TestIngest_SeededKnowledgeBase(t *testing.T) {
	root := t.TempDir()
	loader := knowledge.NewLoader(root, []string{"**/*.md"}, nil)

	first, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !first.Seeded {
		t.Fatal("expected empty knowledge base to be seeded")
	}
	second, err := loader.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	store, err := vectordb.NewChromemStore("", nil, nil)
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	result, err := NewPipeline(&mockEmbedder{}, store, nil).Ingest(context.Background(), second.Documents)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if store.Count() != knowledge.SeedCount || result.Indexed != 3 {
		t.Errorf("count = %d, indexed = %d; want 3", store.Count(), result.Indexed)
	}

	types := map[knowledge.DocumentType]bool{}
	for _, a := range result.Articles {
		types[a.Type] = true
	}
	for _, want := range []knowledge.DocumentType{knowledge.TypeSelector, knowledge.TypeWorkflow, knowledge.TypePattern} {
		if !types[want] {
			t.Errorf("missing seeded document of type %s", want)
		}
	}
}

func TestState_RoundTripAndStale(t *testing.T) {
	dir := t.TempDir()
	in := docs("alpha", "beta", "gamma")

	p := NewPipeline(&mockEmbedder{failOn: "gamma"}, &mockIndex{}, nil)
	result, err := p.Ingest(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	state := p.State(in, result, dir)
	if state.EmbeddingModel != "mock-embedder" || len(state.DocumentHashes) != 2 {
		t.Fatalf("unexpected state: %+v", state)
	}
	if err := state.SaveState(dir); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	loaded, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if loaded.LastUpdated.IsZero() || loaded.EmbeddingModel != "mock-embedder" {
		t.Errorf("state not persisted: %+v", loaded)
	}
	// gamma failed, so it is still stale.
	if got := loaded.Stale(in); got != 1 {
		t.Errorf("Stale = %d, want 1", got)
	}

	changed := docs("alpha", "beta changed")
	// beta changed, gamma was never stored and is not present either.
	if got := loaded.Stale(changed); got != 1 {
		t.Errorf("Stale after edit = %d, want 1", got)
	}
}

func TestLoadState_Missing(t *testing.T) {
	state, err := LoadState(t.TempDir())
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if state.DocumentHashes == nil || len(state.DocumentHashes) != 0 {
		t.Errorf("expected empty state, got %+v", state)
	}
}
