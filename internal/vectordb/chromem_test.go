package vectordb

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func unit(angleDeg float64) []float32 {
	rad := angleDeg * math.Pi / 180
	return []float32{float32(math.Cos(rad)), float32(math.Sin(rad))}
}

func newMemoryStore(t *testing.T) *ChromemStore {
	t.Helper()
	store, err := NewChromemStore("", nil, nil)
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	return store
}

func TestChromemStore_AddAndQuery(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	items := []Item{
		{ID: "selectors/login.md", Content: "login selectors", Type: "selector", Vector: unit(0), Meta: map[string]string{"title": "Login"}},
		{ID: "workflows/auth.md", Content: "auth workflow", Type: "workflow", Vector: unit(30)},
		{ID: "patterns/wait.md", Content: "waiting", Type: "pattern", Vector: unit(90)},
	}
	for _, it := range items {
		if err := store.Add(ctx, it); err != nil {
			t.Fatalf("Add(%s): %v", it.ID, err)
		}
	}
	if store.Count() != 3 {
		t.Fatalf("Count = %d, want 3", store.Count())
	}

	hits, err := store.Query(ctx, unit(0), 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != "selectors/login.md" || hits[1].ID != "workflows/auth.md" {
		t.Errorf("unexpected order: %s, %s", hits[0].ID, hits[1].ID)
	}
	if math.Abs(float64(hits[0].Score)-1) > 1e-5 {
		t.Errorf("top score = %v, want 1", hits[0].Score)
	}
	if math.Abs(float64(hits[1].Score)-math.Cos(math.Pi/6)) > 1e-5 {
		t.Errorf("second score = %v, want cos(30deg)", hits[1].Score)
	}
	if hits[0].Type != "selector" || hits[0].Meta["title"] != "Login" || hits[0].Content != "login selectors" {
		t.Errorf("metadata not preserved: %+v", hits[0])
	}
}

func TestChromemStore_QueryClampsK(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	if err := store.Add(ctx, Item{ID: "a", Content: "a", Vector: unit(10)}); err != nil {
		t.Fatal(err)
	}

	hits, err := store.Query(ctx, unit(0), 50)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("expected 1 hit, got %d", len(hits))
	}
}

func TestChromemStore_QueryEmpty(t *testing.T) {
	hits, err := newMemoryStore(t).Query(context.Background(), unit(0), 5)
	if err != nil || hits != nil {
		t.Errorf("empty index: hits=%v err=%v", hits, err)
	}
}

func TestChromemStore_TiesFollowInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	for _, id := range []string{"first", "second", "third"} {
		if err := store.Add(ctx, Item{ID: id, Content: id, Vector: unit(45)}); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := store.Query(ctx, unit(0), 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if hits[i].ID != want || hits[i].Seq != i {
			t.Errorf("hit %d = %s (seq %d), want %s (seq %d)", i, hits[i].ID, hits[i].Seq, want, i)
		}
	}
}

func TestChromemStore_TiesAtCutoffFollowInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, id := range ids {
		if err := store.Add(ctx, Item{ID: id, Content: id, Vector: unit(30)}); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 50; i++ {
		hits, err := store.Query(ctx, unit(0), 2)
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(hits) != 2 || hits[0].ID != "a" || hits[1].ID != "b" {
			t.Fatalf("run %d: got %v, want [a b]", i, hitIDs(hits))
		}
	}
}

func hitIDs(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func TestChromemStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	_ = store.Add(ctx, Item{ID: "a", Content: "a", Vector: unit(0)})
	_ = store.Add(ctx, Item{ID: "b", Content: "b", Vector: unit(5)})

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("Count after reset = %d", store.Count())
	}

	if err := store.Add(ctx, Item{ID: "c", Content: "c", Vector: unit(0)}); err != nil {
		t.Fatal(err)
	}
	hits, _ := store.Query(ctx, unit(0), 1)
	if len(hits) != 1 || hits[0].Seq != 0 {
		t.Errorf("sequence should restart after reset: %+v", hits)
	}
}

func TestChromemStore_AddValidation(t *testing.T) {
	store := newMemoryStore(t)
	if err := store.Add(context.Background(), Item{Content: "x", Vector: unit(0)}); err == nil {
		t.Error("expected error for missing id")
	}
	if err := store.Add(context.Background(), Item{ID: "x", Content: "x"}); err == nil {
		t.Error("expected error for missing vector")
	}
}

func TestChromemStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "index")

	store, err := NewChromemStore(dir, nil, nil)
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	if err := store.Add(ctx, Item{ID: "persist", Content: "persisted doc", Type: "workflow", Vector: unit(0)}); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewChromemStore(dir, nil, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Count() != 1 {
		t.Fatalf("Count after reopen = %d, want 1", reopened.Count())
	}
	hits, err := reopened.Query(ctx, unit(0), 1)
	if err != nil || len(hits) != 1 || hits[0].Type != "workflow" {
		t.Errorf("unexpected hits after reopen: %+v, %v", hits, err)
	}
}

func TestChromemStore_RecreatesUnreadableIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	// A regular file where the index directory should be cannot be opened.
	if err := os.WriteFile(dir, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := NewChromemStore(dir, nil, nil)
	if err != nil {
		t.Fatalf("NewChromemStore should recover: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("recreated index should be empty, got %d", store.Count())
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("expected index directory to be recreated: %v", err)
	}
}
