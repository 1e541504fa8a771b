package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ziadkadry99/auto-test/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestAddAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec, err := store.Add(ctx, Record{
		TicketKey:     "PROJ-1",
		FilePath:      "tests/generated/proj-1.spec.ts",
		TestName:      "PROJ-1: User can log in",
		Environment:   "qa",
		Provider:      "openai",
		Model:         "gpt-4o",
		Strategy:      "cascade",
		Confidence:    0.82,
		ContextIDs:    []string{"selectors/login.md", "workflows/authentication.md"},
		Interactive:   true,
		StepsModified: 1,
		StepsSkipped:  2,
		InputTokens:   1200,
		OutputTokens:  800,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("ID and CreatedAt should be filled: %+v", rec)
	}
	if rec.ContextCount != 2 {
		t.Errorf("ContextCount = %d, want 2", rec.ContextCount)
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TicketKey != "PROJ-1" || got.Confidence != 0.82 || !got.Interactive || got.StepsSkipped != 2 {
		t.Errorf("unexpected record: %+v", got)
	}
	if len(got.ContextIDs) != 2 || got.ContextIDs[1] != "workflows/authentication.md" {
		t.Errorf("context ids = %v", got.ContextIDs)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, rec.CreatedAt)
	}
}

func TestGetNotFound(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, key := range []string{"A-1", "B-2", "A-1"} {
		if _, err := store.Add(ctx, Record{
			TicketKey: key,
			FilePath:  key + ".spec.ts",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := store.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || !all[0].CreatedAt.Equal(base.Add(2*time.Hour)) {
		t.Errorf("expected newest first, got %+v", all)
	}
	if all[0].ContextIDs == nil || len(all[0].ContextIDs) != 0 {
		t.Errorf("context ids should decode to an empty list, got %v", all[0].ContextIDs)
	}

	byKey, err := store.List(ctx, Filter{TicketKey: "A-1"})
	if err != nil || len(byKey) != 2 {
		t.Errorf("filter by ticket: %d records, err %v", len(byKey), err)
	}

	since := base.Add(30 * time.Minute)
	recent, err := store.List(ctx, Filter{Since: &since})
	if err != nil || len(recent) != 2 {
		t.Errorf("filter by since: %d records, err %v", len(recent), err)
	}

	limited, err := store.List(ctx, Filter{Limit: 1})
	if err != nil || len(limited) != 1 {
		t.Errorf("limit: %d records, err %v", len(limited), err)
	}
}
