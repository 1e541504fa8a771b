// Package history records every generated test in the local SQLite store.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/auto-test/internal/db"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("history record not found")

// Record describes one generation run.
type Record struct {
	ID            string    `json:"id"`
	TicketKey     string    `json:"ticket_key"`
	FilePath      string    `json:"file_path"`
	TestName      string    `json:"test_name"`
	Environment   string    `json:"environment"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	Strategy      string    `json:"strategy"`
	Confidence    float64   `json:"confidence"`
	ContextCount  int       `json:"context_count"`
	ContextIDs    []string  `json:"context_ids"`
	Interactive   bool      `json:"interactive"`
	StepsModified int       `json:"steps_modified"`
	StepsSkipped  int       `json:"steps_skipped"`
	InputTokens   int       `json:"input_tokens"`
	OutputTokens  int       `json:"output_tokens"`
	CreatedAt     time.Time `json:"created_at"`
}

// Filter narrows List.
type Filter struct {
	TicketKey string
	Since     *time.Time
	Limit     int
}

// Store provides access to generation records.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Add inserts rec. An empty ID is replaced with a UUID and a zero CreatedAt
// with the current time; the stored record is returned.
func (s *Store) Add(ctx context.Context, rec Record) (*Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.ContextCount == 0 {
		rec.ContextCount = len(rec.ContextIDs)
	}

	ids, err := json.Marshal(nonNil(rec.ContextIDs))
	if err != nil {
		return nil, fmt.Errorf("marshalling context ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generations (
			id, ticket_key, file_path, test_name, environment, provider, model,
			strategy, confidence, context_count, context_ids, interactive,
			steps_modified, steps_skipped, input_tokens, output_tokens, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TicketKey, rec.FilePath, rec.TestName, rec.Environment,
		rec.Provider, rec.Model, rec.Strategy, rec.Confidence, rec.ContextCount,
		string(ids), boolToInt(rec.Interactive), rec.StepsModified, rec.StepsSkipped,
		rec.InputTokens, rec.OutputTokens, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting generation record: %w", err)
	}
	return &rec, nil
}

const selectColumns = `
	SELECT id, ticket_key, file_path, test_name, environment, provider, model,
		strategy, confidence, context_count, context_ids, interactive,
		steps_modified, steps_skipped, input_tokens, output_tokens, created_at
	FROM generations`

// Get retrieves a single record.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// List returns records newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Record, error) {
	var (
		clauses []string
		args    []any
	)
	if f.TicketKey != "" {
		clauses = append(clauses, "ticket_key = ?")
		args = append(args, f.TicketKey)
	}
	if f.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}

	query := selectColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying generation records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec         Record
		ids         string
		interactive int
		created     string
	)
	err := row.Scan(
		&rec.ID, &rec.TicketKey, &rec.FilePath, &rec.TestName, &rec.Environment,
		&rec.Provider, &rec.Model, &rec.Strategy, &rec.Confidence, &rec.ContextCount,
		&ids, &interactive, &rec.StepsModified, &rec.StepsSkipped,
		&rec.InputTokens, &rec.OutputTokens, &created,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(ids), &rec.ContextIDs); err != nil {
		return nil, fmt.Errorf("parsing context ids for %s: %w", rec.ID, err)
	}
	rec.Interactive = interactive != 0
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parsing created_at for %s: %w", rec.ID, err)
	}
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
