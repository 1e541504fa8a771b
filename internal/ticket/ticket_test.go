package ticket

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proj-1.yaml")
	content := `key: PROJ-1
summary: "  User can log in  "
description: |
  The login form accepts valid credentials.
acceptance_criteria:
  - Valid login lands on the dashboard
  - ""
  - Invalid login shows an error
priority: High
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tk, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tk.Key != "PROJ-1" || tk.Summary != "User can log in" || tk.Priority != "High" {
		t.Errorf("unexpected ticket: %+v", tk)
	}
	if len(tk.AcceptanceCriteria) != 2 {
		t.Errorf("blank criteria not dropped: %v", tk.AcceptanceCriteria)
	}
	if !strings.Contains(tk.Query(), "Invalid login shows an error") || !strings.HasPrefix(tk.Query(), "User can log in") {
		t.Errorf("unexpected query: %q", tk.Query())
	}
}

func TestParseJSON(t *testing.T) {
	tk, err := Parse([]byte(`{"key":"QA-7","summary":"Checkout","acceptance_criteria":["Pay with card"]}`), "qa-7.json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tk.Key != "QA-7" || tk.AcceptanceCriteria[0] != "Pay with card" {
		t.Errorf("unexpected ticket: %+v", tk)
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("summary: no key here\n"), "x.yaml")
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	_, err = Parse([]byte("key: A-1\n"), "x.yaml")
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for missing summary, got %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"PROJ-123":    "proj-123",
		"team/ABC 9":  "team-abc-9",
		"#42":         "42",
		"snake_CASE1": "snake_case1",
	}
	for key, want := range tests {
		if got := (&Ticket{Key: key}).Slug(); got != want {
			t.Errorf("Slug(%q) = %q, want %q", key, got, want)
		}
	}
}
