// Package ticket reads work-item descriptions that tests are generated from.
package ticket

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for a ticket without a key or summary.
var ErrInvalid = errors.New("invalid ticket")

// Ticket is a read-only work item. JSON files load through the same YAML
// decoder.
type Ticket struct {
	Key                string   `yaml:"key" json:"key"`
	Summary            string   `yaml:"summary" json:"summary"`
	Description        string   `yaml:"description" json:"description"`
	AcceptanceCriteria []string `yaml:"acceptance_criteria" json:"acceptance_criteria"`
	Assignee           string   `yaml:"assignee" json:"assignee"`
	Status             string   `yaml:"status" json:"status"`
	Priority           string   `yaml:"priority" json:"priority"`
}

// Load reads a ticket from a YAML or JSON file.
func Load(path string) (*Ticket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ticket: %w", err)
	}
	return Parse(data, filepath.Base(path))
}

// Parse decodes a ticket. name is used in error messages only.
func Parse(data []byte, name string) (*Ticket, error) {
	var t Ticket
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing ticket %s: %w", name, err)
	}
	t.normalize()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &t, nil
}

// Validate checks the fields generation depends on.
func (t *Ticket) Validate() error {
	if strings.TrimSpace(t.Key) == "" {
		return fmt.Errorf("%w: key is required", ErrInvalid)
	}
	if strings.TrimSpace(t.Summary) == "" {
		return fmt.Errorf("%w: summary is required", ErrInvalid)
	}
	return nil
}

func (t *Ticket) normalize() {
	t.Key = strings.TrimSpace(t.Key)
	t.Summary = strings.TrimSpace(t.Summary)
	t.Description = strings.TrimSpace(t.Description)
	criteria := t.AcceptanceCriteria[:0]
	for _, c := range t.AcceptanceCriteria {
		if c = strings.TrimSpace(c); c != "" {
			criteria = append(criteria, c)
		}
	}
	t.AcceptanceCriteria = criteria
}

// Query is the text used to retrieve knowledge for the ticket.
func (t *Ticket) Query() string {
	parts := []string{t.Summary}
	if t.Description != "" {
		parts = append(parts, t.Description)
	}
	parts = append(parts, t.AcceptanceCriteria...)
	return strings.Join(parts, "\n")
}

// Slug is a file-name-safe form of the key, e.g. "PROJ-123" -> "proj-123".
func (t *Ticket) Slug() string {
	var sb strings.Builder
	for _, r := range strings.ToLower(t.Key) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	return strings.Trim(sb.String(), "-")
}
