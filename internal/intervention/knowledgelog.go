package intervention

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ziadkadry99/auto-test/internal/config"
	"github.com/ziadkadry99/auto-test/internal/ticket"
)

var (
	locatorPattern = regexp.MustCompile(`page\.(?:getBy(?:TestId|Role|Label|Text|Placeholder|AltText|Title)|locator)\((?:[^()]|\([^()]*\))*\)`)
	fillPattern    = regexp.MustCompile(`\.fill\(\s*(?:(?:[^,()]|\([^()]*\))+,\s*)?(?:'([^']*)'|"([^"]*)"|` + "`([^`$]*)`" + `)\s*\)`)
)

const excerptLen = 400

// KnowledgeLog appends what developers did during review to markdown files
// in the knowledge base, so the next ingest can retrieve it.
type KnowledgeLog struct {
	Root  string
	Paths config.InterventionConfig
	Now   func() time.Time
}

// NewKnowledgeLog writes under root at the configured paths.
func NewKnowledgeLog(root string, paths config.InterventionConfig) *KnowledgeLog {
	return &KnowledgeLog{Root: root, Paths: paths, Now: time.Now}
}

// ExtractSelectors returns the distinct locator expressions in code, in
// order of first appearance.
func ExtractSelectors(code string) []string {
	return unique(locatorPattern.FindAllString(code, -1))
}

// ExtractTestData returns the distinct string literals passed to .fill().
func ExtractTestData(code string) []string {
	var out []string
	for _, m := range fillPattern.FindAllStringSubmatch(code, -1) {
		for _, g := range m[1:] {
			if g != "" {
				out = append(out, g)
				break
			}
		}
	}
	return unique(out)
}

// WriteMapping records which steps were changed for the ticket.
func (k *KnowledgeLog) WriteMapping(t *ticket.Ticket, outputPath string, steps []Step) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s: %s\n\n", t.Key, t.Summary)
	fmt.Fprintf(&sb, "- Date: %s\n", k.timestamp())
	fmt.Fprintf(&sb, "- Test file: `%s`\n", outputPath)
	if t.Description != "" {
		fmt.Fprintf(&sb, "- Description: %s\n", excerpt(collapseSpace(t.Description), 200))
	}
	sb.WriteString("\n")
	for _, s := range steps {
		if !s.DeveloperModified {
			continue
		}
		fmt.Fprintf(&sb, "### Step %d: %s\n\n```typescript\n%s\n```\n\n", s.Index, s.Description, excerpt(s.Code, excerptLen))
	}
	return k.appendTo(k.Paths.MappingLog, "# Intervention Mapping\n\nSteps developers re-recorded during test review.\n\n", sb.String())
}

// WriteSelectors records locators from the modified steps.
func (k *KnowledgeLog) WriteSelectors(t *ticket.Ticket, selectors []string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%s)\n\n", t.Key, k.timestamp())
	for _, s := range selectors {
		fmt.Fprintf(&sb, "- `%s`\n", s)
	}
	sb.WriteString("\n")
	return k.appendTo(k.Paths.SelectorsLog, "# Discovered Selectors\n\nLocators captured from recorded browser sessions.\n\n", sb.String())
}

// WriteTestData records literal values typed into form fields.
func (k *KnowledgeLog) WriteTestData(t *ticket.Ticket, values []string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%s)\n\n", t.Key, k.timestamp())
	for _, v := range values {
		fmt.Fprintf(&sb, "- `%s`\n", v)
	}
	sb.WriteString("\n")
	return k.appendTo(k.Paths.TestDataLog, "# Test Data\n\nValues entered during recorded sessions.\n\n", sb.String())
}

// WriteCardMapping links the ticket to its generated test file.
func (k *KnowledgeLog) WriteCardMapping(t *ticket.Ticket, outputPath string) error {
	row := fmt.Sprintf("| %s | %s | `%s` | %s |\n", t.Key, strings.ReplaceAll(t.Summary, "|", `\|`), outputPath, k.timestamp())
	return k.appendTo(k.Paths.CardMappingLog, "# Card to Test Mapping\n\n| Ticket | Summary | Test file | Date |\n|---|---|---|---|\n", row)
}

// appendTo appends entry to rel under Root, writing header first when the
// file is new.
func (k *KnowledgeLog) appendTo(rel, header, entry string) error {
	if rel == "" {
		return nil
	}
	path := filepath.Join(k.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", rel, err)
	}
	defer f.Close()

	if os.IsNotExist(statErr) {
		if _, err := f.WriteString(header); err != nil {
			return fmt.Errorf("writing %s: %w", rel, err)
		}
	}
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}

func (k *KnowledgeLog) timestamp() string {
	now := time.Now
	if k.Now != nil {
		now = k.Now
	}
	return now().UTC().Format("2006-01-02 15:04")
}

func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func unique(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
