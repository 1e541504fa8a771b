// Package intervention lets a developer review a generated test step by
// step, replace steps with recorded browser actions, and merge the result
// into one Playwright script.
package intervention

import (
	"fmt"
	"regexp"
	"strings"
)

// stepMarker matches "// Step 3: Fill in the form" and its "." and "-" variants.
var stepMarker = regexp.MustCompile(`^\s*//\s*Step\s+(\d+)\s*[:.\-]\s*(.*)$`)

const skippedSuffix = "[skipped by developer]"

// Step is one reviewable unit of a generated test.
type Step struct {
	Index             int
	Description       string
	Code              string
	DeveloperModified bool
	Skipped           bool
}

// Split cuts code into steps at step-marker comments. Text before the first
// marker is dropped. Code without markers becomes a single step holding the
// body of its test declaration.
func Split(code string) []Step {
	lines := strings.Split(normalizeNewlines(code), "\n")

	var steps []Step
	var current *Step
	var buf []string
	flush := func() {
		if current == nil {
			return
		}
		current.Code = strings.TrimRight(strings.Join(buf, "\n"), " \t\n")
		steps = append(steps, *current)
	}

	for _, line := range lines {
		if m := stepMarker.FindStringSubmatch(line); m != nil {
			flush()
			current = &Step{Index: len(steps) + 1, Description: strings.TrimSpace(m[2])}
			buf = []string{line}
			continue
		}
		if current != nil {
			buf = append(buf, line)
		}
	}
	flush()

	if len(steps) > 0 {
		return steps
	}

	body := ExtractBody(code)
	if body == "" {
		body = strings.TrimSpace(code)
	}
	return []Step{{Index: 1, Description: "Generated test", Code: body}}
}

// SkipMarker is the placeholder code for a skipped step.
func SkipMarker(s Step) string {
	desc := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s.Description), skippedSuffix))
	return fmt.Sprintf("// Step %d: %s %s", s.Index, desc, skippedSuffix)
}

// Skip replaces the step's code with its skip marker. Skipping twice yields
// the same code.
func (s *Step) Skip() {
	s.Code = SkipMarker(*s)
	s.Skipped = true
}

// Replace swaps in recorded code under an annotated marker.
func (s *Step) Replace(body string) {
	s.Code = fmt.Sprintf("// Step %d: %s [recorded by developer]\n%s", s.Index, s.Description, strings.TrimSpace(body))
	s.DeveloperModified = true
	s.Skipped = false
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
