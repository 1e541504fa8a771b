package generator

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/ziadkadry99/auto-test/internal/prompt"
)

var (
	fenceLine        = regexp.MustCompile("^\\s*(```|~~~)")
	playwrightImport = regexp.MustCompile(`(?m)^\s*import\s+.*\bfrom\s+['"]@playwright/test['"]`)
)

// CleanOutput turns a model response into script text. Fenced code blocks
// are extracted when present; otherwise stray fence lines are removed. The
// result always imports from @playwright/test. An empty response stays empty.
func CleanOutput(raw string) string {
	code := strings.TrimSpace(raw)
	if code == "" {
		return ""
	}

	if blocks := fencedBlocks(code); len(blocks) > 0 {
		code = strings.Join(blocks, "\n\n")
	} else {
		code = stripFenceLines(code)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if !playwrightImport.MatchString(code) {
		code = prompt.CanonicalImport + "\n\n" + code
	}
	return code + "\n"
}

// fencedBlocks returns the contents of every fenced code block in src.
func fencedBlocks(src string) []string {
	source := []byte(src)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		var sb strings.Builder
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			sb.Write(seg.Value(source))
		}
		if body := strings.TrimSpace(sb.String()); body != "" {
			blocks = append(blocks, body)
		}
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

func stripFenceLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if !fenceLine.MatchString(l) {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
