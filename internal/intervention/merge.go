package intervention

import (
	"fmt"
	"strings"
)

// CanonicalImport is the single Playwright import of a merged script.
const CanonicalImport = "import { test, expect } from '@playwright/test';"

// MergeOptions names the merged test and its start page.
type MergeOptions struct {
	Describe string
	TestName string
	BaseURL  string
}

// Merge assembles steps into one script: the canonical import, a describe
// block with beforeEach navigation and an afterEach failure screenshot, and
// a single test holding every step in order.
//
// Steps whose first code line is a test or hook declaration are dropped.
// Import lines anywhere in a step are hoisted and deduplicated, so a step
// made only of imports contributes no body. Trailing closers left over from
// the generated wrapper are trimmed.
func Merge(steps []Step, opts MergeOptions) string {
	var imports []string
	seenImport := map[string]bool{}
	var bodies []string

	for _, s := range steps {
		if s.Skipped {
			bodies = append(bodies, s.Code)
			continue
		}
		if declarationLine.MatchString(firstCodeLine(s.Code)) {
			continue
		}

		var kept []string
		hoisted := false
		for _, l := range strings.Split(normalizeNewlines(s.Code), "\n") {
			if importLine.MatchString(l) {
				hoisted = true
				imp := strings.TrimSpace(l)
				if !strings.Contains(imp, "@playwright/test") && !seenImport[imp] {
					seenImport[imp] = true
					imports = append(imports, imp)
				}
				continue
			}
			kept = append(kept, l)
		}
		if hoisted && firstCodeLine(strings.Join(kept, "\n")) == "" {
			continue
		}
		kept = trimUnbalancedClosers(kept)
		body := strings.TrimSpace(dedent(kept))
		if body != "" {
			bodies = append(bodies, body)
		}
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "/"
	}

	var sb strings.Builder
	sb.WriteString(CanonicalImport + "\n")
	for _, imp := range imports {
		sb.WriteString(imp + "\n")
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "test.describe(%s, () => {\n", jsString(opts.Describe))
	sb.WriteString("  test.beforeEach(async ({ page }) => {\n")
	fmt.Fprintf(&sb, "    await page.goto(%s);\n", jsString(baseURL))
	sb.WriteString("    await page.waitForLoadState('networkidle');\n")
	sb.WriteString("  });\n\n")
	sb.WriteString("  test.afterEach(async ({ page }, testInfo) => {\n")
	sb.WriteString("    if (testInfo.status !== testInfo.expectedStatus) {\n")
	sb.WriteString("      await page.screenshot({ path: testInfo.outputPath('failure.png'), fullPage: true });\n")
	sb.WriteString("    }\n")
	sb.WriteString("  });\n\n")
	fmt.Fprintf(&sb, "  test(%s, async ({ page }) => {\n", jsString(opts.TestName))
	for i, b := range bodies {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(indent(b, "    "))
		sb.WriteString("\n")
	}
	sb.WriteString("  });\n")
	sb.WriteString("});\n")
	return sb.String()
}

// containsPrefix reports whether the first n characters of body already
// occur in merged. Whitespace runs compare equal so re-indented code matches.
func containsPrefix(merged, body string, n int) bool {
	body = collapseSpace(body)
	if body == "" {
		return true
	}
	if n > 0 && len(body) > n {
		body = body[:n]
	}
	return strings.Contains(collapseSpace(merged), body)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func jsString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", " ")
	return "'" + r.Replace(s) + "'"
}
