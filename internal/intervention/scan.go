package intervention

import (
	"regexp"
	"strings"
)

var (
	importLine      = regexp.MustCompile(`^\s*import\s`)
	declarationLine = regexp.MustCompile(`^\s*test(?:\.describe|\.beforeEach|\.afterEach|\.beforeAll|\.afterAll|\.only)?\s*\(`)
	testDeclaration = regexp.MustCompile(`^\s*test(?:\.only)?\s*\(`)
	closerOnlyLine  = regexp.MustCompile(`^[\s})\];,]+$`)
)

// balance returns opening minus closing brackets in s, ignoring string
// literals and comments.
func balance(s string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '/':
			if i+1 < len(s) && s[i+1] == '/' {
				for i < len(s) && s[i] != '\n' {
					i++
				}
			} else if i+1 < len(s) && s[i+1] == '*' {
				end := strings.Index(s[i+2:], "*/")
				if end < 0 {
					return depth
				}
				i += end + 3
			}
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
		}
	}
	return depth
}

// ExtractBody returns the statements inside the first test(...) declaration
// of a recorded script, dedented. Scripts without a test declaration are
// returned without their import lines.
func ExtractBody(script string) string {
	lines := strings.Split(normalizeNewlines(script), "\n")

	start := -1
	for i, l := range lines {
		if testDeclaration.MatchString(l) {
			start = i
			break
		}
	}
	if start < 0 {
		var kept []string
		for _, l := range lines {
			if !importLine.MatchString(l) {
				kept = append(kept, l)
			}
		}
		return strings.TrimSpace(dedent(kept))
	}

	depth := balance(lines[start])
	var body []string
	for _, l := range lines[start+1:] {
		depth += balance(l)
		if depth <= 0 {
			break
		}
		body = append(body, l)
	}
	return strings.TrimSpace(dedent(body))
}

// firstCodeLine returns the first line that is neither blank nor a line comment.
func firstCodeLine(code string) string {
	for _, l := range strings.Split(code, "\n") {
		t := strings.TrimSpace(l)
		if t == "" || strings.HasPrefix(t, "//") {
			continue
		}
		return l
	}
	return ""
}

// trimUnbalancedClosers drops trailing closer-only lines while the lines
// close more brackets than they open.
func trimUnbalancedClosers(lines []string) []string {
	depth := balance(strings.Join(lines, "\n"))
	for depth < 0 && len(lines) > 0 {
		last := lines[len(lines)-1]
		if strings.TrimSpace(last) == "" {
			lines = lines[:len(lines)-1]
			continue
		}
		if !closerOnlyLine.MatchString(last) {
			break
		}
		depth -= balance(last)
		lines = lines[:len(lines)-1]
	}
	return lines
}

// dedent removes the common leading whitespace of the non-blank lines.
func dedent(lines []string) string {
	prefix := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if prefix < 0 || n < prefix {
			prefix = n
		}
	}
	if prefix <= 0 {
		return strings.Join(lines, "\n")
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= prefix {
			out[i] = l[prefix:]
		} else {
			out[i] = strings.TrimLeft(l, " \t")
		}
	}
	return strings.Join(out, "\n")
}

func indent(s, pad string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = pad + l
		} else {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}
