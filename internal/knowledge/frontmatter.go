package knowledge

import "strings"

const frontMatterDelimiter = "---"

// ParseFrontMatter splits content into flat key/value metadata and body text.
// Front matter is recognised only when the very first line is "---" and a
// second "---" line follows. Without both delimiters the whole content is
// the body and the metadata map is empty.
func ParseFrontMatter(content string) (map[string]string, string) {
	meta := map[string]string{}

	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontMatterDelimiter {
		return meta, content
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterDelimiter {
			end = i
			break
		}
	}
	if end < 0 {
		return meta, content
	}

	for _, line := range lines[1:end] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" || strings.HasPrefix(key, "#") {
			continue
		}
		meta[key] = unquote(strings.TrimSpace(value))
	}

	body := strings.Join(lines[end+1:], "\n")
	return meta, strings.TrimLeft(body, "\n")
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
