package retrieval

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/auto-test/internal/knowledge"
	"github.com/ziadkadry99/auto-test/internal/vectordb"
)

// Context is one retrieved piece of knowledge handed to the prompt.
//
// Score is the ranking value. In the cascade strategy it is the cosine
// similarity; in the boosted strategy it includes keyword boosts, is
// unbounded above, and must not be read as a probability. Similarity is
// always the raw cosine.
type Context struct {
	ID         string
	Content    string
	Type       knowledge.DocumentType
	Score      float64
	Similarity float64
	Boosted    bool
	Metadata   map[string]string
}

func fromHit(h vectordb.Hit) Context {
	typ := knowledge.DocumentType(h.Type)
	if !typ.IsValid() {
		typ = knowledge.Classify(h.ID)
	}
	return Context{
		ID:         h.ID,
		Content:    h.Content,
		Type:       typ,
		Score:      float64(h.Score),
		Similarity: float64(h.Score),
		Metadata:   h.Meta,
	}
}

// Format renders contexts as human-readable text.
func Format(contexts []Context) string {
	if len(contexts) == 0 {
		return "No context found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d context item(s):\n\n", len(contexts))
	for i, c := range contexts {
		if c.Boosted {
			fmt.Fprintf(&sb, "--- %d. %s [%s] (score: %.4f, cosine: %.4f) ---\n", i+1, c.ID, c.Type, c.Score, c.Similarity)
		} else {
			fmt.Fprintf(&sb, "--- %d. %s [%s] (similarity: %.4f) ---\n", i+1, c.ID, c.Type, c.Score)
		}
		if title := c.Metadata["title"]; title != "" {
			fmt.Fprintf(&sb, "Title: %s\n", title)
		}
		sb.WriteString(truncate(c.Content, 400))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
