package retrieval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/auto-test/internal/knowledge"
)

// SaveArticles writes the article cache to path as JSON.
func SaveArticles(path string, articles []Article) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating article cache directory: %w", err)
	}
	data, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("marshaling articles: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing article cache: %w", err)
	}
	return nil
}

// LoadArticles reads the article cache. A missing file yields an empty list.
// Articles with an unknown type are reclassified from their path.
func LoadArticles(path string) ([]Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading article cache: %w", err)
	}
	var articles []Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("parsing article cache %s: %w", path, err)
	}
	for i := range articles {
		if !articles[i].Type.IsValid() {
			articles[i].Type = knowledge.Classify(articles[i].ID)
		}
	}
	return articles, nil
}
