package knowledge

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DefaultMaxFileSize is the maximum knowledge file size to load (1 MB).
const DefaultMaxFileSize int64 = 1 << 20

// Loader walks a knowledge-base directory and produces Documents.
type Loader struct {
	Root        string   // Knowledge-base root directory.
	Patterns    []string // Extension allow-list as glob patterns.
	MaxFileSize int64    // Files larger than this are skipped (0 = use default).
	Logger      *zap.Logger
}

// LoadResult is the outcome of one walk.
type LoadResult struct {
	Documents []Document
	// Seeded is true when the corpus was empty and the seed documents were
	// written. The caller must load again to pick them up.
	Seeded bool
}

// NewLoader creates a Loader for root using the given allow-list.
func NewLoader(root string, patterns []string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{Root: root, Patterns: patterns, Logger: logger}
}

// Load walks the knowledge base in lexical order and returns every accepted
// document. An empty corpus triggers seeding.
func (l *Loader) Load() (*LoadResult, error) {
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return nil, fmt.Errorf("knowledge: resolve root: %w", err)
	}

	docs, err := l.walk(root)
	if err != nil {
		return nil, err
	}

	if len(docs) > 0 {
		return &LoadResult{Documents: docs}, nil
	}

	l.Logger.Info("Knowledge base is empty, writing seed documents", zap.String("root", root))
	if err := Seed(root); err != nil {
		return nil, fmt.Errorf("knowledge: seed: %w", err)
	}
	return &LoadResult{Seeded: true}, nil
}

func (l *Loader) walk(root string) ([]Document, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("knowledge: create root: %w", err)
	}

	maxSize := l.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var docs []Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			l.Logger.Warn("Skipping unreadable entry", zap.String("path", path), zap.Error(walkErr))
			return nil
		}

		if d.IsDir() {
			if path != root && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if !MatchesExtensions(relPath, l.Patterns) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > maxSize {
			return nil
		}

		content, err := readText(path)
		if err != nil {
			l.Logger.Warn("Skipping unreadable file", zap.String("path", relPath), zap.Error(err))
			return nil
		}

		meta, body := ParseFrontMatter(content)
		docs = append(docs, Document{
			ID:   relPath,
			Text: body,
			Type: Classify(relPath),
			Meta: meta,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge: traversal: %w", err)
	}
	return docs, nil
}

// readText reads a file, rejecting content with NUL bytes in the first 512
// bytes as binary.
func readText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	for _, b := range head {
		if b == 0 {
			return "", fmt.Errorf("binary content")
		}
	}
	return string(data), nil
}
