package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ziadkadry99/auto-test/internal/knowledge"
)

const stateFile = "state.json"

// IndexState describes the last successful ingest so later commands can
// tell whether the index is stale.
type IndexState struct {
	EmbeddingModel string            `json:"embedding_model"`
	LastCommitSHA  string            `json:"last_commit_sha,omitempty"`
	DocumentHashes map[string]string `json:"document_hashes"`
	LastUpdated    time.Time         `json:"last_updated"`
}

// LoadState reads state.json from the index directory. A missing file
// yields an empty state.
func LoadState(dir string) (*IndexState, error) {
	data, err := os.ReadFile(filepath.Join(dir, stateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &IndexState{DocumentHashes: make(map[string]string)}, nil
		}
		return nil, err
	}

	var state IndexState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.DocumentHashes == nil {
		state.DocumentHashes = make(map[string]string)
	}
	return &state, nil
}

// SaveState writes the state to state.json inside dir.
func (s *IndexState) SaveState(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	s.LastUpdated = time.Now()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, stateFile), data, 0o644)
}

// Stale reports how many of docs were added, changed or removed since the
// state was recorded.
func (s *IndexState) Stale(docs []knowledge.Document) int {
	seen := make(map[string]bool, len(docs))
	stale := 0
	for _, d := range docs {
		seen[d.ID] = true
		if s.DocumentHashes[d.ID] != ContentHash(d.Text) {
			stale++
		}
	}
	for id := range s.DocumentHashes {
		if !seen[id] {
			stale++
		}
	}
	return stale
}

// ContentHash returns the hex SHA-256 of text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// GetGitCommitSHA returns the current HEAD commit SHA, or empty string if not in a git repo.
func GetGitCommitSHA(dir string) string {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
