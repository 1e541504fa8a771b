package vectordb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-test/internal/embeddings"
)

const collectionName = "knowledge"

// Reserved metadata keys. Front-matter keys are stored under metaPrefix.
const (
	keyID      = "id"
	keyType    = "type"
	keySeq     = "seq"
	metaPrefix = "meta:"
)

// ChromemStore implements Index using chromem-go. With a directory it is
// persisted on every write; without one it lives in memory.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
	dir        string
	logger     *zap.Logger
}

// NewChromemStore opens (or creates) the index stored in dir. An empty dir
// gives an in-memory index. If the on-disk state cannot be read it is
// removed and a fresh, empty index is created in its place.
func NewChromemStore(dir string, embedder embeddings.Embedder, logger *zap.Logger) (*ChromemStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var ef chromem.EmbeddingFunc
	if embedder != nil {
		ef = embeddings.ToChromemFunc(embedder)
	}

	db, err := openDB(dir)
	if err != nil {
		logger.Warn("Vector index is unreadable, recreating it",
			zap.String("dir", dir), zap.Error(err))
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			return nil, fmt.Errorf("remove corrupt index %s: %w", dir, rmErr)
		}
		if db, err = openDB(dir); err != nil {
			return nil, fmt.Errorf("recreate index %s: %w", dir, err)
		}
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedFunc:  ef,
		dir:        dir,
		logger:     logger,
	}, nil
}

func openDB(dir string) (*chromem.DB, error) {
	if dir == "" {
		return chromem.NewDB(), nil
	}
	return chromem.NewPersistentDB(dir, true)
}

func (s *ChromemStore) Reset(ctx context.Context) error {
	if err := s.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	col, err := s.db.CreateCollection(collectionName, nil, s.embedFunc)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Add(ctx context.Context, item Item) error {
	if item.ID == "" {
		return fmt.Errorf("item id is required")
	}
	if len(item.Vector) == 0 {
		return fmt.Errorf("item %s has no vector", item.ID)
	}

	md := make(map[string]string, len(item.Meta)+3)
	for k, v := range item.Meta {
		md[metaPrefix+k] = v
	}
	md[keyID] = item.ID
	md[keyType] = item.Type
	md[keySeq] = strconv.Itoa(s.collection.Count())

	return s.collection.AddDocument(ctx, chromem.Document{
		ID:        item.ID,
		Content:   item.Content,
		Metadata:  md,
		Embedding: item.Vector,
	})
}

// Query returns the k nearest items, best first. Equal scores are ordered by
// insertion. chromem-go breaks ties at the top-k cutoff arbitrarily, so the
// whole collection is ranked here before truncating.
func (s *ChromemStore) Query(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	count := s.collection.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = resultToHit(r)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Seq < hits[j].Seq
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

func resultToHit(r chromem.Result) Hit {
	seq, _ := strconv.Atoi(r.Metadata[keySeq])
	meta := make(map[string]string)
	for k, v := range r.Metadata {
		if strings.HasPrefix(k, metaPrefix) {
			meta[strings.TrimPrefix(k, metaPrefix)] = v
		}
	}

	id := r.Metadata[keyID]
	if id == "" {
		id = r.ID
	}
	return Hit{
		ID:      id,
		Content: r.Content,
		Type:    r.Metadata[keyType],
		Meta:    meta,
		Score:   r.Similarity,
		Seq:     seq,
	}
}
