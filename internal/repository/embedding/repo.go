package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/facegate/facegate/internal/db"
	"github.com/facegate/facegate/internal/domain"
)

// store is the consumer interface for the vector index (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Config holds vector index parameters.
type Config struct {
	Prefix    string
	IndexName string
	VectorDim int
	HNSW      HNSWConfig
}

// Repo stores face embeddings as hashes under a searchable HNSW index.
type Repo struct {
	store store
	cfg   Config
}

// New creates an embedding index repository.
func New(s store, cfg Config) *Repo {
	if cfg.HNSW.M == 0 {
		cfg.HNSW.M = 16
	}
	if cfg.HNSW.EFConstruct == 0 {
		cfg.HNSW.EFConstruct = 200
	}
	return &Repo{store: s, cfg: cfg}
}

// EnsureIndex creates the HNSW cosine index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.cfg.IndexName)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:        r.cfg.IndexName,
		StorageType: db.StorageHash,
		Prefixes:    []string{r.entryKey("")},
		Fields: []db.IndexField{
			{
				Name:              "__vector",
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.cfg.VectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.cfg.HNSW.M,
				VectorEFConstruct: r.cfg.HNSW.EFConstruct,
			},
			{Name: "full_name", Type: db.IndexFieldTag},
			{Name: "reputation", Type: db.IndexFieldNumeric},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.cfg.IndexName, err)
	}
	return nil
}

// Upsert writes an embedding with its display metadata. Metadata values
// are sanitized before hitting the hash.
func (r *Repo) Upsert(ctx context.Context, id string, vector []float32, meta map[string]string) error {
	if len(vector) != r.cfg.VectorDim {
		return fmt.Errorf("%w: vector dim %d, index expects %d",
			domain.ErrIndexWrite, len(vector), r.cfg.VectorDim)
	}

	fields := buildHashFields(vector, meta)
	if err := r.store.HSet(ctx, r.entryKey(id), fields); err != nil {
		return fmt.Errorf("hset embedding %s: %w: %w", id, domain.ErrIndexWrite, err)
	}
	return nil
}

// Query runs a KNN search and returns up to k candidates ordered by
// ascending distance. An empty index yields an empty slice.
func (r *Repo) Query(ctx context.Context, vector []float32, k int) ([]domain.Candidate, error) {
	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: r.cfg.IndexName,
		Vector:    vector,
		K:         k,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return []domain.Candidate{}, nil
		}
		return nil, fmt.Errorf("knn search: %w: %w", domain.ErrIndexQuery, err)
	}

	candidates := make([]domain.Candidate, 0, len(result.Entries))
	for _, entry := range result.Entries {
		meta := make(map[string]string, len(entry.Fields))
		for name, value := range entry.Fields {
			if name == "__vector" {
				continue
			}
			meta[name] = value
		}
		candidates = append(candidates, domain.Candidate{
			ID:         r.extractID(entry.Key),
			Distance:   entry.Distance,
			Similarity: domain.Similarity(entry.Distance),
			Metadata:   meta,
		})
	}

	return candidates, nil
}

// Delete removes an embedding entry. Deleting an absent entry is a no-op.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.entryKey(id)); err != nil {
		return fmt.Errorf("del embedding %s: %w", id, err)
	}
	return nil
}

// Count returns the number of indexed embeddings.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.cfg.IndexName, "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return n, nil
}

func (r *Repo) entryKey(id string) string {
	return fmt.Sprintf("%sembedding:%s", r.cfg.Prefix, id)
}

func (r *Repo) extractID(key string) string {
	return strings.TrimPrefix(key, r.entryKey(""))
}
