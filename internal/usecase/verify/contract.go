package verify

import (
	"context"

	"github.com/facegate/facegate/internal/domain"
)

// RecordReader resolves matched identifiers to full records.
type RecordReader interface {
	Get(ctx context.Context, id string) (domain.Identity, error)
}

// EmbeddingIndex defines the vector index contract for verification.
type EmbeddingIndex interface {
	Query(ctx context.Context, vector []float32, k int) ([]domain.Candidate, error)
}
