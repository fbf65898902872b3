package enroll

import (
	"context"

	"github.com/facegate/facegate/internal/domain"
)

// RecordStore defines the storage contract for identity records.
type RecordStore interface {
	Create(ctx context.Context, ident domain.Identity) (domain.Identity, error)
	Get(ctx context.Context, id string) (domain.Identity, error)
	Update(ctx context.Context, ident domain.Identity) (domain.Identity, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]domain.Identity, int, error)
}

// EmbeddingIndex defines the vector index contract for enrollment.
type EmbeddingIndex interface {
	Upsert(ctx context.Context, id string, vector []float32, meta map[string]string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
