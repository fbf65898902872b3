package enroll

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/facegate/facegate/internal/domain"
	"github.com/facegate/facegate/internal/metrics"
)

// Service enrolls identities: record creation, face embedding
// extraction and vector index registration as a single unit. A failure
// after the record write compensates by deleting the record, so the
// two stores never diverge silently.
type Service struct {
	records   RecordStore
	index     EmbeddingIndex
	extractor domain.Extractor
}

// New creates an enrollment service.
func New(records RecordStore, index EmbeddingIndex, extractor domain.Extractor) *Service {
	return &Service{records: records, index: index, extractor: extractor}
}

// Stats summarizes the enrollment state.
type Stats struct {
	EnrolledCount int
}

// Enroll registers an identity with its face image. The record is
// created first so the index entry can reference its identifier; any
// later failure rolls the record back.
func (s *Service) Enroll(ctx context.Context, attrs domain.Attributes, image io.Reader) (domain.Identity, error) {
	ident, err := domain.NewIdentity(attrs)
	if err != nil {
		return domain.Identity{}, err
	}

	created, err := s.records.Create(ctx, ident)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("create record: %w", err)
	}

	vector, err := s.extractEmbedding(ctx, image)
	if err != nil {
		return domain.Identity{}, s.compensate(ctx, created.ID(), err)
	}

	if err := s.index.Upsert(ctx, created.ID(), vector, indexMetadata(created)); err != nil {
		return domain.Identity{}, s.compensate(ctx, created.ID(), err)
	}

	metrics.EnrolledIdentities.Inc()
	return created, nil
}

// Unenroll removes an identity from both stores. The index entry goes
// first: a dangling record is visible and correctable, a dangling
// vector would keep matching a deleted person.
func (s *Service) Unenroll(ctx context.Context, id string) error {
	if _, err := s.records.Get(ctx, id); err != nil {
		return fmt.Errorf("get record: %w", err)
	}

	if err := s.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete embedding: %w", err)
	}

	if err := s.records.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	metrics.EnrolledIdentities.Dec()
	return nil
}

// Get returns a single identity record.
func (s *Service) Get(ctx context.Context, id string) (domain.Identity, error) {
	ident, err := s.records.Get(ctx, id)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("get record: %w", err)
	}
	return ident, nil
}

// List returns one page of enrolled identities in creation order,
// plus the total enrolled count.
func (s *Service) List(ctx context.Context, offset, limit int) ([]domain.Identity, int, error) {
	identities, total, err := s.records.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	return identities, total, nil
}

// UpdatePhoto replaces the enrollment photo: a fresh embedding is
// extracted and upserted before the record is touched, so an
// extraction failure leaves the old state intact.
func (s *Service) UpdatePhoto(ctx context.Context, id string, image io.Reader, imageRef string) (domain.Identity, error) {
	current, err := s.records.Get(ctx, id)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("get record: %w", err)
	}

	vector, err := s.extractEmbedding(ctx, image)
	if err != nil {
		return domain.Identity{}, err
	}

	attrs := current.Attributes()
	if imageRef != "" {
		attrs.ImageRef = imageRef
	}
	updated := domain.ReconstructIdentity(id, attrs, current.CreatedAt(), current.UpdatedAt())

	if err := s.index.Upsert(ctx, id, vector, indexMetadata(updated)); err != nil {
		return domain.Identity{}, fmt.Errorf("upsert embedding: %w", err)
	}

	saved, err := s.records.Update(ctx, updated)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("update record: %w", err)
	}
	return saved, nil
}

// Stats reports the current enrollment count and refreshes the gauge.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	count, err := s.index.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count embeddings: %w", err)
	}
	metrics.EnrolledIdentities.Set(float64(count))
	return Stats{EnrolledCount: count}, nil
}

// extractEmbedding runs face extraction and normalizes the vector to
// unit length for cosine search.
func (s *Service) extractEmbedding(ctx context.Context, image io.Reader) ([]float32, error) {
	result, err := s.extractor.Extract(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("extract face: %w", err)
	}

	vector, err := domain.Normalize(result.Embedding)
	if err != nil {
		return nil, fmt.Errorf("normalize embedding: %w", err)
	}
	return vector, nil
}

// compensate deletes the freshly created record after a downstream
// failure. A failed cleanup escalates to a CompensationError.
func (s *Service) compensate(ctx context.Context, id string, cause error) error {
	if cleanupErr := s.records.Delete(ctx, id); cleanupErr != nil {
		return domain.NewCompensationError(id, cause, cleanupErr)
	}
	return cause
}

// indexMetadata flattens the display attributes stored next to the
// vector so matches can be rendered without a record lookup.
func indexMetadata(ident domain.Identity) map[string]string {
	return map[string]string{
		"full_name":  ident.FullName(),
		"employer":   ident.Employer(),
		"position":   ident.Position(),
		"reputation": strconv.FormatFloat(ident.Reputation(), 'f', -1, 64),
		"image_ref":  ident.ImageRef(),
	}
}
