package verify

import (
	"context"
	"io"
	"testing"

	"github.com/facegate/facegate/internal/domain"
)

// mockRecords implements RecordReader for tests.
type mockRecords struct {
	getFn func(ctx context.Context, id string) (domain.Identity, error)
}

func (m *mockRecords) Get(ctx context.Context, id string) (domain.Identity, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.ReconstructIdentity(id, domain.Attributes{
		FullName: "Jana Dvorakova", Reputation: 7.5, ImageRef: "photos/jana.jpg",
	}, 1, 1), nil
}

// mockIndex implements EmbeddingIndex for tests.
type mockIndex struct {
	queryFn func(ctx context.Context, vector []float32, k int) ([]domain.Candidate, error)
}

func (m *mockIndex) Query(ctx context.Context, vector []float32, k int) ([]domain.Candidate, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, vector, k)
	}
	return nil, nil
}

// mockExtractor implements domain.Extractor for tests.
type mockExtractor struct {
	extractFn func(ctx context.Context, image io.Reader) (domain.ExtractionResult, error)
}

func (m *mockExtractor) Extract(ctx context.Context, image io.Reader) (domain.ExtractionResult, error) {
	if m.extractFn != nil {
		return m.extractFn(ctx, image)
	}
	return domain.ExtractionResult{Embedding: []float32{0.6, 0.8}, Model: "buffalo_l", DetScore: 0.95}, nil
}

func newTestService(t *testing.T) (*Service, *mockRecords, *mockIndex, *mockExtractor) {
	t.Helper()
	records := &mockRecords{}
	index := &mockIndex{}
	extractor := &mockExtractor{}
	return New(records, index, extractor, 0.65), records, index, extractor
}

func candidate(id string, distance float64) domain.Candidate {
	return domain.Candidate{
		ID:         id,
		Distance:   distance,
		Similarity: domain.Similarity(distance),
		Metadata:   map[string]string{"full_name": "Jana Dvorakova"},
	}
}
