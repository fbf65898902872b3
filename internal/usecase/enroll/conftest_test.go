package enroll

import (
	"context"
	"io"
	"testing"

	"github.com/facegate/facegate/internal/domain"
)

// mockRecords implements RecordStore for tests.
type mockRecords struct {
	createFn func(ctx context.Context, ident domain.Identity) (domain.Identity, error)
	getFn    func(ctx context.Context, id string) (domain.Identity, error)
	updateFn func(ctx context.Context, ident domain.Identity) (domain.Identity, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context, offset, limit int) ([]domain.Identity, int, error)
}

func (m *mockRecords) Create(ctx context.Context, ident domain.Identity) (domain.Identity, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ident)
	}
	return domain.ReconstructIdentity("generated-id", ident.Attributes(), 1, 1), nil
}

func (m *mockRecords) Get(ctx context.Context, id string) (domain.Identity, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.ReconstructIdentity(id, validAttrs(), 1, 1), nil
}

func (m *mockRecords) Update(ctx context.Context, ident domain.Identity) (domain.Identity, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, ident)
	}
	return ident, nil
}

func (m *mockRecords) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockRecords) List(ctx context.Context, offset, limit int) ([]domain.Identity, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

// mockIndex implements EmbeddingIndex for tests.
type mockIndex struct {
	upsertFn func(ctx context.Context, id string, vector []float32, meta map[string]string) error
	deleteFn func(ctx context.Context, id string) error
	countFn  func(ctx context.Context) (int, error)
}

func (m *mockIndex) Upsert(ctx context.Context, id string, vector []float32, meta map[string]string) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, id, vector, meta)
	}
	return nil
}

func (m *mockIndex) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockIndex) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
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
	return New(records, index, extractor), records, index, extractor
}

func validAttrs() domain.Attributes {
	return domain.Attributes{
		FullName:   "Jana Dvorakova",
		Employer:   "Acme s.r.o.",
		Position:   "Site engineer",
		Reputation: 7.5,
		ImageRef:   "photos/jana.jpg",
	}
}
