package chi

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/facegate/facegate/internal/domain"
	enrolluc "github.com/facegate/facegate/internal/usecase/enroll"
	healthuc "github.com/facegate/facegate/internal/usecase/health"
	verifyuc "github.com/facegate/facegate/internal/usecase/verify"
)

// stubRecords implements enroll.RecordStore and verify.RecordReader.
type stubRecords struct {
	createFn func(ctx context.Context, ident domain.Identity) (domain.Identity, error)
	getFn    func(ctx context.Context, id string) (domain.Identity, error)
	updateFn func(ctx context.Context, ident domain.Identity) (domain.Identity, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context, offset, limit int) ([]domain.Identity, int, error)
}

func (m *stubRecords) Create(ctx context.Context, ident domain.Identity) (domain.Identity, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ident)
	}
	return domain.ReconstructIdentity("generated-id", ident.Attributes(), 1700000000000, 1700000000000), nil
}

func (m *stubRecords) Get(ctx context.Context, id string) (domain.Identity, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return testIdentity(id), nil
}

func (m *stubRecords) Update(ctx context.Context, ident domain.Identity) (domain.Identity, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, ident)
	}
	return ident, nil
}

func (m *stubRecords) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *stubRecords) List(ctx context.Context, offset, limit int) ([]domain.Identity, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return []domain.Identity{testIdentity("id-1"), testIdentity("id-2")}, 2, nil
}

// stubIndex implements enroll.EmbeddingIndex and verify.EmbeddingIndex.
type stubIndex struct {
	upsertFn func(ctx context.Context, id string, vector []float32, meta map[string]string) error
	deleteFn func(ctx context.Context, id string) error
	countFn  func(ctx context.Context) (int, error)
	queryFn  func(ctx context.Context, vector []float32, k int) ([]domain.Candidate, error)
}

func (m *stubIndex) Upsert(ctx context.Context, id string, vector []float32, meta map[string]string) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, id, vector, meta)
	}
	return nil
}

func (m *stubIndex) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *stubIndex) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 2, nil
}

func (m *stubIndex) Query(ctx context.Context, vector []float32, k int) ([]domain.Candidate, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, vector, k)
	}
	return nil, nil
}

// stubExtractor implements domain.Extractor.
type stubExtractor struct {
	extractFn func(ctx context.Context, image io.Reader) (domain.ExtractionResult, error)
}

func (m *stubExtractor) Extract(ctx context.Context, image io.Reader) (domain.ExtractionResult, error) {
	if m.extractFn != nil {
		return m.extractFn(ctx, image)
	}
	return domain.ExtractionResult{Embedding: []float32{0.6, 0.8}, Model: "buffalo_l", DetScore: 0.95}, nil
}

type stubPinger struct {
	err error
}

func (m *stubPinger) Ping(context.Context) error { return m.err }

func testIdentity(id string) domain.Identity {
	return domain.ReconstructIdentity(id, domain.Attributes{
		FullName:   "Jana Dvorakova",
		Employer:   "Acme",
		Position:   "Engineer",
		Reputation: 7.5,
		ImageRef:   "photos/jana.jpg",
	}, 1700000000000, 1700000000000)
}

type testEnv struct {
	handler   http.Handler
	records   *stubRecords
	index     *stubIndex
	extractor *stubExtractor
	db        *stubPinger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	records := &stubRecords{}
	index := &stubIndex{}
	extractor := &stubExtractor{}
	db := &stubPinger{}

	srv := NewServer(
		enrolluc.New(records, index, extractor),
		verifyuc.New(records, index, extractor, 0.65),
		healthuc.New(db, nil),
		zap.NewNop(),
	)

	r := gochi.NewRouter()
	srv.RegisterRoutes(r)

	return &testEnv{handler: r, records: records, index: index, extractor: extractor, db: db}
}

// multipartRequest builds a multipart request with optional form fields and
// an optional "image" file part.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, filename string, image []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := fw.Write(image); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func doRequest(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	return rr
}
