package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/facegate/facegate/internal/domain"
	"github.com/facegate/facegate/internal/metrics"
)

// Compile-time checks against the domain contracts.
var (
	_ domain.Extractor     = (*Extractor)(nil)
	_ domain.HealthChecker = (*Extractor)(nil)
)

// Extractor calls an InsightFace-style inference service that detects a
// face in an image and returns its embedding vector.
type Extractor struct {
	client   *http.Client
	baseURL  string
	model    string
	detector string
	logger   *zap.Logger
}

// Config holds the inference service settings.
type Config struct {
	BaseURL  string
	Model    string
	Detector string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// New creates an extraction client for the inference service.
func New(cfg *Config) *Extractor {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Extractor{
		client:   &http.Client{Timeout: timeout},
		baseURL:  cfg.BaseURL,
		model:    cfg.Model,
		detector: cfg.Detector,
		logger:   cfg.Logger,
	}
}

// extractResponse is the service's success payload.
type extractResponse struct {
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model"`
	DetScore  float64   `json:"det_score"`
}

// errorResponse is the service's failure payload. Code distinguishes
// detection failures from transport problems.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Extract implements domain.Extractor: uploads the image as multipart
// form data and returns the face embedding.
func (e *Extractor) Extract(ctx context.Context, image io.Reader) (domain.ExtractionResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := e.writeForm(mw, image)
		mw.Close()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/extract", pr)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := e.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "error").Inc()
		metrics.ExtractionErrorsTotal.WithLabelValues(e.model, "unreachable").Inc()
		return domain.ExtractionResult{}, fmt.Errorf("extractor request failed: %w: %w",
			domain.ErrExtractorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "error").Inc()
		return domain.ExtractionResult{}, e.parseFailure(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "error").Inc()
		return domain.ExtractionResult{}, fmt.Errorf("could not read response body: %w: %w",
			domain.ErrExtractorUnavailable, err)
	}

	var parsed extractResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "error").Inc()
		metrics.ExtractionErrorsTotal.WithLabelValues(e.model, "bad_response").Inc()
		return domain.ExtractionResult{}, fmt.Errorf("could not unmarshal response: %w: %w",
			domain.ErrExtractorUnavailable, err)
	}
	if len(parsed.Embedding) == 0 {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "error").Inc()
		metrics.ExtractionErrorsTotal.WithLabelValues(e.model, "empty_embedding").Inc()
		return domain.ExtractionResult{}, fmt.Errorf("empty embedding in response: %w",
			domain.ErrExtractorUnavailable)
	}

	metrics.ExtractionRequestsTotal.WithLabelValues(e.model, "success").Inc()
	metrics.ExtractionRequestDuration.WithLabelValues(e.model).Observe(duration.Seconds())

	return domain.ExtractionResult{
		Embedding: parsed.Embedding,
		Model:     parsed.Model,
		DetScore:  parsed.DetScore,
	}, nil
}

func (e *Extractor) writeForm(mw *multipart.Writer, image io.Reader) error {
	if err := mw.WriteField("model", e.model); err != nil {
		return err
	}
	if e.detector != "" {
		if err := mw.WriteField("detector", e.detector); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("image", "image")
	if err != nil {
		return err
	}
	_, err = io.Copy(part, image)
	return err
}

// parseFailure maps the service's error codes to domain sentinels so
// callers can produce precise failure reasons.
func (e *Extractor) parseFailure(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed errorResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.Code != "" {
		switch parsed.Code {
		case "no_face":
			metrics.ExtractionErrorsTotal.WithLabelValues(e.model, "no_face").Inc()
			return fmt.Errorf("%s: %w", parsed.Message, domain.ErrNoFaceDetected)
		case "multiple_faces":
			metrics.ExtractionErrorsTotal.WithLabelValues(e.model, "multiple_faces").Inc()
			return fmt.Errorf("%s: %w", parsed.Message, domain.ErrMultipleFacesDetected)
		case "bad_image":
			metrics.ExtractionErrorsTotal.WithLabelValues(e.model, "bad_image").Inc()
			return fmt.Errorf("%s: %w", parsed.Message, domain.ErrImageUnreadable)
		}
	}

	metrics.ExtractionErrorsTotal.WithLabelValues(e.model, "api_error").Inc()
	if e.logger != nil {
		e.logger.Warn("extractor returned unexpected status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
	}
	return fmt.Errorf("extractor API error %d: %w", resp.StatusCode, domain.ErrExtractorUnavailable)
}

// HealthCheck verifies service availability via its health endpoint.
func (e *Extractor) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("extractor health check: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("extractor health check: status %d", resp.StatusCode)
	}
	return nil
}
