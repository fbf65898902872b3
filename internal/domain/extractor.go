package domain

import (
	"context"
	"io"
)

// Extractor derives a face embedding from an image. Implementations must
// return exactly one of the extraction sentinels (ErrNoFaceDetected,
// ErrMultipleFacesDetected, ErrImageUnreadable, ErrExtractorUnavailable)
// wrapped in the returned error when extraction fails.
type Extractor interface {
	Extract(ctx context.Context, image io.Reader) (ExtractionResult, error)
}

// HealthChecker verifies extractor availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ExtractionResult carries the embedding of the single detected face.
type ExtractionResult struct {
	Embedding []float32
	Model     string
	DetScore  float64
}
