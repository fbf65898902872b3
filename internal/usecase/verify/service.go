package verify

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/facegate/facegate/internal/domain"
	"github.com/facegate/facegate/internal/metrics"
)

// Service verifies a probe image against the enrolled population: one
// KNN query for the nearest embedding, a threshold decision, and record
// resolution for accepted matches.
type Service struct {
	records   RecordReader
	index     EmbeddingIndex
	extractor domain.Extractor
	threshold float64
}

// New creates a verification service. threshold must already be
// validated to lie in (0,1).
func New(records RecordReader, index EmbeddingIndex, extractor domain.Extractor, threshold float64) *Service {
	if threshold == 0 {
		threshold = domain.DefaultMatchThreshold
	}
	return &Service{records: records, index: index, extractor: extractor, threshold: threshold}
}

// Verify runs the full verification flow for a probe image.
func (s *Service) Verify(ctx context.Context, image io.Reader) (domain.Decision, error) {
	probe, cleanup, err := spoolProbe(image)
	if err != nil {
		return domain.Decision{}, err
	}
	defer cleanup()

	result, err := s.extractor.Extract(ctx, probe)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("extract probe: %w", err)
	}

	vector, err := domain.Normalize(result.Embedding)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("normalize probe embedding: %w", err)
	}

	candidates, err := s.index.Query(ctx, vector, 1)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("query index: %w", err)
	}

	if len(candidates) == 0 {
		metrics.VerificationsTotal.WithLabelValues(string(domain.OutcomeNoMatch), "").Inc()
		return domain.Decision{
			Outcome: domain.OutcomeNoMatch,
			Reason:  domain.ReasonNoEnrolled,
		}, nil
	}

	best := candidates[0]
	verdict := domain.Decide(best.Similarity, s.threshold)

	if verdict.Outcome == domain.OutcomeNoMatch {
		metrics.VerificationsTotal.WithLabelValues(string(domain.OutcomeNoMatch), "").Inc()
		return domain.Decision{
			Outcome:    domain.OutcomeNoMatch,
			Reason:     domain.ReasonBelowThreshold,
			Similarity: best.Similarity,
			HasScore:   true,
		}, nil
	}

	ident, err := s.records.Get(ctx, best.ID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			// index and record store diverged; surface loudly instead of
			// returning a half-baked match
			return domain.Decision{}, fmt.Errorf(
				"matched identity %s has no record: %w", best.ID, domain.ErrRecordMissing)
		}
		return domain.Decision{}, fmt.Errorf("resolve record %s: %w", best.ID, err)
	}

	metrics.VerificationsTotal.WithLabelValues(
		string(domain.OutcomeMatch), string(verdict.Confidence)).Inc()

	return domain.Decision{
		Outcome:    domain.OutcomeMatch,
		Similarity: best.Similarity,
		HasScore:   true,
		Confidence: verdict.Confidence,
		Identity:   &ident,
	}, nil
}
