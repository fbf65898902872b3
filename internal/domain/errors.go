package domain

import (
	"errors"
	"fmt"
)

// Extraction failures. Surfaced to the caller verbatim, never retried.
var (
	// ErrNoFaceDetected signals that the extractor found no face in the image.
	ErrNoFaceDetected = errors.New("no face detected")
	// ErrMultipleFacesDetected signals that the extractor found more than one face.
	ErrMultipleFacesDetected = errors.New("multiple faces detected")
	// ErrImageUnreadable signals an image the extractor could not decode.
	ErrImageUnreadable = errors.New("image unreadable")
	// ErrExtractorUnavailable signals an extractor transport failure.
	ErrExtractorUnavailable = errors.New("extractor unavailable")
)

// Store failures. Trigger compensation during enrollment.
var (
	// ErrRecordCreation signals that the identity record could not be created.
	ErrRecordCreation = errors.New("record creation failed")
	// ErrRecordNotFound signals a missing identity record.
	ErrRecordNotFound = errors.New("identity record not found")
	// ErrIndexWrite signals a failed embedding index write.
	ErrIndexWrite = errors.New("index write failed")
	// ErrIndexQuery signals a failed embedding index query.
	ErrIndexQuery = errors.New("index query failed")
)

// Consistency failures. The dual-store invariant broke; these must never be
// downgraded to an ordinary no-match.
var (
	// ErrRecordMissing signals an indexed embedding whose identity record is gone.
	ErrRecordMissing = errors.New("identity record missing for indexed embedding")
	// ErrCompensationFailed signals that the compensating record delete failed,
	// leaving an orphaned record behind.
	ErrCompensationFailed = errors.New("compensation failed")
)

// CompensationError carries both the failure that triggered compensation and
// the failure of the compensating delete itself.
type CompensationError struct {
	IdentityID string
	Cause      error
	CleanupErr error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%s for identity %s: cleanup: %v (after: %v)",
		ErrCompensationFailed.Error(), e.IdentityID, e.CleanupErr, e.Cause)
}

// Unwrap exposes the sentinel plus both underlying errors, so callers can
// branch on either the escalation or the original failure.
func (e *CompensationError) Unwrap() []error {
	return []error{ErrCompensationFailed, e.Cause, e.CleanupErr}
}

// NewCompensationError creates a compensation escalation error.
func NewCompensationError(identityID string, cause, cleanupErr error) error {
	return &CompensationError{IdentityID: identityID, Cause: cause, CleanupErr: cleanupErr}
}
