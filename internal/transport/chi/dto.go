package chi

import (
	"time"

	"github.com/facegate/facegate/internal/domain"
	healthuc "github.com/facegate/facegate/internal/usecase/health"
)

// errorCode is the machine-readable code attached to every error response.
type errorCode string

const (
	codeBadRequest           errorCode = "bad_request"
	codeValidationFailed     errorCode = "validation_failed"
	codeIdentityNotFound     errorCode = "identity_not_found"
	codeNoFaceDetected       errorCode = "no_face_detected"
	codeMultipleFaces        errorCode = "multiple_faces_detected"
	codeImageUnreadable      errorCode = "image_unreadable"
	codeExtractorUnavailable errorCode = "extractor_unavailable"
	codeIndexError           errorCode = "index_error"
	codeConsistencyError     errorCode = "consistency_error"
	codeInternalError        errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type identityResponse struct {
	ID             string    `json:"id"`
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Employer       string    `json:"employer,omitempty"`
	Position       string    `json:"position,omitempty"`
	Reputation     float64   `json:"reputation"`
	ReputationBand string    `json:"reputation_band"`
	Notes          string    `json:"notes,omitempty"`
	ImageRef       string    `json:"image_ref"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type identityListResponse struct {
	Items []identityResponse `json:"items"`
	Count int                `json:"count"`
	Total int                `json:"total"`
}

type verifyResponse struct {
	Outcome    string            `json:"outcome"`
	Confidence string            `json:"confidence,omitempty"`
	Similarity *float64          `json:"similarity,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Identity   *identityResponse `json:"identity,omitempty"`
}

type statsResponse struct {
	EnrolledCount int `json:"enrolled_count"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func identityToResponse(ident domain.Identity) identityResponse {
	return identityResponse{
		ID:             ident.ID(),
		FullName:       ident.FullName(),
		Phone:          ident.Phone(),
		Email:          ident.Email(),
		Employer:       ident.Employer(),
		Position:       ident.Position(),
		Reputation:     ident.Reputation(),
		ReputationBand: string(ident.ReputationBand()),
		Notes:          ident.Notes(),
		ImageRef:       ident.ImageRef(),
		CreatedAt:      time.UnixMilli(ident.CreatedAt()).UTC(),
		UpdatedAt:      time.UnixMilli(ident.UpdatedAt()).UTC(),
	}
}

func decisionToResponse(d domain.Decision) verifyResponse {
	resp := verifyResponse{
		Outcome:    string(d.Outcome),
		Confidence: string(d.Confidence),
		Reason:     d.Reason,
	}
	if d.HasScore {
		sim := d.Similarity
		resp.Similarity = &sim
	}
	if d.Identity != nil {
		ident := identityToResponse(*d.Identity)
		resp.Identity = &ident
	}
	return resp
}

func healthToResponse(report healthuc.Report) healthResponse {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return healthResponse{
		Status: string(report.Status),
		Checks: checks,
	}
}
