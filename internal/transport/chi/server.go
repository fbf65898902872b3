package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/facegate/facegate/internal/domain"
	enrolluc "github.com/facegate/facegate/internal/usecase/enroll"
	healthuc "github.com/facegate/facegate/internal/usecase/health"
	verifyuc "github.com/facegate/facegate/internal/usecase/verify"
)

// Upload limits for image-bearing requests.
const (
	maxUploadBytes     = 10 << 20
	maxMultipartMemory = 4 << 20
)

// Listing page bounds.
const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the enrollment and verification API over HTTP.
type Server struct {
	enroll        *enrolluc.Service
	verify        *verifyuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	enroll *enrolluc.Service,
	verify *verifyuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		enroll: enroll,
		verify: verify,
		health: health,
		logger: logger,
	}
	// compensationHandler must run first: a CompensationError unwraps to its
	// original cause, so a plain sentinel match would hide the escalation.
	s.errorHandlers = []errorHandler{
		compensationHandler,
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, codeIdentityNotFound),
		sentinelHandler(domain.ErrNoFaceDetected, http.StatusUnprocessableEntity, codeNoFaceDetected),
		sentinelHandler(domain.ErrMultipleFacesDetected, http.StatusUnprocessableEntity, codeMultipleFaces),
		sentinelHandler(domain.ErrImageUnreadable, http.StatusBadRequest, codeImageUnreadable),
		sentinelHandler(domain.ErrExtractorUnavailable, http.StatusBadGateway, codeExtractorUnavailable),
		sentinelHandler(domain.ErrIndexWrite, http.StatusInternalServerError, codeIndexError),
		sentinelHandler(domain.ErrIndexQuery, http.StatusInternalServerError, codeIndexError),
		sentinelHandler(domain.ErrRecordMissing, http.StatusInternalServerError, codeConsistencyError),
	}
	return s
}

// RegisterRoutes mounts all API routes on the given router.
func (s *Server) RegisterRoutes(r gochi.Router) {
	r.Route("/api/v1", func(r gochi.Router) {
		r.Post("/identities", s.EnrollIdentity)
		r.Get("/identities", s.ListIdentities)
		r.Get("/identities/{id}", s.GetIdentity)
		r.Delete("/identities/{id}", s.UnenrollIdentity)
		r.Put("/identities/{id}/photo", s.UpdateIdentityPhoto)
		r.Post("/verify", s.VerifyFace)
		r.Get("/stats", s.GetStats)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// EnrollIdentity handles POST /api/v1/identities. The request is multipart:
// an "image" file part plus the attribute form fields.
func (s *Server) EnrollIdentity(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart request: "+err.Error())
		return
	}

	image, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "image file is required")
		return
	}
	defer image.Close()

	attrs, err := attributesFromForm(r, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	ident, err := s.enroll.Enroll(r.Context(), attrs, image)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/identities/"+ident.ID())
	writeJSON(w, http.StatusCreated, identityToResponse(ident))
}

// ListIdentities handles GET /api/v1/identities with offset and limit
// query parameters.
func (s *Server) ListIdentities(w http.ResponseWriter, r *http.Request) {
	offset, err := pageParam(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	limit, err := pageParam(r, "limit", defaultPageLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	identities, total, err := s.enroll.List(r.Context(), offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]identityResponse, len(identities))
	for i, ident := range identities {
		items[i] = identityToResponse(ident)
	}
	writeJSON(w, http.StatusOK, identityListResponse{Items: items, Count: len(items), Total: total})
}

// pageParam parses a non-negative integer query parameter.
func pageParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return v, nil
}

// GetIdentity handles GET /api/v1/identities/{id}.
func (s *Server) GetIdentity(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")

	ident, err := s.enroll.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, identityToResponse(ident))
}

// UnenrollIdentity handles DELETE /api/v1/identities/{id}.
func (s *Server) UnenrollIdentity(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")

	if err := s.enroll.Unenroll(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateIdentityPhoto handles PUT /api/v1/identities/{id}/photo. The request
// is multipart: an "image" file part plus an optional "image_ref" field;
// without it the stored reference is kept.
func (s *Server) UpdateIdentityPhoto(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart request: "+err.Error())
		return
	}

	image, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "image file is required")
		return
	}
	defer image.Close()

	ident, err := s.enroll.UpdatePhoto(r.Context(), id, image, r.FormValue("image_ref"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, identityToResponse(ident))
}

// VerifyFace handles POST /api/v1/verify. The request is multipart with a
// single "image" file part holding the probe photo.
func (s *Server) VerifyFace(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart request: "+err.Error())
		return
	}

	image, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "image file is required")
		return
	}
	defer image.Close()

	decision, err := s.verify.Verify(r.Context(), image)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decisionToResponse(decision))
}

// GetStats handles GET /api/v1/stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.enroll.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{EnrolledCount: stats.EnrolledCount})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthToResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// attributesFromForm builds the enrollment attributes from the multipart
// form fields. The uploaded filename fills image_ref when the field is
// absent, so the reference is never empty.
func attributesFromForm(r *http.Request, filename string) (domain.Attributes, error) {
	attrs := domain.Attributes{
		FullName: r.FormValue("full_name"),
		Phone:    r.FormValue("phone"),
		Email:    r.FormValue("email"),
		Employer: r.FormValue("employer"),
		Position: r.FormValue("position"),
		Notes:    r.FormValue("notes"),
		ImageRef: r.FormValue("image_ref"),
	}

	if v := r.FormValue("reputation"); v != "" {
		rep, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.Attributes{}, fmt.Errorf("reputation must be a number, got %q", v)
		}
		attrs.Reputation = rep
	}

	if attrs.ImageRef == "" {
		attrs.ImageRef = filename
	}

	if err := attrs.Validate(); err != nil {
		return domain.Attributes{}, err
	}
	return attrs, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrCompensationFailed,
		domain.ErrRecordMissing,
		domain.ErrRecordNotFound,
		domain.ErrNoFaceDetected,
		domain.ErrMultipleFacesDetected,
		domain.ErrImageUnreadable,
		domain.ErrExtractorUnavailable,
		domain.ErrIndexWrite,
		domain.ErrIndexQuery,
		domain.ErrRecordCreation,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// compensationHandler handles a failed enrollment rollback. The orphaned
// record identifier is returned so an operator can clean it up by hand.
func compensationHandler(w http.ResponseWriter, err error, msg string) bool {
	var ce *domain.CompensationError
	if !errors.As(err, &ce) {
		return false
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"code":        codeConsistencyError,
		"message":     msg,
		"identity_id": ce.IdentityID,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
