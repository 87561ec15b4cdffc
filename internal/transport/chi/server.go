package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vendorscout/internal/domain"
	dombatch "github.com/kailas-cloud/vendorscout/internal/domain/batch"
	"github.com/kailas-cloud/vendorscout/internal/domain/brief"
	domsrc "github.com/kailas-cloud/vendorscout/internal/domain/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
	healthuc "github.com/kailas-cloud/vendorscout/internal/usecase/health"
	sourcinguc "github.com/kailas-cloud/vendorscout/internal/usecase/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/version"
)

const maxBatchSize = 500

// ErrorCode is the machine-readable error code of an API error response.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeInvalidBrief     ErrorCode = "invalid_brief"
	CodeUnknownCategory  ErrorCode = "unknown_category"
	CodeInvalidVendor    ErrorCode = "invalid_vendor"
	CodeVendorNotFound   ErrorCode = "vendor_not_found"
	CodeStoreUnavailable ErrorCode = "store_unavailable"
	CodeProviderError    ErrorCode = "provider_error"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeInternalError    ErrorCode = "internal_error"
)

// Sourcer ranks vendors for a brief.
type Sourcer interface {
	Source(ctx context.Context, b *brief.Brief, category string, topK int) (domsrc.Result, error)
	SourceAll(ctx context.Context, b *brief.Brief, categories []string, topK int) (map[string]sourcinguc.Outcome, error)
	Categories() []string
}

// Catalog manages stored vendor records.
type Catalog interface {
	Ingest(ctx context.Context, items []vendors.Fields) []dombatch.Result
	Get(ctx context.Context, category, id string) (vendors.Record, error)
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the sourcing and catalog HTTP API.
type Server struct {
	sourcing Sourcer
	catalog  Catalog
	health   HealthChecker
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(sourcing Sourcer, catalog Catalog, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		sourcing: sourcing,
		catalog:  catalog,
		health:   health,
		logger:   logger,
	}
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/categories", s.ListCategories)
		r.Post("/sourcing", s.SourceMany)
		r.Post("/sourcing/{category}", s.Source)
		r.Put("/vendors", s.UpsertVendors)
		r.Get("/vendors/{category}/{id}", s.GetVendor)
	})
}

// Source handles POST /v1/sourcing/{category}.
func (s *Server) Source(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	b, err := req.Brief.toDomain()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.sourcing.Source(ctx, &b, chi.URLParam(r, "category"), req.TopK)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToResponse(&res))
}

// SourceMany handles POST /v1/sourcing.
func (s *Server) SourceMany(w http.ResponseWriter, r *http.Request) {
	var req multiSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	b, err := req.Brief.toDomain()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	outcomes, err := s.sourcing.SourceAll(ctx, &b, req.Categories, req.TopK)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := multiSourceResponse{
		Results: make(map[string]resultResponse, len(outcomes)),
		Errors:  make(map[string]errorResponse),
	}
	for category, out := range outcomes {
		if out.Err != nil {
			_, code := classify(out.Err)
			resp.Errors[category] = errorResponse{Code: code, Message: safeDomainMessage(out.Err)}
			continue
		}
		resp.Results[category] = resultToResponse(&out.Result)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListCategories handles GET /v1/categories.
func (s *Server) ListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: s.sourcing.Categories()})
}

// UpsertVendors handles PUT /v1/vendors.
func (s *Server) UpsertVendors(w http.ResponseWriter, r *http.Request) {
	var req upsertVendorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Vendors) == 0 || len(req.Vendors) > maxBatchSize {
		writeError(w, http.StatusBadRequest, CodeInvalidVendor,
			fmt.Sprintf("vendors count must be between 1 and %d", maxBatchSize))
		return
	}

	items := make([]vendors.Fields, len(req.Vendors))
	for i, v := range req.Vendors {
		items[i] = v.toFields()
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results := s.catalog.Ingest(ctx, items)
	setUsageHeaders(w, usage)

	resp := upsertVendorsResponse{Items: make([]batchItemResponse, len(results))}
	for i, res := range results {
		resp.Items[i] = batchResultToResponse(res)
		if res.Stored() {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetVendor handles GET /v1/vendors/{category}/{id}.
func (s *Server) GetVendor(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.Get(r.Context(), chi.URLParam(r, "category"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vendorToResponse(&rec))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.ProviderUsage) {
	if tokens, used := usage.Snapshot(); used {
		w.Header().Set("X-Provider-Tokens", strconv.Itoa(tokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message without exposing store or provider internals.
// Validation errors keep their detail since it only echoes the request back.
func safeDomainMessage(err error) string {
	for _, s := range []error{domain.ErrUnknownCategory, domain.ErrInvalidBrief, domain.ErrInvalidVendor} {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	sentinels := []error{
		domain.ErrVendorNotFound,
		domain.ErrStoreUnavailable,
		domain.ErrEmbeddingProviderError,
		domain.ErrMissingEmbedding,
		domain.ErrVectorDimMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// errorMapping binds a sentinel error to its HTTP status and code.
type errorMapping struct {
	sentinel error
	status   int
	code     ErrorCode
}

// errorMappings is checked in order: an unknown category also wraps ErrInvalidBrief.
var errorMappings = []errorMapping{
	{domain.ErrUnknownCategory, http.StatusBadRequest, CodeUnknownCategory},
	{domain.ErrInvalidBrief, http.StatusBadRequest, CodeInvalidBrief},
	{domain.ErrInvalidVendor, http.StatusBadRequest, CodeInvalidVendor},
	{domain.ErrVendorNotFound, http.StatusNotFound, CodeVendorNotFound},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, CodeStoreUnavailable},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeProviderError},
	{domain.ErrMissingEmbedding, http.StatusBadGateway, CodeProviderError},
}

// classify resolves the status and code an error is reported with.
func classify(err error) (int, ErrorCode) {
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, CodeInternalError
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if code == CodeInternalError {
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, status, code, "internal error")
		return
	}
	s.logger.Warn("domain error", zap.Error(err))
	writeError(w, status, code, safeDomainMessage(err))
}

func batchResultToResponse(r dombatch.Result) batchItemResponse {
	item := batchItemResponse{
		Category: r.Category(),
		ID:       r.ID(),
		Status:   string(r.Status()),
	}
	if r.Err() != nil {
		_, code := classify(r.Err())
		item.Error = &errorResponse{Code: code, Message: safeDomainMessage(r.Err())}
	}
	return item
}
