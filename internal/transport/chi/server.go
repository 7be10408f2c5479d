package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/booruq/internal/domain"
	domfilter "github.com/kailas-cloud/booruq/internal/domain/filter"
	"github.com/kailas-cloud/booruq/internal/domain/image"
	"github.com/kailas-cloud/booruq/internal/domain/query"
	"github.com/kailas-cloud/booruq/internal/transport/api"
	healthuc "github.com/kailas-cloud/booruq/internal/usecase/health"
	matchuc "github.com/kailas-cloud/booruq/internal/usecase/match"
)

// maxBodyBytes caps request bodies; image batches are the largest payloads.
const maxBodyBytes = 16 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server implements api.ServerInterface.
type Server struct {
	match         *matchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ api.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(match *matchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{match: match, health: health, logger: logger}
	s.errorHandlers = []errorHandler{
		parseErrorHandler,
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, api.ErrorResponseCodeInvalidFilter),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, api.ErrorResponseCodeInvalidQuery),
		sentinelHandler(domain.ErrTooManyImages,
			http.StatusRequestEntityTooLarge, api.ErrorResponseCodeTooManyImages),
		sentinelHandler(domain.ErrFilterNotFound, http.StatusNotFound, api.ErrorResponseCodeFilterNotFound),
		sentinelHandler(domain.ErrFilterExists, http.StatusConflict, api.ErrorResponseCodeFilterAlreadyExists),
	}
	return s
}

// Match handles POST /api/v1/match.
func (s *Server) Match(w http.ResponseWriter, r *http.Request) {
	var req api.MatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	outcomes, err := s.match.Match(r.Context(), req.Query, req.Images, snapshotFromAPI(req.Interactions))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := api.MatchResponse{Results: make([]api.MatchResult, len(outcomes))}
	for i, o := range outcomes {
		resp.Results[i] = api.MatchResult{ImageID: o.ImageID, Matched: o.Matched}
		if o.Matched {
			resp.Matched++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Validate handles POST /api/v1/validate. Invalid queries are a 200 with valid=false.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	var req api.ValidateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tree, err := s.match.Explain(r.Context(), req.Query)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, api.ValidateResponse{Valid: true, Tree: &tree})
	case errors.Is(err, domain.ErrInvalidQuery):
		e := queryErrorResponse(err, api.ErrorResponseCodeInvalidQuery, domain.ErrInvalidQuery)
		writeJSON(w, http.StatusOK, api.ValidateResponse{Valid: false, Error: &e})
	default:
		s.handleDomainError(w, err)
	}
}

// ListFilters handles GET /api/v1/filters.
func (s *Server) ListFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := s.match.Filters(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]api.Filter, len(filters))
	for i, f := range filters {
		items[i] = filterToAPI(f)
	}
	writeJSON(w, http.StatusOK, api.FilterListResponse{Items: items, Count: len(items)})
}

// PutFilter handles PUT /api/v1/filters/{name}. Existing filters are not replaced.
func (s *Server) PutFilter(w http.ResponseWriter, r *http.Request, name string) {
	var req api.PutFilterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	f, err := s.match.CreateFilter(r.Context(), domfilter.Spec{
		ID:               req.ID,
		Name:             name,
		Description:      req.Description,
		HiddenTagIDs:     req.HiddenTagIDs,
		SpoileredTagIDs:  req.SpoileredTagIDs,
		HiddenComplex:    req.HiddenComplex,
		SpoileredComplex: req.SpoileredComplex,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, filterToAPI(f))
}

// DeleteFilter handles DELETE /api/v1/filters/{name}.
func (s *Server) DeleteFilter(w http.ResponseWriter, r *http.Request, name string) {
	if err := s.match.DeleteFilter(r.Context(), name); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClassifyImages handles POST /api/v1/filters/{name}/classify.
func (s *Server) ClassifyImages(w http.ResponseWriter, r *http.Request, name string) {
	var req api.ClassifyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	verdicts, err := s.match.Classify(r.Context(), name, req.Images, snapshotFromAPI(req.Interactions))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := api.ClassifyResponse{Filter: name, Results: make([]api.ClassifyResult, len(verdicts))}
	for i, v := range verdicts {
		resp.Results[i] = api.ClassifyResult{ImageID: v.ImageID, Visibility: string(v.Visibility)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, api.HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Filters: report.Filters,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ParamErrorHandler answers path parameter binding failures.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code api.ErrorResponseCode, message string) {
	writeJSON(w, status, api.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// clientMessage trims err down to the part starting at the sentinel's text,
// dropping internal wrapping such as "compile query: ".
func clientMessage(err, sentinel error) string {
	full, prefix := err.Error(), sentinel.Error()
	if i := strings.Index(full, prefix); i >= 0 {
		return full[i:]
	}
	return prefix
}

// queryErrorResponse builds an error body carrying parse error details when present.
func queryErrorResponse(err error, code api.ErrorResponseCode, sentinel error) api.ErrorResponse {
	resp := api.ErrorResponse{Code: code, Message: clientMessage(err, sentinel)}
	var pe *query.ParseError
	if errors.As(err, &pe) {
		kind := pe.Kind.String()
		resp.Kind = &kind
		if pe.Pos >= 0 {
			pos := pe.Pos
			resp.Position = &pos
		}
		if !strings.Contains(resp.Message, pe.Error()) {
			resp.Message = pe.Error()
		}
	}
	return resp
}

// parseErrorHandler reports query parse errors with kind and position.
// A parse error inside a filter definition is reported as invalid_filter.
func parseErrorHandler(w http.ResponseWriter, err error) bool {
	var pe *query.ParseError
	if !errors.As(err, &pe) {
		return false
	}
	if errors.Is(err, domain.ErrInvalidFilter) {
		writeJSON(w, http.StatusBadRequest,
			queryErrorResponse(err, api.ErrorResponseCodeInvalidFilter, domain.ErrInvalidFilter))
		return true
	}
	writeJSON(w, http.StatusBadRequest,
		queryErrorResponse(err, api.ErrorResponseCodeInvalidQuery, domain.ErrInvalidQuery))
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code api.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, clientMessage(err, sentinel))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, api.ErrorResponseCodeInternalError, "internal error")
}

func snapshotFromAPI(items *[]image.Interaction) image.Snapshot {
	if items == nil {
		return image.NoSnapshot()
	}
	return image.NewSnapshot(*items)
}

func filterToAPI(f *domfilter.Filter) api.Filter {
	spec := f.Spec()
	return api.Filter{
		ID:               spec.ID,
		Name:             spec.Name,
		Description:      spec.Description,
		HiddenTagIDs:     nonNilIDs(spec.HiddenTagIDs),
		SpoileredTagIDs:  nonNilIDs(spec.SpoileredTagIDs),
		HiddenComplex:    spec.HiddenComplex,
		SpoileredComplex: spec.SpoileredComplex,
	}
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
