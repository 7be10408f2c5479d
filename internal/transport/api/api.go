// Package api defines the booruq HTTP contract: request and response
// bodies, the server interface and the chi router that binds them.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/booruq/internal/domain/image"
)

// ErrorResponseCode is the machine-readable error code.
type ErrorResponseCode string

// Defines values for ErrorResponseCode.
const (
	ErrorResponseCodeBadRequest          ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized        ErrorResponseCode = "unauthorized"
	ErrorResponseCodeInvalidQuery        ErrorResponseCode = "invalid_query"
	ErrorResponseCodeInvalidFilter       ErrorResponseCode = "invalid_filter"
	ErrorResponseCodeTooManyImages       ErrorResponseCode = "too_many_images"
	ErrorResponseCodeFilterNotFound      ErrorResponseCode = "filter_not_found"
	ErrorResponseCodeFilterAlreadyExists ErrorResponseCode = "filter_already_exists"
	ErrorResponseCodeNotImplemented      ErrorResponseCode = "not_implemented"
	ErrorResponseCodeInternalError       ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
// Kind and Position are set for query parse errors.
type ErrorResponse struct {
	Code     ErrorResponseCode `json:"code"`
	Message  string            `json:"message"`
	Kind     *string           `json:"kind,omitempty"`
	Position *int              `json:"position,omitempty"`
}

// MatchRequest is the body of POST /api/v1/match.
// A null or omitted Interactions means the data is unavailable;
// an empty list means the user has no interactions.
type MatchRequest struct {
	Query        string               `json:"query"`
	Images       []image.Image        `json:"images"`
	Interactions *[]image.Interaction `json:"interactions,omitempty"`
}

// MatchResult is the outcome for one image.
type MatchResult struct {
	ImageID int64 `json:"image_id"`
	Matched bool  `json:"matched"`
}

// MatchResponse lists outcomes in request order.
type MatchResponse struct {
	Results []MatchResult `json:"results"`
	Matched int           `json:"matched"`
}

// ValidateRequest is the body of POST /api/v1/validate.
type ValidateRequest struct {
	Query string `json:"query"`
}

// ValidateResponse reports whether a query compiles and, if so, its tree.
type ValidateResponse struct {
	Valid bool           `json:"valid"`
	Tree  *string        `json:"tree,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ClassifyRequest is the body of POST /api/v1/filters/{name}/classify.
type ClassifyRequest struct {
	Images       []image.Image        `json:"images"`
	Interactions *[]image.Interaction `json:"interactions,omitempty"`
}

// ClassifyResult is the visibility of one image.
type ClassifyResult struct {
	ImageID    int64  `json:"image_id"`
	Visibility string `json:"visibility"`
}

// ClassifyResponse lists verdicts in request order.
type ClassifyResponse struct {
	Filter  string           `json:"filter"`
	Results []ClassifyResult `json:"results"`
}

// Filter is the public form of a content filter.
type Filter struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	HiddenTagIDs     []int64 `json:"hidden_tag_ids"`
	SpoileredTagIDs  []int64 `json:"spoilered_tag_ids"`
	HiddenComplex    string  `json:"hidden_complex"`
	SpoileredComplex string  `json:"spoilered_complex"`
}

// FilterListResponse is the body of GET /api/v1/filters.
type FilterListResponse struct {
	Items []Filter `json:"items"`
	Count int      `json:"count"`
}

// PutFilterRequest is the body of PUT /api/v1/filters/{name}.
type PutFilterRequest struct {
	ID               int64   `json:"id"`
	Description      string  `json:"description"`
	HiddenTagIDs     []int64 `json:"hidden_tag_ids"`
	SpoileredTagIDs  []int64 `json:"spoilered_tag_ids"`
	HiddenComplex    string  `json:"hidden_complex"`
	SpoileredComplex string  `json:"spoilered_complex"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Filters int               `json:"filters"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /api/v1/match)
	Match(w http.ResponseWriter, r *http.Request)
	// (POST /api/v1/validate)
	Validate(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/filters)
	ListFilters(w http.ResponseWriter, r *http.Request)
	// (PUT /api/v1/filters/{name})
	PutFilter(w http.ResponseWriter, r *http.Request, name string)
	// (DELETE /api/v1/filters/{name})
	DeleteFilter(w http.ResponseWriter, r *http.Request, name string)
	// (POST /api/v1/filters/{name}/classify)
	ClassifyImages(w http.ResponseWriter, r *http.Request, name string)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// Unimplemented responds 501 to every route. Embed it to implement a subset.
type Unimplemented struct{}

// Match is not implemented.
func (Unimplemented) Match(w http.ResponseWriter, _ *http.Request) { notImplemented(w) }

// Validate is not implemented.
func (Unimplemented) Validate(w http.ResponseWriter, _ *http.Request) { notImplemented(w) }

// ListFilters is not implemented.
func (Unimplemented) ListFilters(w http.ResponseWriter, _ *http.Request) { notImplemented(w) }

// PutFilter is not implemented.
func (Unimplemented) PutFilter(w http.ResponseWriter, _ *http.Request, _ string) { notImplemented(w) }

// DeleteFilter is not implemented.
func (Unimplemented) DeleteFilter(w http.ResponseWriter, _ *http.Request, _ string) { notImplemented(w) }

// ClassifyImages is not implemented.
func (Unimplemented) ClassifyImages(w http.ResponseWriter, _ *http.Request, _ string) { notImplemented(w) }

// HealthCheck is not implemented.
func (Unimplemented) HealthCheck(w http.ResponseWriter, _ *http.Request) { notImplemented(w) }

// Metrics is not implemented.
func (Unimplemented) Metrics(w http.ResponseWriter, _ *http.Request) { notImplemented(w) }

func notImplemented(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotImplemented)
}

// MiddlewareFunc wraps a single route handler.
type MiddlewareFunc func(http.Handler) http.Handler

// InvalidParamFormatError is passed to ErrorHandlerFunc when a path parameter fails to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ServerInterfaceWrapper converts raw requests into ServerInterface calls.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	var handler http.Handler = h
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// bindName binds the {name} path parameter.
func (siw *ServerInterfaceWrapper) bindName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var name string
	err := runtime.BindStyledParameterWithOptions("simple", "name", chi.URLParam(r, "name"), &name,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "name", Err: err})
		return "", false
	}
	return name, true
}

// Match operation middleware.
func (siw *ServerInterfaceWrapper) Match(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Match)
}

// Validate operation middleware.
func (siw *ServerInterfaceWrapper) Validate(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Validate)
}

// ListFilters operation middleware.
func (siw *ServerInterfaceWrapper) ListFilters(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.ListFilters)
}

// PutFilter operation middleware.
func (siw *ServerInterfaceWrapper) PutFilter(w http.ResponseWriter, r *http.Request) {
	name, ok := siw.bindName(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PutFilter(w, r, name)
	})
}

// DeleteFilter operation middleware.
func (siw *ServerInterfaceWrapper) DeleteFilter(w http.ResponseWriter, r *http.Request) {
	name, ok := siw.bindName(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteFilter(w, r, name)
	})
}

// ClassifyImages operation middleware.
func (siw *ServerInterfaceWrapper) ClassifyImages(w http.ResponseWriter, r *http.Request) {
	name, ok := siw.bindName(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ClassifyImages(w, r, name)
	})
}

// HealthCheck operation middleware.
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthCheck)
}

// Metrics operation middleware.
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Metrics)
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler creates an http.Handler with routing matching the booruq API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions creates an http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	base := options.BaseURL
	r.Group(func(r chi.Router) {
		r.Post(base+"/api/v1/match", wrapper.Match)
		r.Post(base+"/api/v1/validate", wrapper.Validate)
		r.Get(base+"/api/v1/filters", wrapper.ListFilters)
		r.Put(base+"/api/v1/filters/{name}", wrapper.PutFilter)
		r.Delete(base+"/api/v1/filters/{name}", wrapper.DeleteFilter)
		r.Post(base+"/api/v1/filters/{name}/classify", wrapper.ClassifyImages)
		r.Get(base+"/health", wrapper.HealthCheck)
		r.Get(base+"/metrics", wrapper.Metrics)
	})
	return r
}
