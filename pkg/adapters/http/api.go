package http

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var rawSpec []byte

// ErrInvalidRequest marks malformed parameters and bodies.
var ErrInvalidRequest = errors.New("invalid request")

var loadSwagger = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("error loading OpenAPI document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return doc, nil
})

// GetSwagger returns the parsed and validated OpenAPI document served at /openapi.yaml.
func GetSwagger() (*openapi3.T, error) {
	return loadSwagger()
}

// RawSpec returns the embedded OpenAPI document.
func RawSpec() []byte {
	return rawSpec
}

// SubscribeEventsParams defines the query parameters of GET /sessions/{id}/events.
type SubscribeEventsParams struct {
	// Watch is a comma separated list of diff fields; frames touching none of them are skipped.
	Watch *string `form:"watch,omitempty" json:"watch,omitempty"`
}

// GetDocParams defines the query parameters of GET /docs/{algorithm}.
type GetDocParams struct {
	Format *string `form:"format,omitempty" json:"format,omitempty"`
}

func bindPathParam(r *http.Request, name string) (string, error) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", fmt.Errorf("%w: invalid format for parameter %s: %v", ErrInvalidRequest, name, err)
	}
	return value, nil
}

func bindSubscribeEventsParams(r *http.Request) (SubscribeEventsParams, error) {
	var params SubscribeEventsParams
	if err := runtime.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &params.Watch); err != nil {
		return params, fmt.Errorf("%w: invalid format for parameter watch: %v", ErrInvalidRequest, err)
	}
	return params, nil
}

func bindGetDocParams(r *http.Request) (GetDocParams, error) {
	var params GetDocParams
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &params.Format); err != nil {
		return params, fmt.Errorf("%w: invalid format for parameter format: %v", ErrInvalidRequest, err)
	}
	return params, nil
}
