package braintree

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Checker-Finance/braintree-go/pkg/apierrors"
)

// Error kinds, re-exported so callers need only this package.
var (
	ErrAuthentication     = apierrors.ErrAuthentication
	ErrAuthorization      = apierrors.ErrAuthorization
	ErrNotFound           = apierrors.ErrNotFound
	ErrServer             = apierrors.ErrServer
	ErrDownForMaintenance = apierrors.ErrDownForMaintenance
	ErrUnexpected         = apierrors.ErrUnexpected
	ErrSSLCertificate     = apierrors.ErrSSLCertificate
	ErrConfiguration      = apierrors.ErrConfiguration
	ErrForgedQueryString  = apierrors.ErrForgedQueryString

	ErrValidation = errors.New("braintree: validation failed")
)

// ValidationError is one attribute-level failure reported by the gateway.
type ValidationError struct {
	// Path is the dotted resource path the error was reported on, e.g.
	// "customer.credit_card".
	Path      string
	Attribute string
	Code      string
	Message   string
}

// ErrorResult is returned for a 422 response.
type ErrorResult struct {
	Message string
	Errors  []ValidationError
	Params  map[string]any
}

func (e *ErrorResult) Error() string {
	return e.Message
}

func (e *ErrorResult) Is(target error) bool {
	return target == ErrValidation
}

// On returns the errors reported directly on path.
func (e *ErrorResult) On(path string) []ValidationError {
	var out []ValidationError
	for _, ve := range e.Errors {
		if ve.Path == path {
			out = append(out, ve)
		}
	}
	return out
}

func newErrorResult(m map[string]any) *ErrorResult {
	a := attributes(m)
	res := &ErrorResult{
		Message: a.str("message"),
		Params:  a.nested("params"),
	}
	res.Errors = collectValidationErrors(a.nested("errors"), nil)
	return res
}

// collectValidationErrors walks the errors tree; each level holds an
// "errors" array plus one child element per nested resource.
func collectValidationErrors(node map[string]any, path []string) []ValidationError {
	if node == nil {
		return nil
	}

	var out []ValidationError
	if items, ok := node["errors"].([]any); ok {
		for _, item := range items {
			a := attrs(item)
			if a == nil {
				continue
			}
			out = append(out, ValidationError{
				Path:      strings.Join(path, "."),
				Attribute: a.str("attribute"),
				Code:      a.str("code"),
				Message:   a.str("message"),
			})
		}
	}

	keys := make([]string, 0, len(node))
	for k := range node {
		if k != "errors" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if child, ok := node[k].(map[string]any); ok {
			out = append(out, collectValidationErrors(child, append(path[:len(path):len(path)], k))...)
		}
	}
	return out
}

// resultError explains a decoded document that did not hold the expected
// resource.
func resultError(doc map[string]any) error {
	if m, ok := doc["api_error_response"].(map[string]any); ok {
		return newErrorResult(m)
	}
	roots := make([]string, 0, len(doc))
	for k := range doc {
		roots = append(roots, k)
	}
	return fmt.Errorf("%w: document root %v", ErrUnexpected, roots)
}
