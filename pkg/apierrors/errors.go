// Package apierrors holds the typed failures surfaced by the gateway client.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuthentication     = errors.New("braintree: authentication failed")
	ErrAuthorization      = errors.New("braintree: not authorized")
	ErrNotFound           = errors.New("braintree: resource not found")
	ErrServer             = errors.New("braintree: server error")
	ErrDownForMaintenance = errors.New("braintree: gateway down for maintenance")
	ErrUnexpected         = errors.New("braintree: unexpected response")
	ErrSSLCertificate     = errors.New("braintree: ssl certificate verification failed")
	ErrConfiguration      = errors.New("braintree: invalid configuration")
	ErrForgedQueryString  = errors.New("braintree: forged query string")
)

// ForStatus maps an HTTP status that is not a success onto its error kind.
// Every code maps to exactly one kind; unknown codes yield *UnexpectedResponseError.
func ForStatus(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrAuthentication
	case http.StatusForbidden:
		return ErrAuthorization
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusInternalServerError:
		return ErrServer
	case http.StatusServiceUnavailable:
		return ErrDownForMaintenance
	default:
		return &UnexpectedResponseError{StatusCode: statusCode}
	}
}

// UnexpectedResponseError carries a status the client has no specific kind for.
type UnexpectedResponseError struct {
	StatusCode int
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("Unexpected HTTP_RESPONSE %d", e.StatusCode)
}

func (e *UnexpectedResponseError) Is(target error) bool {
	return target == ErrUnexpected
}

// SSLCertificateError reports a rejected server certificate chain. Code and
// Reason follow OpenSSL's verify result numbering.
type SSLCertificateError struct {
	Preverify bool
	Code      int
	Reason    string
}

func (e *SSLCertificateError) Error() string {
	return fmt.Sprintf("Preverify: %t, Error: %s (%d)", e.Preverify, e.Reason, e.Code)
}

func (e *SSLCertificateError) Is(target error) bool {
	return target == ErrSSLCertificate
}

// ConfigurationError names a missing or malformed configuration setting.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("braintree: %s %s", e.Setting, e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
