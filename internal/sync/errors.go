// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package sync

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the upstream failure taxonomy. Wrap points attach the
// failing service and operation; check with errors.Is.
var (
	// ErrAuthentication indicates a bad or missing API key (upstream 401/403).
	ErrAuthentication = errors.New("authentication failed")

	// ErrRateLimited indicates the upstream returned 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound indicates the requested entity does not exist upstream.
	ErrNotFound = errors.New("not found")
)

// UpstreamError is any other non-2xx or transport failure. It carries the
// status code and response body for diagnostics.
type UpstreamError struct {
	Service    string
	Operation  string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s failed: %s", e.Service, e.Operation, e.Body)
	}
	return fmt.Sprintf("%s %s returned status %d: %s", e.Service, e.Operation, e.StatusCode, e.Body)
}

// statusToError maps a non-2xx HTTP status to the taxonomy. body is kept
// only for the generic upstream case.
func statusToError(service, operation string, statusCode int, body string) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", service, operation, ErrAuthentication)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s %s: %w", service, operation, ErrRateLimited)
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", service, operation, ErrNotFound)
	default:
		return &UpstreamError{
			Service:    service,
			Operation:  operation,
			StatusCode: statusCode,
			Body:       body,
		}
	}
}

// ErrorType classifies err into the label values used by the API error
// metrics: authentication, rate_limited, not_found, upstream.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrAuthentication):
		return "authentication"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "upstream"
	}
}

// isNotFound reports whether err wraps ErrNotFound.
func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
