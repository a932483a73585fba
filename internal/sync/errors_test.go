// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package sync

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusToError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		sentinel   error
	}{
		{name: "unauthorized maps to authentication", statusCode: http.StatusUnauthorized, sentinel: ErrAuthentication},
		{name: "forbidden maps to authentication", statusCode: http.StatusForbidden, sentinel: ErrAuthentication},
		{name: "too many requests maps to rate limited", statusCode: http.StatusTooManyRequests, sentinel: ErrRateLimited},
		{name: "not found maps to not found", statusCode: http.StatusNotFound, sentinel: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := statusToError("overseerr", "/api/v1/user", tt.statusCode, "body")
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("status %d: expected errors.Is(%v), got %v", tt.statusCode, tt.sentinel, err)
			}
		})
	}
}

func TestStatusToError_Upstream(t *testing.T) {
	err := statusToError("radarr", "/api/v3/movie", http.StatusBadGateway, "bad gateway")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %T: %v", err, err)
	}

	checkStringEqual(t, "Service", upstream.Service, "radarr")
	checkStringEqual(t, "Operation", upstream.Operation, "/api/v3/movie")
	checkIntEqual(t, "StatusCode", upstream.StatusCode, http.StatusBadGateway)
	checkStringEqual(t, "Body", upstream.Body, "bad gateway")
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "authentication", err: fmt.Errorf("overseerr: %w", ErrAuthentication), want: "authentication"},
		{name: "rate limited", err: fmt.Errorf("sonarr: %w", ErrRateLimited), want: "rate_limited"},
		{name: "not found", err: fmt.Errorf("radarr: %w", ErrNotFound), want: "not_found"},
		{name: "upstream", err: &UpstreamError{Service: "radarr", StatusCode: 500}, want: "upstream"},
		{name: "plain error", err: errors.New("boom"), want: "upstream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkStringEqual(t, "ErrorType", ErrorType(tt.err), tt.want)
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("wrapped: %w", ErrNotFound)) {
		t.Error("wrapped ErrNotFound should be detected")
	}
	if isNotFound(errors.New("other")) {
		t.Error("unrelated error should not be detected as not found")
	}
}
