// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
client.go - Shared REST Client Plumbing

Common request execution for the Overseerr, Radarr, and Sonarr clients:
URL construction, X-Api-Key header auth, per-client rate limiting, status
classification into the error taxonomy, and generic JSON decoding.

Requests are single-shot. Retry, backoff, and scheduling belong to the
caller, not here.
*/

package sync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/judgarr/internal/metrics"
)

// maxErrorBodyBytes caps how much of an error response body is kept for
// diagnostics.
const maxErrorBodyBytes = 4096

// client is the shared REST plumbing embedded by the three service clients.
type client struct {
	service    string // label for errors and metrics
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// newClient builds the shared plumbing. The limiter smooths bursts against
// upstream services during batch check cycles; it is not a retry mechanism.
func newClient(service, baseURL, apiKey string) client {
	return client{
		service: service,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

// do executes a single request and returns the response body on 2xx.
// Non-2xx statuses are converted through the error taxonomy.
func (c *client) do(ctx context.Context, method, endpoint string, query url.Values, body any) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s rate limiter: %w", c.service, err)
	}

	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: failed to encode request body: %w", c.service, endpoint, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s %s: create request failed: %w", c.service, endpoint, err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(c.service, endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordAPIError(c.service, endpoint, "upstream")
		return nil, &UpstreamError{Service: c.service, Operation: endpoint, Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		errBody := readBodyForError(resp.Body)
		err := statusToError(c.service, endpoint, resp.StatusCode, errBody)
		metrics.RecordAPIError(c.service, endpoint, ErrorType(err))
		return nil, err
	}

	return resp.Body, nil
}

// readBodyForError reads a bounded prefix of an error response body.
func readBodyForError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil {
		return "(failed to read body)"
	}
	return string(data)
}

// getJSON executes a GET and decodes the response into T.
func getJSON[T any](ctx context.Context, c *client, endpoint string, query url.Values) (*T, error) {
	body, err := c.do(ctx, http.MethodGet, endpoint, query, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	var result T
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s %s: failed to decode response: %w", c.service, endpoint, err)
	}

	return &result, nil
}

// putJSON executes a PUT with a JSON body and decodes the response into T.
func putJSON[T any](ctx context.Context, c *client, endpoint string, reqBody any) (*T, error) {
	body, err := c.do(ctx, http.MethodPut, endpoint, nil, reqBody)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	var result T
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s %s: failed to decode response: %w", c.service, endpoint, err)
	}

	return &result, nil
}
