// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/judgarr/internal/models"
)

func TestNewOverseerrClient(t *testing.T) {
	client := NewOverseerrClient("http://localhost:5055/", "test-api-key")

	if client == nil {
		t.Fatal("NewOverseerrClient returned nil")
	}

	// Trailing slash is trimmed so endpoint joins stay clean.
	checkStringEqual(t, "baseURL", client.baseURL, "http://localhost:5055")
	checkStringEqual(t, "apiKey", client.apiKey, "test-api-key")

	if client.httpClient == nil {
		t.Fatal("HTTP client not initialized")
	}
	if client.httpClient.Timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", client.httpClient.Timeout)
	}
}

func TestOverseerrClient_GetUserRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkStringEqual(t, "path", r.URL.Path, "/api/v1/user/42/requests")
		checkStringEqual(t, "X-Api-Key", r.Header.Get("X-Api-Key"), "test-key")
		checkStringEqual(t, "take", r.URL.Query().Get("take"), "10")
		checkStringEqual(t, "skip", r.URL.Query().Get("skip"), "5")
		checkStringEqual(t, "filter", r.URL.Query().Get("filter"), "pending")

		resp := models.OverseerrRequestsResponse{
			PageInfo: models.OverseerrPageInfo{Pages: 1, PageSize: 10, Results: 2, Page: 1},
			Results: []models.OverseerrRequest{
				{ID: 1, Media: models.OverseerrRequestMedia{MediaType: "movie", TmdbID: 550}},
				{ID: 2, Media: models.OverseerrRequestMedia{MediaType: "tv", TmdbID: 1399}},
			},
			PageSize: 10,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewOverseerrClient(server.URL, "test-key")

	page, err := client.GetUserRequests(context.Background(), "42", 10, 5, "pending")
	checkNoError(t, "GetUserRequests", err)

	checkIntEqual(t, "results", len(page.Results), 2)
	checkInt64Equal(t, "first request ID", page.Results[0].ID, 1)
	checkStringEqual(t, "second media type", page.Results[1].Media.MediaType, "tv")
}

// TestOverseerrClient_GetAllUserRequests_Pagination verifies the take/skip
// walk: full pages keep the walk going, the first short page ends it, and
// the union of pages comes back in order with no extra fetches afterward.
func TestOverseerrClient_GetAllUserRequests_Pagination(t *testing.T) {
	const fullPages = 3
	const lastPageLen = 7 // short page terminates the walk

	var fetches int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++

		skip, err := strconv.Atoi(r.URL.Query().Get("skip"))
		if err != nil {
			t.Errorf("bad skip value: %v", err)
		}
		if skip != (fetches-1)*overseerrPageSize {
			t.Errorf("fetch %d: expected skip %d, got %d", fetches, (fetches-1)*overseerrPageSize, skip)
		}

		n := overseerrPageSize
		if fetches > fullPages {
			n = lastPageLen
		}

		results := make([]models.OverseerrRequest, n)
		for i := range results {
			results[i] = models.OverseerrRequest{
				ID:        int64(skip + i + 1),
				Media:     models.OverseerrRequestMedia{MediaType: "movie", TmdbID: 100 + skip + i},
				CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			}
		}

		resp := models.OverseerrRequestsResponse{Results: results, PageSize: overseerrPageSize}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewOverseerrClient(server.URL, "test-key")

	all, err := client.GetAllUserRequests(context.Background(), "7", time.Time{}, time.Time{})
	checkNoError(t, "GetAllUserRequests", err)

	wantTotal := fullPages*overseerrPageSize + lastPageLen
	checkIntEqual(t, "total requests", len(all), wantTotal)
	checkIntEqual(t, "fetches", fetches, fullPages+1)

	for i, req := range all {
		if req.ID != int64(i+1) {
			t.Fatalf("request %d: expected ID %d, got %d", i, i+1, req.ID)
		}
	}
}

func TestOverseerrClient_GetAllUserRequests_EmptyFirstPage(t *testing.T) {
	var fetches int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		resp := models.OverseerrRequestsResponse{Results: nil, PageSize: overseerrPageSize}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewOverseerrClient(server.URL, "test-key")

	all, err := client.GetAllUserRequests(context.Background(), "7", time.Time{}, time.Time{})
	checkNoError(t, "GetAllUserRequests", err)

	checkIntEqual(t, "total requests", len(all), 0)
	checkIntEqual(t, "fetches", fetches, 1)
}

func TestOverseerrClient_GetAllUserRequests_WindowFilter(t *testing.T) {
	// Timestamps span the window edges; one carries a non-UTC offset that
	// still falls inside the window once normalized.
	inWindow := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	offsetInWindow := time.Date(2026, 8, 31, 1, 30, 0, 0, time.FixedZone("CEST", 2*3600)) // 23:30 UTC on Aug 30
	before := time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC)
	after := time.Date(2026, 9, 1, 0, 0, 1, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := models.OverseerrRequestsResponse{
			Results: []models.OverseerrRequest{
				{ID: 1, CreatedAt: before},
				{ID: 2, CreatedAt: inWindow},
				{ID: 3, CreatedAt: offsetInWindow},
				{ID: 4, CreatedAt: after},
			},
			PageSize: overseerrPageSize,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewOverseerrClient(server.URL, "test-key")

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	all, err := client.GetAllUserRequests(context.Background(), "7", start, end)
	checkNoError(t, "GetAllUserRequests", err)

	checkIntEqual(t, "filtered requests", len(all), 2)
	checkInt64Equal(t, "first kept ID", all[0].ID, 2)
	checkInt64Equal(t, "second kept ID", all[1].ID, 3)
}

func TestOverseerrClient_GetAllUsers_Pagination(t *testing.T) {
	var fetches int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		checkStringEqual(t, "path", r.URL.Path, "/api/v1/user")

		n := overseerrPageSize
		if fetches == 2 {
			n = 3
		}
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))

		results := make([]models.OverseerrUser, n)
		for i := range results {
			results[i] = models.OverseerrUser{ID: skip + i + 1, Email: fmt.Sprintf("user%d@example.com", skip+i+1)}
		}

		resp := models.OverseerrUsersResponse{Results: results, PageSize: overseerrPageSize}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewOverseerrClient(server.URL, "test-key")

	users, err := client.GetAllUsers(context.Background())
	checkNoError(t, "GetAllUsers", err)

	checkIntEqual(t, "total users", len(users), overseerrPageSize+3)
	checkIntEqual(t, "fetches", fetches, 2)
}

func TestOverseerrClient_GetUser_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		sentinel   error
	}{
		{name: "unauthorized", statusCode: http.StatusUnauthorized, sentinel: ErrAuthentication},
		{name: "rate limited", statusCode: http.StatusTooManyRequests, sentinel: ErrRateLimited},
		{name: "missing user", statusCode: http.StatusNotFound, sentinel: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := NewOverseerrClient(server.URL, "test-key")

			_, err := client.GetUser(context.Background(), "42")
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("status %d: expected errors.Is(%v), got %v", tt.statusCode, tt.sentinel, err)
			}
		})
	}
}

func TestOverseerrClient_UpdateUserQuota(t *testing.T) {
	limit := 90
	days := 7

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkStringEqual(t, "method", r.Method, http.MethodPut)
		checkStringEqual(t, "path", r.URL.Path, "/api/v1/user/42/settings/quota")
		checkStringEqual(t, "Content-Type", r.Header.Get("Content-Type"), "application/json")

		var body models.OverseerrQuotaSettings
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if body.MovieQuotaLimit == nil || *body.MovieQuotaLimit != limit {
			t.Errorf("movieQuotaLimit: expected %d, got %v", limit, body.MovieQuotaLimit)
		}
		if body.TVQuotaLimit == nil || *body.TVQuotaLimit != limit {
			t.Errorf("tvQuotaLimit: expected %d, got %v", limit, body.TVQuotaLimit)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()

	client := NewOverseerrClient(server.URL, "test-key")

	err := client.UpdateUserQuota(context.Background(), "42", models.OverseerrQuotaSettings{
		MovieQuotaLimit: &limit,
		MovieQuotaDays:  &days,
		TVQuotaLimit:    &limit,
		TVQuotaDays:     &days,
	})
	checkNoError(t, "UpdateUserQuota", err)
}
