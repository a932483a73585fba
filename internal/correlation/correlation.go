// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
correlation.go - TMDB Identifier Correlation Service

Maps the broker's global TMDB IDs to the identifiers other services need,
chiefly the TVDB ID that Sonarr is keyed by. Resolutions hit TMDB's
external-IDs endpoints and are cached in memory for the process lifetime:
identifiers essentially never change after a title is created, so there is
no TTL. Failures are NOT cached — a lookup that fails is simply retried on
the next call, which keeps transient TMDB hiccups from poisoning a title
for the rest of the process. Do not add expiry or negative caching here.

API Reference: https://developer.themoviedb.org/reference/tv-series-external-ids
*/

package correlation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/judgarr/internal/logging"
	"github.com/tomtom215/judgarr/internal/metrics"
	"github.com/tomtom215/judgarr/internal/models"
)

// tmdbBaseURL is the TMDB API v3 root.
const tmdbBaseURL = "https://api.themoviedb.org/3"

// externalIDsResponse is the wire shape of the external-IDs endpoints.
// TVDB IDs are absent for titles TVDB does not carry.
type externalIDsResponse struct {
	ID     int    `json:"id"`
	TvdbID *int   `json:"tvdb_id,omitempty"`
	ImdbID string `json:"imdb_id,omitempty"`
}

// Resolver looks up cross-reference identifiers for TMDB titles.
type Resolver interface {
	ResolveTV(ctx context.Context, tmdbID int) *models.MediaIdentifiers
	ResolveMovie(ctx context.Context, tmdbID int) *models.MediaIdentifiers
}

// Ensure Service implements Resolver
var _ Resolver = (*Service)(nil)

// Service resolves identifiers against TMDB with a process-lifetime cache.
// Concurrent resolutions of the same key may issue duplicate upstream
// calls; the endpoints are idempotent and last-write-wins into the cache
// is harmless.
type Service struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	mu      sync.RWMutex
	tvCache map[int]*models.MediaIdentifiers
	mvCache map[int]*models.MediaIdentifiers
}

// NewService creates a correlation service. apiKey may be empty: TMDB
// answers best-effort unauthenticated external-IDs requests.
func NewService(apiKey string) *Service {
	return &Service{
		apiKey:  apiKey,
		baseURL: tmdbBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		tvCache: make(map[int]*models.MediaIdentifiers),
		mvCache: make(map[int]*models.MediaIdentifiers),
	}
}

// newServiceForURL is the test seam: same service, different endpoint root.
func newServiceForURL(apiKey, baseURL string) *Service {
	s := NewService(apiKey)
	s.baseURL = baseURL
	return s
}

// ResolveTV maps a TV title's TMDB ID to its TVDB and IMDB identifiers.
// Returns nil when TMDB cannot be reached or answers non-200; the miss is
// not cached and the next call retries.
func (s *Service) ResolveTV(ctx context.Context, tmdbID int) *models.MediaIdentifiers {
	return s.resolve(ctx, tmdbID, "tv", s.tvCache)
}

// ResolveMovie maps a movie's TMDB ID to its IMDB identifier. Movies carry
// no TVDB ID; Radarr is queried by TMDB ID directly, so this exists for
// completeness of the identifier record.
func (s *Service) ResolveMovie(ctx context.Context, tmdbID int) *models.MediaIdentifiers {
	return s.resolve(ctx, tmdbID, "movie", s.mvCache)
}

func (s *Service) resolve(ctx context.Context, tmdbID int, kind string, cache map[int]*models.MediaIdentifiers) *models.MediaIdentifiers {
	s.mu.RLock()
	cached, ok := cache[tmdbID]
	s.mu.RUnlock()
	if ok {
		metrics.CorrelationCacheHits.Inc()
		return cached
	}
	metrics.CorrelationCacheMisses.Inc()

	ids, err := s.fetchExternalIDs(ctx, kind, tmdbID)
	if err != nil {
		logging.Warn().Err(err).Int("tmdb_id", tmdbID).Str("kind", kind).Msg("Identifier correlation failed")
		return nil
	}

	resolved := &models.MediaIdentifiers{
		TmdbID: tmdbID,
		TvdbID: ids.TvdbID,
		ImdbID: ids.ImdbID,
	}

	s.mu.Lock()
	cache[tmdbID] = resolved
	s.mu.Unlock()

	return resolved
}

// fetchExternalIDs calls GET /{kind}/{tmdbID}/external_ids.
func (s *Service) fetchExternalIDs(ctx context.Context, kind string, tmdbID int) (*externalIDsResponse, error) {
	endpoint := fmt.Sprintf("%s/%s/%d/external_ids", s.baseURL, kind, tmdbID)
	if s.apiKey != "" {
		query := url.Values{}
		query.Set("api_key", s.apiKey)
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("tmdb external_ids: create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues("tmdb", "/external_ids").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordAPIError("tmdb", "/external_ids", "upstream")
		return nil, fmt.Errorf("tmdb external_ids %s/%d: %w", kind, tmdbID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordAPIError("tmdb", "/external_ids", "upstream")
		return nil, fmt.Errorf("tmdb external_ids %s/%d: unexpected status %d", kind, tmdbID, resp.StatusCode)
	}

	var ids externalIDsResponse
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("tmdb external_ids %s/%d: failed to decode response: %w", kind, tmdbID, err)
	}

	return &ids, nil
}

// CacheSize reports how many identifier records are held, for diagnostics.
func (s *Service) CacheSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tvCache) + len(s.mvCache)
}
