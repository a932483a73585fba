// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
aggregator.go - Size Aggregation Pipeline

Turns a user and a date window into a byte total: fetches the user's
broker requests, resolves each one's on-disk size from the matching
library manager, and sums the successes. Partial failure is tolerated by
contract — a request whose lookup fails is annotated with a failure
status and EXCLUDED from the total (not counted as zero), and never
aborts the batch. Callers distinguishing "zero usage" from "nothing
resolvable" must inspect per-request statuses, not just the total.
*/

package tracking

import (
	"context"
	"strconv"
	"time"

	"github.com/tomtom215/judgarr/internal/correlation"
	"github.com/tomtom215/judgarr/internal/logging"
	"github.com/tomtom215/judgarr/internal/metrics"
	"github.com/tomtom215/judgarr/internal/models"
	syncclient "github.com/tomtom215/judgarr/internal/sync"
)

// RequestStore persists observed requests and their size history. Nil
// disables persistence (pure aggregation).
type RequestStore interface {
	UpsertRequest(ctx context.Context, req *models.UserRequest) error
}

// Aggregator resolves per-user data usage over a window.
type Aggregator struct {
	overseerr syncclient.OverseerrClientInterface
	radarr    syncclient.RadarrClientInterface
	sonarr    syncclient.SonarrClientInterface
	resolver  correlation.Resolver
	store     RequestStore
}

// NewAggregator wires the size aggregation pipeline. store may be nil.
func NewAggregator(
	overseerr syncclient.OverseerrClientInterface,
	radarr syncclient.RadarrClientInterface,
	sonarr syncclient.SonarrClientInterface,
	resolver correlation.Resolver,
	store RequestStore,
) *Aggregator {
	return &Aggregator{
		overseerr: overseerr,
		radarr:    radarr,
		sonarr:    sonarr,
		resolver:  resolver,
		store:     store,
	}
}

// Aggregate returns the user's total resolved bytes in [start, end] and
// the annotated request list for audit. Zero requests in the window is a
// zero total and an empty list, not an error. Individual lookup failures
// annotate and exclude the request; only the broker listing itself failing
// aborts.
func (a *Aggregator) Aggregate(ctx context.Context, userID string, start, end time.Time) (int64, []models.UserRequest, error) {
	defer func(t time.Time) {
		metrics.AggregationDuration.Observe(time.Since(t).Seconds())
	}(time.Now())

	brokerRequests, err := a.overseerr.GetAllUserRequests(ctx, userID, start, end)
	if err != nil {
		return 0, nil, err
	}

	var total int64
	requests := make([]models.UserRequest, 0, len(brokerRequests))

	for _, br := range brokerRequests {
		req := models.UserRequest{
			ID:          br.ID,
			UserID:      userID,
			MediaID:     strconv.Itoa(br.Media.TmdbID),
			MediaType:   br.Media.MediaType,
			RequestDate: br.CreatedAt.UTC(),
		}

		size, status := a.resolveSize(ctx, br.Media.MediaType, br.Media.TmdbID, br.Media.TvdbID)
		req.Status = status
		if status == models.RequestStatusResolved {
			req.SizeBytes = size
			total += size
			metrics.AggregationRequestsProcessed.WithLabelValues(req.MediaType, "resolved").Inc()
		} else {
			metrics.AggregationRequestsProcessed.WithLabelValues(req.MediaType, "failed").Inc()
		}

		if a.store != nil {
			if err := a.store.UpsertRequest(ctx, &req); err != nil {
				logging.Warn().Err(err).Int64("request_id", req.ID).Msg("Failed to persist request")
			}
		}

		requests = append(requests, req)
	}

	return total, requests, nil
}

// resolveSize looks up one request's on-disk size. The returned status is
// RequestStatusResolved on success and a failure annotation otherwise;
// failures carry size 0 but are excluded from totals by the caller.
func (a *Aggregator) resolveSize(ctx context.Context, mediaType string, tmdbID int, knownTvdbID *int) (int64, string) {
	switch mediaType {
	case models.MediaTypeMovie:
		size, err := a.radarr.MovieSize(ctx, 0, tmdbID)
		if err != nil {
			logging.Debug().Err(err).Int("tmdb_id", tmdbID).Msg("Movie size lookup failed")
			return 0, models.RequestStatusLookupFailed
		}
		return size, models.RequestStatusResolved

	case models.MediaTypeTV:
		tvdbID := knownTvdbID
		if tvdbID == nil {
			ids := a.resolver.ResolveTV(ctx, tmdbID)
			if ids == nil || ids.TvdbID == nil {
				logging.Debug().Int("tmdb_id", tmdbID).Msg("TVDB correlation failed")
				return 0, models.RequestStatusCorrelationFailed
			}
			tvdbID = ids.TvdbID
		}

		size, err := a.sonarr.SeriesSize(ctx, *tvdbID)
		if err != nil {
			logging.Debug().Err(err).Int("tvdb_id", *tvdbID).Msg("Series size lookup failed")
			return 0, models.RequestStatusLookupFailed
		}
		return size, models.RequestStatusResolved

	default:
		logging.Debug().Str("media_type", mediaType).Int("tmdb_id", tmdbID).Msg("Unknown media type")
		return 0, models.RequestStatusLookupFailed
	}
}
