// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
radarr.go - Radarr REST API Client

Client for the movie library manager. Movies are primarily addressed by
their TMDB ID (the broker's global identifier); Radarr answers
GET /movie?tmdbId= with an array of zero or one matches.

API Reference: https://radarr.video/docs/api/
*/

package sync

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tomtom215/judgarr/internal/models"
)

// radarrMovieEndpoint is the movie resource path.
const radarrMovieEndpoint = "/api/v3/movie"

// RadarrClientInterface defines the movie library operations Judgarr
// consumes.
type RadarrClientInterface interface {
	GetMovie(ctx context.Context, movieID int64) (*models.RadarrMovie, error)
	GetMovieByTmdbID(ctx context.Context, tmdbID int) (*models.RadarrMovie, error)
	MovieSize(ctx context.Context, movieID int64, tmdbID int) (int64, error)
}

// Ensure RadarrClient implements RadarrClientInterface
var _ RadarrClientInterface = (*RadarrClient)(nil)

// RadarrClient provides access to the Radarr REST API.
type RadarrClient struct {
	client
}

// NewRadarrClient creates a new Radarr API client.
func NewRadarrClient(baseURL, apiKey string) *RadarrClient {
	return &RadarrClient{client: newClient("radarr", baseURL, apiKey)}
}

// GetMovie fetches a movie by its Radarr library ID.
func (c *RadarrClient) GetMovie(ctx context.Context, movieID int64) (*models.RadarrMovie, error) {
	endpoint := fmt.Sprintf("%s/%d", radarrMovieEndpoint, movieID)
	return getJSON[models.RadarrMovie](ctx, &c.client, endpoint, nil)
}

// GetMovieByTmdbID fetches a movie by the broker's global TMDB identifier.
// Radarr returns an array with at most one match; an empty array maps to
// ErrNotFound.
func (c *RadarrClient) GetMovieByTmdbID(ctx context.Context, tmdbID int) (*models.RadarrMovie, error) {
	query := url.Values{}
	query.Set("tmdbId", strconv.Itoa(tmdbID))

	movies, err := getJSON[[]models.RadarrMovie](ctx, &c.client, radarrMovieEndpoint, query)
	if err != nil {
		return nil, err
	}
	if len(*movies) == 0 {
		return nil, fmt.Errorf("radarr movie tmdbId=%d: %w", tmdbID, ErrNotFound)
	}

	return &(*movies)[0], nil
}

// MovieSize returns the on-disk bytes for a movie, zero if it has no file
// yet. The library-specific lookup is tried first when movieID is known;
// a miss falls back to the global-identifier query.
func (c *RadarrClient) MovieSize(ctx context.Context, movieID int64, tmdbID int) (int64, error) {
	if movieID > 0 {
		movie, err := c.GetMovie(ctx, movieID)
		if err == nil {
			return movie.SizeOnDisk, nil
		}
		if !isNotFound(err) {
			return 0, err
		}
	}

	movie, err := c.GetMovieByTmdbID(ctx, tmdbID)
	if err != nil {
		return 0, err
	}
	return movie.SizeOnDisk, nil
}
