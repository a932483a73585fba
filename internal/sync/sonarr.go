// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
sonarr.go - Sonarr REST API Client

Client for the TV library manager. Series are addressed by TVDB ID, which
Judgarr resolves from the broker's TMDB ID via the correlation service;
GET /series?tvdbId= answers with an array of zero or one matches.

API Reference: https://sonarr.tv/docs/api/
*/

package sync

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tomtom215/judgarr/internal/models"
)

const (
	sonarrSeriesEndpoint  = "/api/v3/series"
	sonarrEpisodeEndpoint = "/api/v3/episode"
)

// SonarrClientInterface defines the TV library operations Judgarr
// consumes.
type SonarrClientInterface interface {
	GetSeries(ctx context.Context, seriesID int64) (*models.SonarrSeries, error)
	GetSeriesByTvdbID(ctx context.Context, tvdbID int) (*models.SonarrSeries, error)
	GetEpisodes(ctx context.Context, seriesID int64) ([]models.SonarrEpisode, error)
	SeriesSize(ctx context.Context, tvdbID int) (int64, error)
	SeasonSize(ctx context.Context, tvdbID, seasonNumber int) (int64, error)
}

// Ensure SonarrClient implements SonarrClientInterface
var _ SonarrClientInterface = (*SonarrClient)(nil)

// SonarrClient provides access to the Sonarr REST API.
type SonarrClient struct {
	client
}

// NewSonarrClient creates a new Sonarr API client.
func NewSonarrClient(baseURL, apiKey string) *SonarrClient {
	return &SonarrClient{client: newClient("sonarr", baseURL, apiKey)}
}

// GetSeries fetches a series by its Sonarr library ID.
func (c *SonarrClient) GetSeries(ctx context.Context, seriesID int64) (*models.SonarrSeries, error) {
	endpoint := fmt.Sprintf("%s/%d", sonarrSeriesEndpoint, seriesID)
	return getJSON[models.SonarrSeries](ctx, &c.client, endpoint, nil)
}

// GetSeriesByTvdbID fetches a series by its TVDB identifier. Sonarr returns
// an array with at most one match; an empty array maps to ErrNotFound.
func (c *SonarrClient) GetSeriesByTvdbID(ctx context.Context, tvdbID int) (*models.SonarrSeries, error) {
	query := url.Values{}
	query.Set("tvdbId", strconv.Itoa(tvdbID))

	series, err := getJSON[[]models.SonarrSeries](ctx, &c.client, sonarrSeriesEndpoint, query)
	if err != nil {
		return nil, err
	}
	if len(*series) == 0 {
		return nil, fmt.Errorf("sonarr series tvdbId=%d: %w", tvdbID, ErrNotFound)
	}

	return &(*series)[0], nil
}

// GetEpisodes fetches all episodes of a series.
func (c *SonarrClient) GetEpisodes(ctx context.Context, seriesID int64) ([]models.SonarrEpisode, error) {
	query := url.Values{}
	query.Set("seriesId", strconv.FormatInt(seriesID, 10))

	episodes, err := getJSON[[]models.SonarrEpisode](ctx, &c.client, sonarrEpisodeEndpoint, query)
	if err != nil {
		return nil, err
	}
	return *episodes, nil
}

// SeriesSize returns the total on-disk bytes for a series, zero if nothing
// has been downloaded yet.
func (c *SonarrClient) SeriesSize(ctx context.Context, tvdbID int) (int64, error) {
	series, err := c.GetSeriesByTvdbID(ctx, tvdbID)
	if err != nil {
		return 0, err
	}
	return series.SizeOnDisk, nil
}

// SeasonSize returns the on-disk bytes for one season of a series. A season
// number the series does not carry maps to ErrNotFound; a season without a
// statistics object counts as zero bytes.
func (c *SonarrClient) SeasonSize(ctx context.Context, tvdbID, seasonNumber int) (int64, error) {
	series, err := c.GetSeriesByTvdbID(ctx, tvdbID)
	if err != nil {
		return 0, err
	}

	stats, err := seasonStatistics(series, seasonNumber)
	if err != nil {
		return 0, err
	}
	if stats == nil {
		return 0, nil
	}
	return stats.SizeOnDisk, nil
}

// seasonStatistics locates the statistics object for seasonNumber within
// series. The statistics pointer may be nil even for a known season.
func seasonStatistics(series *models.SonarrSeries, seasonNumber int) (*models.SonarrSeasonStatistics, error) {
	for i := range series.Seasons {
		if series.Seasons[i].SeasonNumber == seasonNumber {
			return series.Seasons[i].Statistics, nil
		}
	}
	return nil, fmt.Errorf("sonarr series %q season %d: %w", series.Title, seasonNumber, ErrNotFound)
}
