// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
sonarr.go - Sonarr API Wire Models

TV library manager responses consumed by the sync client:

  - GET /api/v3/series/{id}
  - GET /api/v3/series?tvdbId=  (returns an array with 0 or 1 element)
  - GET /api/v3/episode?seriesId=

Series records carry per-season statistics objects; a season's statistics
may be absent for seasons Sonarr has no files or metadata for.

API Reference: https://sonarr.tv/docs/api/
*/

package models

import "time"

// SonarrSeasonStatistics summarizes downloaded files for one season.
type SonarrSeasonStatistics struct {
	PreviousAiring    *time.Time `json:"previousAiring,omitempty"`
	SizeOnDisk        int64      `json:"sizeOnDisk"`
	EpisodeFileCount  int        `json:"episodeFileCount"`
	EpisodeCount      int        `json:"episodeCount"`
	TotalEpisodeCount int        `json:"totalEpisodeCount"`
	PercentOfEpisodes float64    `json:"percentOfEpisodes"`
}

// SonarrSeason is one season entry within a series record.
type SonarrSeason struct {
	SeasonNumber int                     `json:"seasonNumber"`
	Monitored    bool                    `json:"monitored"`
	Statistics   *SonarrSeasonStatistics `json:"statistics,omitempty"`
}

// SonarrSeries is a TV series in the Sonarr library. SizeOnDisk is the sum
// of all downloaded episode files across seasons.
type SonarrSeries struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	SortTitle        string         `json:"sortTitle"`
	Status           string         `json:"status"`
	Network          string         `json:"network,omitempty"`
	Monitored        bool           `json:"monitored"`
	QualityProfileID int            `json:"qualityProfileId"`
	SeasonFolder     bool           `json:"seasonFolder"`
	SizeOnDisk       int64          `json:"sizeOnDisk"`
	Seasons          []SonarrSeason `json:"seasons"`
	Path             string         `json:"path"`
	TvdbID           *int           `json:"tvdbId,omitempty"`
	Added            time.Time      `json:"added"`
}

// SonarrEpisode is a single episode, downloaded or not.
type SonarrEpisode struct {
	ID            int64      `json:"id"`
	SeriesID      int64      `json:"seriesId"`
	EpisodeFileID *int64     `json:"episodeFileId,omitempty"`
	SeasonNumber  int        `json:"seasonNumber"`
	EpisodeNumber int        `json:"episodeNumber"`
	Title         string     `json:"title"`
	AirDateUTC    *time.Time `json:"airDateUtc,omitempty"`
	Monitored     bool       `json:"monitored"`
	HasFile       bool       `json:"hasFile"`
	SizeOnDisk    int64      `json:"sizeOnDisk"`
}
