// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
radarr.go - Radarr API Wire Models

Movie library manager responses consumed by the sync client:

  - GET /api/v3/movie/{id}
  - GET /api/v3/movie?tmdbId=   (returns an array with 0 or 1 element)

API Reference: https://radarr.video/docs/api/
*/

package models

import "time"

// RadarrMovieFile describes the downloaded file backing a movie, when one
// exists.
type RadarrMovieFile struct {
	ID           int64     `json:"id"`
	MovieID      int64     `json:"movieId"`
	RelativePath string    `json:"relativePath"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"` // bytes
	DateAdded    time.Time `json:"dateAdded"`
}

// RadarrMovie is a movie record in the Radarr library. SizeOnDisk is zero
// until the movie has been downloaded.
type RadarrMovie struct {
	ID               int64            `json:"id"`
	Title            string           `json:"title"`
	OriginalTitle    string           `json:"originalTitle,omitempty"`
	Year             int              `json:"year"`
	SizeOnDisk       int64            `json:"sizeOnDisk"`
	Status           string           `json:"status"`
	Monitored        bool             `json:"monitored"`
	HasFile          bool             `json:"hasFile"`
	MovieFile        *RadarrMovieFile `json:"movieFile,omitempty"`
	Added            time.Time        `json:"added"`
	QualityProfileID int              `json:"qualityProfileId"`
	TmdbID           int              `json:"tmdbId"`
	ImdbID           string           `json:"imdbId,omitempty"`
}
