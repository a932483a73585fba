// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRequestLimit is the baseline Overseerr request limit applied to
// unpunished users.
const DefaultRequestLimit = 100

// MinRequestLimit is the floor below which punishment reductions never push
// a user's persisted request limit.
const MinRequestLimit = 5

// Media types as reported by the Overseerr API.
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// Request status annotations. Failed lookups overwrite the status with a
// descriptive failure string, which is how callers distinguish "excluded
// from the total" from "confirmed zero bytes".
const (
	// RequestStatusPending marks a locally recorded request whose size
	// has not been resolved yet.
	RequestStatusPending = "pending"

	// RequestStatusResolved marks a request whose on-disk size was
	// successfully looked up and counted.
	RequestStatusResolved = "resolved"

	// RequestStatusCorrelationFailed marks a TV request whose TVDB
	// identifier could not be resolved. Excluded from totals.
	RequestStatusCorrelationFailed = "correlation_failed"

	// RequestStatusLookupFailed marks a request whose library size lookup
	// failed. Excluded from totals.
	RequestStatusLookupFailed = "lookup_failed"
)

// UserRequest is a media request observed from the broker or recorded
// locally. SizeBytes is mutable: it starts at zero and is updated once the
// on-disk size has been resolved, with prior values kept in the size history
// audit table.
type UserRequest struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	MediaID     string    `json:"media_id"` // TMDB ID as a string
	MediaType   string    `json:"media_type"`
	RequestDate time.Time `json:"request_date"`
	SizeBytes   int64     `json:"size_bytes"`
	Status      string    `json:"status"`
}

// RequestSizeObservation is one append-only size measurement for a
// request. Sizes grow over time as quality upgrades land or seasons fill
// in, and the history keeps that growth auditable.
type RequestSizeObservation struct {
	RequestID  int64     `json:"request_id"`
	SizeBytes  int64     `json:"size_bytes"`
	ObservedAt time.Time `json:"observed_at"`
}

// UserStats is the per-user aggregate row owned by the database layer.
// PunishmentLevel and CooldownDays must mirror the currently active
// UserPunishment, or be zero when none exists.
type UserStats struct {
	UserID              string          `json:"user_id"`
	Username            string          `json:"username"`
	TotalDataUsage      int64           `json:"total_data_usage"`
	TotalRequests       int             `json:"total_requests"`
	PunishmentLevel     PunishmentLevel `json:"punishment_level"`
	CooldownDays        int             `json:"cooldown_days"`
	RequestLimit        int             `json:"request_limit"`
	CurrentPunishmentID *uuid.UUID      `json:"current_punishment_id,omitempty"`
	LastRequestDate     *time.Time      `json:"last_request_date,omitempty"`
}

// UserData is an ephemeral snapshot produced by request pattern analysis.
// It is never persisted.
type UserData struct {
	UserID           string    `json:"user_id"`
	TotalRequests    int       `json:"total_requests"`
	RequestFrequency float64   `json:"request_frequency"` // requests per day
	MovieRequests    int       `json:"movie_requests"`
	TVRequests       int       `json:"tv_requests"`
	LastProcessed    time.Time `json:"last_processed"`
}

// UserStatus assembles a user's current standing for display and for
// feeding the punishment calculator.
type UserStatus struct {
	UserID            string          `json:"user_id"`
	TotalRequests     int             `json:"total_requests"`
	TotalDataUsage    int64           `json:"total_data_usage"`
	CurrentPunishment *UserPunishment `json:"current_punishment,omitempty"`
	LastRequestDate   *time.Time      `json:"last_request_date,omitempty"`
}

// IsPunished reports whether an active, unexpired punishment exists.
// Expiry is checked here, at read time; any status read is the enforcement
// point for lapsed punishments.
func (s *UserStatus) IsPunished() bool {
	if s.CurrentPunishment == nil {
		return false
	}
	return s.CurrentPunishment.IsActive && time.Now().Before(s.CurrentPunishment.EndDate)
}

// RemainingCooldownDays returns whole days left on the active punishment,
// zero when unpunished.
func (s *UserStatus) RemainingCooldownDays() int {
	if !s.IsPunished() || s.CurrentPunishment == nil {
		return 0
	}
	days := int(time.Until(s.CurrentPunishment.EndDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// CurrentRequestLimit computes the live request limit: the default baseline
// minus the active punishment's reduction, floored at zero. Unpunished users
// always get the full baseline regardless of the persisted request_limit
// column; the persisted value is only used for quota push-down.
func (s *UserStatus) CurrentRequestLimit() int {
	if !s.IsPunished() || s.CurrentPunishment == nil {
		return DefaultRequestLimit
	}
	limit := DefaultRequestLimit - s.CurrentPunishment.RequestReduction
	if limit < 0 {
		return 0
	}
	return limit
}

// MediaIdentifiers maps a TMDB ID to the identifiers other services need.
// Immutable once resolved; cached for the process lifetime.
type MediaIdentifiers struct {
	TmdbID int    `json:"tmdb_id"`
	TvdbID *int   `json:"tvdb_id,omitempty"`
	ImdbID string `json:"imdb_id,omitempty"`
}
