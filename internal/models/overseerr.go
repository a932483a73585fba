// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
overseerr.go - Overseerr API Wire Models

Response shapes for the Overseerr request broker endpoints consumed by the
sync client:

  - GET /api/v1/user/{id}/requests  (paginated via take/skip)
  - GET /api/v1/user/{id}
  - GET /api/v1/user                (paginated)
  - GET /api/v1/user/{id}/quota
  - PUT /api/v1/user/{id}/settings/quota
  - GET /api/v1/settings/main

API Reference: https://api-docs.overseerr.dev/
*/

package models

import "time"

// OverseerrPageInfo carries Overseerr's pagination metadata.
type OverseerrPageInfo struct {
	Pages    int `json:"pages"`
	PageSize int `json:"pageSize"`
	Results  int `json:"results"`
	Page     int `json:"page"`
}

// OverseerrRequestMedia identifies the media item behind a request.
// TmdbID is the broker's global identifier across both media kinds.
type OverseerrRequestMedia struct {
	ID        int    `json:"id"`
	MediaType string `json:"mediaType"` // "movie" or "tv"
	TmdbID    int    `json:"tmdbId"`
	TvdbID    *int   `json:"tvdbId,omitempty"`
	Status    int    `json:"status"`
}

// OverseerrRequest is a single media request as reported by the broker.
// CreatedAt is an ISO-8601 Z-suffixed timestamp, normalized to UTC by the
// client before window filtering.
type OverseerrRequest struct {
	ID          int64                 `json:"id"`
	Status      int                   `json:"status"`
	Media       OverseerrRequestMedia `json:"media"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
	RequestedBy OverseerrUser         `json:"requestedBy"`
}

// OverseerrRequestsResponse is one page of a user's requests.
type OverseerrRequestsResponse struct {
	PageInfo OverseerrPageInfo  `json:"pageInfo"`
	Results  []OverseerrRequest `json:"results"`
	PageSize int                `json:"pageSize"`
}

// OverseerrUser is a broker user account.
type OverseerrUser struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username,omitempty"`
	PlexUsername string    `json:"plexUsername,omitempty"`
	DisplayName  string    `json:"displayName,omitempty"`
	RequestCount int       `json:"requestCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Name returns the best available display name for the user.
func (u *OverseerrUser) Name() string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.Username != "":
		return u.Username
	case u.PlexUsername != "":
		return u.PlexUsername
	default:
		return u.Email
	}
}

// OverseerrUsersResponse is one page of the user listing.
type OverseerrUsersResponse struct {
	PageInfo OverseerrPageInfo `json:"pageInfo"`
	Results  []OverseerrUser   `json:"results"`
	PageSize int               `json:"pageSize"`
}

// OverseerrQuota describes one media kind's quota standing.
type OverseerrQuota struct {
	Days       int  `json:"days"`
	Limit      int  `json:"limit"`
	Used       int  `json:"used"`
	Remaining  *int `json:"remaining,omitempty"`
	Restricted bool `json:"restricted"`
}

// OverseerrUserQuota is the response of GET /user/{id}/quota.
type OverseerrUserQuota struct {
	Movie OverseerrQuota `json:"movie"`
	TV    OverseerrQuota `json:"tv"`
}

// OverseerrQuotaSettings is the body of PUT /user/{id}/settings/quota.
// Nil fields are omitted so partial updates leave the other kind untouched.
type OverseerrQuotaSettings struct {
	MovieQuotaLimit *int `json:"movieQuotaLimit,omitempty"`
	MovieQuotaDays  *int `json:"movieQuotaDays,omitempty"`
	TVQuotaLimit    *int `json:"tvQuotaLimit,omitempty"`
	TVQuotaDays     *int `json:"tvQuotaDays,omitempty"`
}

// OverseerrSettings is the subset of GET /settings/main Judgarr reads.
type OverseerrSettings struct {
	AppTitle          string              `json:"applicationTitle"`
	ApplicationURL    string              `json:"applicationUrl"`
	DefaultQuotas     *OverseerrUserQuota `json:"defaultQuotas,omitempty"`
	HideAvailable     bool                `json:"hideAvailable"`
	PartialRequestsOn bool                `json:"partialRequestsEnabled"`
}
