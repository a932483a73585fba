// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
overseerr.go - Overseerr REST API Client

Client for the request broker. Paginated listings use Overseerr's take/skip
scheme; GetAllUserRequests walks pages strictly in order because the
termination condition (a short page) depends on sequential discovery.

API Reference: https://api-docs.overseerr.dev/
*/

package sync

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/tomtom215/judgarr/internal/models"
)

// overseerrAPIPrefix is the versioned API prefix for all broker endpoints.
const overseerrAPIPrefix = "/api/v1"

// overseerrPageSize is the take value used for paginated listings.
const overseerrPageSize = 20

// OverseerrClientInterface defines the broker operations the rest of
// Judgarr consumes. Both OverseerrClient and CircuitBreakerClient
// implement it.
type OverseerrClientInterface interface {
	GetUserRequests(ctx context.Context, userID string, take, skip int, status string) (*models.OverseerrRequestsResponse, error)
	GetAllUserRequests(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.OverseerrRequest, error)
	GetUser(ctx context.Context, userID string) (*models.OverseerrUser, error)
	GetAllUsers(ctx context.Context) ([]models.OverseerrUser, error)
	GetUserQuota(ctx context.Context, userID string) (*models.OverseerrUserQuota, error)
	UpdateUserQuota(ctx context.Context, userID string, settings models.OverseerrQuotaSettings) error
	GetSettings(ctx context.Context) (*models.OverseerrSettings, error)
}

// Ensure OverseerrClient implements OverseerrClientInterface
var _ OverseerrClientInterface = (*OverseerrClient)(nil)

// OverseerrClient provides access to the Overseerr REST API.
type OverseerrClient struct {
	client
}

// NewOverseerrClient creates a new Overseerr API client.
func NewOverseerrClient(baseURL, apiKey string) *OverseerrClient {
	return &OverseerrClient{client: newClient("overseerr", baseURL, apiKey)}
}

// GetUserRequests fetches one page of a user's requests. status filters by
// the broker's request status when non-empty.
func (c *OverseerrClient) GetUserRequests(ctx context.Context, userID string, take, skip int, status string) (*models.OverseerrRequestsResponse, error) {
	query := url.Values{}
	query.Set("take", strconv.Itoa(take))
	query.Set("skip", strconv.Itoa(skip))
	if status != "" {
		query.Set("filter", status)
	}

	endpoint := fmt.Sprintf("%s/user/%s/requests", overseerrAPIPrefix, url.PathEscape(userID))
	return getJSON[models.OverseerrRequestsResponse](ctx, &c.client, endpoint, query)
}

// GetAllUserRequests fetches every request for a user within the window,
// walking take/skip pages until a page comes back short or empty. Request
// timestamps are normalized to UTC before window filtering.
func (c *OverseerrClient) GetAllUserRequests(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.OverseerrRequest, error) {
	var all []models.OverseerrRequest
	skip := 0

	for {
		page, err := c.GetUserRequests(ctx, userID, overseerrPageSize, skip, "")
		if err != nil {
			return nil, err
		}
		if len(page.Results) == 0 {
			break
		}

		all = append(all, page.Results...)

		pageSize := page.PageSize
		if pageSize <= 0 {
			pageSize = overseerrPageSize
		}
		// A short page means this was the last one.
		if len(page.Results) < pageSize {
			break
		}

		skip += pageSize
	}

	return filterRequestsByWindow(all, startDate, endDate), nil
}

// filterRequestsByWindow keeps requests whose UTC creation time falls
// within [startDate, endDate]. Zero bounds disable that side of the filter.
func filterRequestsByWindow(requests []models.OverseerrRequest, startDate, endDate time.Time) []models.OverseerrRequest {
	if startDate.IsZero() && endDate.IsZero() {
		return requests
	}

	filtered := make([]models.OverseerrRequest, 0, len(requests))
	for _, req := range requests {
		created := req.CreatedAt.UTC()
		if !startDate.IsZero() && created.Before(startDate.UTC()) {
			continue
		}
		if !endDate.IsZero() && created.After(endDate.UTC()) {
			continue
		}
		filtered = append(filtered, req)
	}

	return filtered
}

// GetUser fetches a single broker user.
func (c *OverseerrClient) GetUser(ctx context.Context, userID string) (*models.OverseerrUser, error) {
	endpoint := fmt.Sprintf("%s/user/%s", overseerrAPIPrefix, url.PathEscape(userID))
	return getJSON[models.OverseerrUser](ctx, &c.client, endpoint, nil)
}

// GetAllUsers fetches every broker user, handling pagination with the same
// short-page termination as GetAllUserRequests.
func (c *OverseerrClient) GetAllUsers(ctx context.Context) ([]models.OverseerrUser, error) {
	var all []models.OverseerrUser
	skip := 0

	for {
		query := url.Values{}
		query.Set("take", strconv.Itoa(overseerrPageSize))
		query.Set("skip", strconv.Itoa(skip))

		page, err := getJSON[models.OverseerrUsersResponse](ctx, &c.client, overseerrAPIPrefix+"/user", query)
		if err != nil {
			return nil, err
		}
		if len(page.Results) == 0 {
			break
		}

		all = append(all, page.Results...)

		pageSize := page.PageSize
		if pageSize <= 0 {
			pageSize = overseerrPageSize
		}
		if len(page.Results) < pageSize {
			break
		}

		skip += pageSize
	}

	return all, nil
}

// GetUserQuota fetches a user's current movie and TV request quotas.
func (c *OverseerrClient) GetUserQuota(ctx context.Context, userID string) (*models.OverseerrUserQuota, error) {
	endpoint := fmt.Sprintf("%s/user/%s/quota", overseerrAPIPrefix, url.PathEscape(userID))
	return getJSON[models.OverseerrUserQuota](ctx, &c.client, endpoint, nil)
}

// UpdateUserQuota pushes new quota limits to the broker. Nil fields in
// settings leave the corresponding kind untouched.
func (c *OverseerrClient) UpdateUserQuota(ctx context.Context, userID string, settings models.OverseerrQuotaSettings) error {
	endpoint := fmt.Sprintf("%s/user/%s/settings/quota", overseerrAPIPrefix, url.PathEscape(userID))
	_, err := putJSON[models.OverseerrQuotaSettings](ctx, &c.client, endpoint, settings)
	return err
}

// GetSettings fetches the broker's main settings.
func (c *OverseerrClient) GetSettings(ctx context.Context) (*models.OverseerrSettings, error) {
	return getJSON[models.OverseerrSettings](ctx, &c.client, overseerrAPIPrefix+"/settings/main", nil)
}
