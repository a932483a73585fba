// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
manager.go - User Status and Administration

Assembles user standing for display and exposes the administrative
operations: status queries with lazy provisioning, punished-user listings
with lazy expiry, manual request recording, and request-limit
adjustments. Expiry is never swept in the background; every read through
this package is an enforcement point.
*/

package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/judgarr/internal/logging"
	"github.com/tomtom215/judgarr/internal/models"
	"github.com/tomtom215/judgarr/internal/punishments"
)

// ErrUserPunished rejects request recording for actively punished users.
var ErrUserPunished = errors.New("user has an active punishment")

// Store is the persistence surface the user manager reads and writes.
// Punishment rows themselves are read through the punishment manager so
// lazy expiry is applied on every path.
type Store interface {
	GetUserStats(ctx context.Context, userID string) (*models.UserStats, error)
	SaveUserStats(ctx context.Context, stats *models.UserStats) error
	GetPunishedUserStats(ctx context.Context) ([]models.UserStats, error)
	DeleteUserPunishments(ctx context.Context, userID string) (int64, error)
	UpsertRequest(ctx context.Context, req *models.UserRequest) error
	GetUserRequests(ctx context.Context, userID string, start, end time.Time) ([]models.UserRequest, error)
}

// PunishedUser pairs a punished user's stats with the punishment that
// holds them there.
type PunishedUser struct {
	Stats      models.UserStats      `json:"stats"`
	Punishment models.UserPunishment `json:"punishment"`
}

// Manager serves user status and administrative actions.
type Manager struct {
	store      Store
	punisher   *punishments.Manager
	quota      punishments.QuotaPusher // nil disables quota push-down
	isNotFound func(error) bool
	quotaDays  int
}

// NewManager wires a user manager. quota may be nil; isNotFound classifies
// the store's miss errors (stats and punishments alike).
func NewManager(store Store, punisher *punishments.Manager, quota punishments.QuotaPusher, isNotFound func(error) bool, quotaDays int) *Manager {
	return &Manager{
		store:      store,
		punisher:   punisher,
		quota:      quota,
		isNotFound: isNotFound,
		quotaDays:  quotaDays,
	}
}

// GetUserStatus assembles a user's current standing. A first query for an
// unknown user provisions a zeroed stats row rather than failing.
func (m *Manager) GetUserStatus(ctx context.Context, userID string) (*models.UserStatus, error) {
	stats, err := m.store.GetUserStats(ctx, userID)
	if err != nil {
		if m.isNotFound == nil || !m.isNotFound(err) {
			return nil, fmt.Errorf("get stats for user %s: %w", userID, err)
		}
		stats = &models.UserStats{UserID: userID, RequestLimit: models.DefaultRequestLimit}
		if err := m.store.SaveUserStats(ctx, stats); err != nil {
			return nil, fmt.Errorf("provision stats for user %s: %w", userID, err)
		}
		logging.Debug().Str("user_id", userID).Msg("Provisioned stats for unknown user")
	}

	status := &models.UserStatus{
		UserID:          userID,
		TotalRequests:   stats.TotalRequests,
		TotalDataUsage:  stats.TotalDataUsage,
		LastRequestDate: stats.LastRequestDate,
	}

	active, err := m.punisher.ActivePunishment(ctx, userID)
	if err != nil {
		return nil, err
	}
	status.CurrentPunishment = active

	// Most-recent-request scan: the stats column can lag behind rows
	// written by aggregation, so the requests table is authoritative.
	requests, err := m.store.GetUserRequests(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("list requests for user %s: %w", userID, err)
	}
	for i := range requests {
		d := requests[i].RequestDate
		if status.LastRequestDate == nil || d.After(*status.LastRequestDate) {
			status.LastRequestDate = &d
		}
	}

	return status, nil
}

// ResetUserStatus performs the full administrative reset: the active
// punishment is cleared, the punishment history purged, and the stats row
// zeroed back to the baseline. Idempotent and best-effort, matching the
// punishment manager's reset contract.
func (m *Manager) ResetUserStatus(ctx context.Context, userID, reason string) bool {
	ok := m.punisher.ResetPunishment(ctx, userID, reason)

	if _, err := m.store.DeleteUserPunishments(ctx, userID); err != nil {
		logging.Error().Err(err).Str("user_id", userID).Msg("Failed to purge punishment history")
		ok = false
	}

	stats, err := m.store.GetUserStats(ctx, userID)
	if err != nil {
		if m.isNotFound != nil && m.isNotFound(err) {
			return ok
		}
		logging.Error().Err(err).Str("user_id", userID).Msg("Failed to load stats during reset")
		return false
	}

	stats.TotalRequests = 0
	stats.TotalDataUsage = 0
	stats.PunishmentLevel = models.LevelNone
	stats.CooldownDays = 0
	stats.CurrentPunishmentID = nil
	stats.RequestLimit = models.DefaultRequestLimit
	stats.LastRequestDate = nil

	if err := m.store.SaveUserStats(ctx, stats); err != nil {
		logging.Error().Err(err).Str("user_id", userID).Msg("Failed to zero stats during reset")
		return false
	}

	logging.Info().Str("user_id", userID).Str("reason", reason).Msg("User fully reset")
	return ok
}

// ListPunishedUsers returns users with a currently unexpired active
// punishment. Rows whose punishment has lapsed since the last write are
// deactivated here and dropped from the listing.
func (m *Manager) ListPunishedUsers(ctx context.Context) ([]PunishedUser, error) {
	stats, err := m.store.GetPunishedUserStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list punished users: %w", err)
	}

	punished := make([]PunishedUser, 0, len(stats))

	for _, s := range stats {
		active, err := m.punisher.ActivePunishment(ctx, s.UserID)
		if err != nil {
			return nil, err
		}
		if active == nil {
			continue
		}
		punished = append(punished, PunishedUser{Stats: s, Punishment: *active})
	}

	return punished, nil
}

// AddRequest records a request locally. Actively punished users are
// rejected with ErrUserPunished; expired punishments do not block.
func (m *Manager) AddRequest(ctx context.Context, req *models.UserRequest) error {
	active, err := m.punisher.ActivePunishment(ctx, req.UserID)
	if err != nil {
		return err
	}
	if active != nil {
		return fmt.Errorf("user %s: %w", req.UserID, ErrUserPunished)
	}

	if req.Status == "" {
		req.Status = models.RequestStatusPending
	}
	if req.RequestDate.IsZero() {
		req.RequestDate = time.Now().UTC()
	}

	if err := m.store.UpsertRequest(ctx, req); err != nil {
		return fmt.Errorf("record request %d: %w", req.ID, err)
	}

	stats, err := m.store.GetUserStats(ctx, req.UserID)
	if err != nil {
		if m.isNotFound != nil && m.isNotFound(err) {
			return nil
		}
		return fmt.Errorf("get stats for user %s: %w", req.UserID, err)
	}
	stats.TotalRequests++
	d := req.RequestDate
	stats.LastRequestDate = &d
	if err := m.store.SaveUserStats(ctx, stats); err != nil {
		return fmt.Errorf("save stats for user %s: %w", req.UserID, err)
	}

	return nil
}

// AdjustRequestLimit sets a user's persisted request limit directly,
// clamped to the floor, and mirrors it to the broker quota.
func (m *Manager) AdjustRequestLimit(ctx context.Context, userID string, limit int) error {
	if limit < models.MinRequestLimit {
		limit = models.MinRequestLimit
	}

	stats, err := m.store.GetUserStats(ctx, userID)
	if err != nil {
		if m.isNotFound == nil || !m.isNotFound(err) {
			return fmt.Errorf("get stats for user %s: %w", userID, err)
		}
		stats = &models.UserStats{UserID: userID, RequestLimit: models.DefaultRequestLimit}
	}

	stats.RequestLimit = limit
	if err := m.store.SaveUserStats(ctx, stats); err != nil {
		return fmt.Errorf("save stats for user %s: %w", userID, err)
	}

	if m.quota != nil {
		days := m.quotaDays
		settings := models.OverseerrQuotaSettings{
			MovieQuotaLimit: &limit,
			MovieQuotaDays:  &days,
			TVQuotaLimit:    &limit,
			TVQuotaDays:     &days,
		}
		if err := m.quota.UpdateUserQuota(ctx, userID, settings); err != nil {
			logging.Warn().Err(err).Str("user_id", userID).Int("limit", limit).Msg("Quota push-down failed")
		}
	}

	logging.Info().Str("user_id", userID).Int("limit", limit).Msg("Request limit adjusted")
	return nil
}
