// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
manager.go - Punishment Lifecycle Manager

Owns the per-user punishment state machine: usage breaches escalate via
the calculator, administrators override or reset, and expiry is evaluated
lazily whenever a user's punishment is read. Creating a punishment
persists it (the store guarantees at most one active row per user),
mirrors it into user stats with the request-limit floor applied, pushes
the new limit to the broker, and notifies.
*/

package punishments

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/judgarr/internal/config"
	"github.com/tomtom215/judgarr/internal/logging"
	"github.com/tomtom215/judgarr/internal/metrics"
	"github.com/tomtom215/judgarr/internal/models"
)

// Override actions accepted by OverridePunishment.
const (
	OverrideRemove   = "remove"
	OverrideEscalate = "escalate"
)

// Escalation override constants: a fixed SEVERE punishment independent of
// usage data.
const (
	escalateCooldownDays = 7
	escalateReductionPct = 50
)

// Store is the persistence surface the manager depends on.
type Store interface {
	CreatePunishment(ctx context.Context, p *models.UserPunishment) error
	GetActivePunishment(ctx context.Context, userID string) (*models.UserPunishment, error)
	DeactivateUserPunishments(ctx context.Context, userID string) (int64, error)
	GetUserStats(ctx context.Context, userID string) (*models.UserStats, error)
	SaveUserStats(ctx context.Context, stats *models.UserStats) error
}

// QuotaPusher pushes request limits down to the broker so punishments are
// enforced at the point of intake, not just recorded.
type QuotaPusher interface {
	UpdateUserQuota(ctx context.Context, userID string, settings models.OverseerrQuotaSettings) error
}

// Notifier is told about punishment lifecycle events. Implementations must
// not block indefinitely; delivery failures are theirs to log.
type Notifier interface {
	PunishmentCreated(ctx context.Context, username string, p *models.UserPunishment)
	PunishmentCleared(ctx context.Context, username, reason string)
}

// Manager drives the punishment lifecycle against the store. isNotFound
// classifies the store's miss errors; it is injected at construction so
// the manager does not import the storage package.
type Manager struct {
	store      Store
	calc       *Calculator
	quota      QuotaPusher // nil disables quota push-down
	notifier   Notifier    // nil disables notifications
	isNotFound func(error) bool
	quotaDays  int
}

// NewManager wires a punishment manager. quota and notifier may be nil.
// isNotFound classifies the store's "no active punishment" error.
func NewManager(store Store, cfg *config.PunishmentConfig, quota QuotaPusher, notifier Notifier, isNotFound func(error) bool) *Manager {
	return &Manager{
		store:      store,
		calc:       NewCalculator(cfg),
		quota:      quota,
		notifier:   notifier,
		isNotFound: isNotFound,
		quotaDays:  cfg.TrackingPeriodDays,
	}
}

// Calculator exposes the manager's level calculator for callers that need
// pure level math (status display, dry runs).
func (m *Manager) Calculator() *Calculator {
	return m.calc
}

// ProcessUserBehavior evaluates a user's usage total against the
// thresholds and escalates when warranted. Returns the newly created
// punishment, or nil when the user's level did not change.
func (m *Manager) ProcessUserBehavior(ctx context.Context, userID, username string, totalBytes int64) (*models.UserPunishment, error) {
	stats, err := m.getOrCreateStats(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	currentLevel, err := m.currentLevel(ctx, userID, stats)
	if err != nil {
		return nil, err
	}

	stats.TotalDataUsage = totalBytes

	newLevel := m.calc.DetermineLevel(totalBytes, currentLevel)
	if newLevel == currentLevel {
		// No escalation; persist the refreshed usage total only.
		if err := m.store.SaveUserStats(ctx, stats); err != nil {
			return nil, fmt.Errorf("save stats for user %s: %w", userID, err)
		}
		return nil, nil
	}

	punishment := m.calc.CalculatePunishment(userID, totalBytes, currentLevel, time.Now().UTC())
	if punishment == nil {
		return nil, nil
	}

	if err := m.createPunishment(ctx, punishment, stats, "usage"); err != nil {
		return nil, err
	}

	return punishment, nil
}

// CreatePunishment persists an administratively constructed punishment and
// applies its consequences to the user's stats and broker quota.
func (m *Manager) CreatePunishment(ctx context.Context, p *models.UserPunishment, username string) error {
	stats, err := m.getOrCreateStats(ctx, p.UserID, username)
	if err != nil {
		return err
	}
	return m.createPunishment(ctx, p, stats, "administrative")
}

// createPunishment is the single write path: store the punishment, mirror
// it into stats with the request-limit floor, push the quota, notify.
func (m *Manager) createPunishment(ctx context.Context, p *models.UserPunishment, stats *models.UserStats, origin string) error {
	if err := m.store.CreatePunishment(ctx, p); err != nil {
		return fmt.Errorf("create punishment for user %s: %w", p.UserID, err)
	}

	stats.PunishmentLevel = p.Level
	stats.CooldownDays = p.CooldownDays
	stats.CurrentPunishmentID = &p.ID
	stats.RequestLimit = ReduceLimit(stats.RequestLimit, p.RequestReduction)

	if err := m.store.SaveUserStats(ctx, stats); err != nil {
		return fmt.Errorf("save stats for user %s: %w", p.UserID, err)
	}

	metrics.PunishmentsCreated.WithLabelValues(p.Level.String(), origin).Inc()
	logging.Info().
		Str("user_id", p.UserID).
		Str("level", p.Level.String()).
		Int("cooldown_days", p.CooldownDays).
		Int("request_limit", stats.RequestLimit).
		Str("origin", origin).
		Msg("Punishment created")

	m.pushQuota(ctx, p.UserID, stats.RequestLimit)

	if m.notifier != nil {
		m.notifier.PunishmentCreated(ctx, stats.Username, p)
	}

	return nil
}

// OverridePunishment applies an administrative override. "remove"
// deactivates the current punishment without touching history; "escalate"
// unconditionally imposes a SEVERE punishment independent of usage data.
func (m *Manager) OverridePunishment(ctx context.Context, userID, action, reason string) error {
	switch action {
	case OverrideRemove:
		return m.removePunishment(ctx, userID, reason)
	case OverrideEscalate:
		now := time.Now().UTC()
		p := &models.UserPunishment{
			UserID:           userID,
			Level:            models.LevelSevere,
			StartDate:        now,
			EndDate:          now.AddDate(0, 0, escalateCooldownDays),
			CooldownDays:     escalateCooldownDays,
			RequestReduction: escalateReductionPct,
			Reason:           reason,
			DataUsage:        0,
			IsActive:         true,
		}
		return m.CreatePunishment(ctx, p, "")
	default:
		return fmt.Errorf("unknown override action %q", action)
	}
}

// removePunishment deactivates the user's active punishment and restores
// their baseline limit. History rows are kept.
func (m *Manager) removePunishment(ctx context.Context, userID, reason string) error {
	affected, err := m.store.DeactivateUserPunishments(ctx, userID)
	if err != nil {
		return fmt.Errorf("deactivate punishments for user %s: %w", userID, err)
	}
	if affected > 0 {
		metrics.PunishmentsDeactivated.WithLabelValues("override").Inc()
	}

	if err := m.restoreStats(ctx, userID, reason); err != nil {
		return err
	}

	logging.Info().Str("user_id", userID).Str("reason", reason).Msg("Punishment removed by override")
	return nil
}

// ResetPunishment clears a user's punishment state. Idempotent and
// best-effort: a user with nothing active is a success, and persistence
// failures are reported as false rather than propagated, because resets
// run from interactive paths.
func (m *Manager) ResetPunishment(ctx context.Context, userID, reason string) bool {
	affected, err := m.store.DeactivateUserPunishments(ctx, userID)
	if err != nil {
		logging.Error().Err(err).Str("user_id", userID).Msg("Punishment reset failed")
		return false
	}
	if affected > 0 {
		metrics.PunishmentsDeactivated.WithLabelValues("reset").Inc()
	}

	if err := m.restoreStats(ctx, userID, reason); err != nil {
		logging.Error().Err(err).Str("user_id", userID).Msg("Punishment reset failed to restore stats")
		return false
	}

	logging.Info().Str("user_id", userID).Str("reason", reason).Bool("had_active", affected > 0).Msg("Punishment reset")
	return true
}

// restoreStats returns a user's stats row to the unpunished baseline.
// A user with no stats row has nothing to restore.
func (m *Manager) restoreStats(ctx context.Context, userID, reason string) error {
	stats, err := m.store.GetUserStats(ctx, userID)
	if err != nil {
		if m.isNotFound != nil && m.isNotFound(err) {
			return nil
		}
		return fmt.Errorf("get stats for user %s: %w", userID, err)
	}

	stats.PunishmentLevel = models.LevelNone
	stats.CooldownDays = 0
	stats.CurrentPunishmentID = nil
	stats.RequestLimit = models.DefaultRequestLimit

	if err := m.store.SaveUserStats(ctx, stats); err != nil {
		return fmt.Errorf("save stats for user %s: %w", userID, err)
	}

	m.pushQuota(ctx, userID, stats.RequestLimit)

	if m.notifier != nil {
		m.notifier.PunishmentCleared(ctx, stats.Username, reason)
	}

	return nil
}

// ActivePunishment returns the user's active punishment, or nil when none
// exists. Lazy expiry applies: a lapsed row is deactivated and the user's
// baseline restored before nil is returned.
func (m *Manager) ActivePunishment(ctx context.Context, userID string) (*models.UserPunishment, error) {
	active, err := m.store.GetActivePunishment(ctx, userID)
	if err != nil {
		if m.isNotFound != nil && m.isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active punishment for user %s: %w", userID, err)
	}

	if active.Expired(time.Now().UTC()) {
		if _, err := m.store.DeactivateUserPunishments(ctx, userID); err != nil {
			return nil, fmt.Errorf("expire punishment for user %s: %w", userID, err)
		}
		metrics.PunishmentsDeactivated.WithLabelValues("expired").Inc()

		if err := m.restoreStats(ctx, userID, "punishment expired"); err != nil {
			logging.Warn().Err(err).Str("user_id", userID).Msg("Failed to restore baseline after expiry")
		}
		return nil, nil
	}

	return active, nil
}

// currentLevel resolves the user's effective level, applying lazy expiry:
// an active row whose end date has passed is deactivated here and the
// user's baseline restored, since any read is the enforcement point.
func (m *Manager) currentLevel(ctx context.Context, userID string, stats *models.UserStats) (models.PunishmentLevel, error) {
	active, err := m.store.GetActivePunishment(ctx, userID)
	if err != nil {
		if m.isNotFound != nil && m.isNotFound(err) {
			return models.LevelNone, nil
		}
		return models.LevelNone, fmt.Errorf("get active punishment for user %s: %w", userID, err)
	}

	if active.Expired(time.Now().UTC()) {
		if _, err := m.store.DeactivateUserPunishments(ctx, userID); err != nil {
			return models.LevelNone, fmt.Errorf("expire punishment for user %s: %w", userID, err)
		}
		metrics.PunishmentsDeactivated.WithLabelValues("expired").Inc()

		stats.PunishmentLevel = models.LevelNone
		stats.CooldownDays = 0
		stats.CurrentPunishmentID = nil
		stats.RequestLimit = models.DefaultRequestLimit
		m.pushQuota(ctx, userID, stats.RequestLimit)

		return models.LevelNone, nil
	}

	return active.Level, nil
}

// getOrCreateStats lazily provisions a zeroed stats row on first contact.
func (m *Manager) getOrCreateStats(ctx context.Context, userID, username string) (*models.UserStats, error) {
	stats, err := m.store.GetUserStats(ctx, userID)
	if err == nil {
		if username != "" && stats.Username == "" {
			stats.Username = username
		}
		return stats, nil
	}
	if m.isNotFound == nil || !m.isNotFound(err) {
		return nil, fmt.Errorf("get stats for user %s: %w", userID, err)
	}

	stats = &models.UserStats{
		UserID:       userID,
		Username:     username,
		RequestLimit: models.DefaultRequestLimit,
	}
	if err := m.store.SaveUserStats(ctx, stats); err != nil {
		return nil, fmt.Errorf("provision stats for user %s: %w", userID, err)
	}

	return stats, nil
}

// pushQuota mirrors the request limit into the broker's quota settings.
// Best-effort: the punishment record is authoritative, the broker quota is
// enforcement convenience.
func (m *Manager) pushQuota(ctx context.Context, userID string, limit int) {
	if m.quota == nil {
		return
	}

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

// ReduceLimit applies a percentage reduction to a request limit with the
// hard floor applied. The floor holds regardless of how large the
// reduction is.
func ReduceLimit(limit, reductionPct int) int {
	reduced := limit - limit*reductionPct/100
	if reduced < models.MinRequestLimit {
		return models.MinRequestLimit
	}
	return reduced
}
