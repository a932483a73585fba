// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
service.go - Tracking Service

Drives the full evaluation cycle: aggregate a user's usage over the
rolling window, refresh their stats, and hand the total to the punishment
manager. CheckAllUsers walks every broker user sequentially; per-user
failures are logged and skipped so one broken account cannot stall the
cycle. Concurrency-limiting and scheduling belong to the caller.
*/

package tracking

import (
	"context"
	"strconv"
	"time"

	"github.com/tomtom215/judgarr/internal/logging"
	"github.com/tomtom215/judgarr/internal/models"
	"github.com/tomtom215/judgarr/internal/punishments"
	syncclient "github.com/tomtom215/judgarr/internal/sync"
)

// StatsStore is the stats surface the tracking service refreshes.
type StatsStore interface {
	GetUserStats(ctx context.Context, userID string) (*models.UserStats, error)
	SaveUserStats(ctx context.Context, stats *models.UserStats) error
}

// CheckResult summarizes one user's evaluation.
type CheckResult struct {
	UserID     string
	Username   string
	TotalBytes int64
	Requests   []models.UserRequest
	Punishment *models.UserPunishment // nil when the level did not change
}

// CycleSummary summarizes a CheckAllUsers run.
type CycleSummary struct {
	UsersChecked int
	UsersFailed  int
	Punished     int
	Duration     time.Duration
}

// Service evaluates users against the rolling usage window.
type Service struct {
	overseerr    syncclient.OverseerrClientInterface
	aggregator   *Aggregator
	manager      *punishments.Manager
	stats        StatsStore
	isNotFound   func(error) bool
	trackingDays int
}

// NewService wires the tracking service. trackingDays is the rolling
// window length; isNotFound classifies the store's stats miss.
func NewService(
	overseerr syncclient.OverseerrClientInterface,
	aggregator *Aggregator,
	manager *punishments.Manager,
	stats StatsStore,
	isNotFound func(error) bool,
	trackingDays int,
) *Service {
	return &Service{
		overseerr:    overseerr,
		aggregator:   aggregator,
		manager:      manager,
		stats:        stats,
		isNotFound:   isNotFound,
		trackingDays: trackingDays,
	}
}

// Window returns the current rolling evaluation window.
func (s *Service) Window(now time.Time) (start, end time.Time) {
	end = now.UTC()
	start = end.AddDate(0, 0, -s.trackingDays)
	return start, end
}

// CheckUser aggregates one user's usage over the rolling window, refreshes
// their stats, and escalates through the punishment manager when a
// threshold is breached.
func (s *Service) CheckUser(ctx context.Context, userID, username string) (*CheckResult, error) {
	start, end := s.Window(time.Now())

	total, requests, err := s.aggregator.Aggregate(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	punishment, err := s.manager.ProcessUserBehavior(ctx, userID, username, total)
	if err != nil {
		return nil, err
	}

	if err := s.refreshRequestStats(ctx, userID, requests); err != nil {
		logging.Warn().Err(err).Str("user_id", userID).Msg("Failed to refresh request stats")
	}

	logging.Info().
		Str("user_id", userID).
		Str("username", username).
		Int64("total_bytes", total).
		Int("requests", len(requests)).
		Bool("punished", punishment != nil).
		Msg("User checked")

	return &CheckResult{
		UserID:     userID,
		Username:   username,
		TotalBytes: total,
		Requests:   requests,
		Punishment: punishment,
	}, nil
}

// CheckAllUsers runs CheckUser for every broker user in sequence. Per-user
// failures are counted and skipped.
func (s *Service) CheckAllUsers(ctx context.Context) (*CycleSummary, error) {
	cycleStart := time.Now()

	users, err := s.overseerr.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	summary := &CycleSummary{}
	for _, user := range users {
		userID := strconv.Itoa(user.ID)

		result, err := s.CheckUser(ctx, userID, user.Name())
		if err != nil {
			summary.UsersFailed++
			logging.Error().Err(err).Str("user_id", userID).Msg("User check failed")
			continue
		}

		summary.UsersChecked++
		if result.Punishment != nil {
			summary.Punished++
		}
	}

	summary.Duration = time.Since(cycleStart)
	logging.Info().
		Int("checked", summary.UsersChecked).
		Int("failed", summary.UsersFailed).
		Int("punished", summary.Punished).
		Dur("duration", summary.Duration).
		Msg("Check cycle complete")

	return summary, nil
}

// refreshRequestStats updates request count and most-recent-request date
// on the user's stats row after an aggregation pass.
func (s *Service) refreshRequestStats(ctx context.Context, userID string, requests []models.UserRequest) error {
	stats, err := s.stats.GetUserStats(ctx, userID)
	if err != nil {
		if s.isNotFound != nil && s.isNotFound(err) {
			return nil // manager provisions stats; nothing to refresh yet
		}
		return err
	}

	stats.TotalRequests = len(requests)
	for i := range requests {
		d := requests[i].RequestDate
		if stats.LastRequestDate == nil || d.After(*stats.LastRequestDate) {
			stats.LastRequestDate = &d
		}
	}

	return s.stats.SaveUserStats(ctx, stats)
}
