// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/judgarr/internal/models"
)

const statsColumns = `user_id, username, total_data_usage, total_requests, punishment_level, cooldown_days, request_limit, current_punishment_id, last_request_date`

// SaveUserStats upserts the per-user aggregate row.
func (db *DB) SaveUserStats(ctx context.Context, stats *models.UserStats) error {
	defer observeQuery("upsert", "user_stats", time.Now())

	query := `INSERT INTO user_stats (` + statsColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id) DO UPDATE SET
		username = excluded.username,
		total_data_usage = excluded.total_data_usage,
		total_requests = excluded.total_requests,
		punishment_level = excluded.punishment_level,
		cooldown_days = excluded.cooldown_days,
		request_limit = excluded.request_limit,
		current_punishment_id = excluded.current_punishment_id,
		last_request_date = excluded.last_request_date`

	var lastRequest any
	if stats.LastRequestDate != nil {
		lastRequest = stats.LastRequestDate.UTC()
	}
	var punishmentID any
	if stats.CurrentPunishmentID != nil {
		punishmentID = *stats.CurrentPunishmentID
	}

	_, err := db.conn.ExecContext(ctx, query,
		stats.UserID, stats.Username, stats.TotalDataUsage, stats.TotalRequests,
		int(stats.PunishmentLevel), stats.CooldownDays, stats.RequestLimit,
		punishmentID, lastRequest,
	)
	if err != nil {
		return fmt.Errorf("failed to save stats for user %s: %w", stats.UserID, err)
	}

	return nil
}

// GetUserStats retrieves the aggregate row for one user, or
// ErrStatsNotFound when the user has never been tracked.
func (db *DB) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	defer observeQuery("select", "user_stats", time.Now())

	query := `SELECT ` + statsColumns + ` FROM user_stats WHERE user_id = ?`

	stats, err := scanStatsFields(db.conn.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStatsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for user %s: %w", userID, err)
	}

	return stats, nil
}

// GetPunishedUserStats retrieves the aggregate rows of every user whose
// stats reference an active punishment, most recently punished first.
func (db *DB) GetPunishedUserStats(ctx context.Context) ([]models.UserStats, error) {
	defer observeQuery("select", "user_stats", time.Now())

	query := `SELECT ` + qualifiedStatsColumns() + `
	FROM user_stats s
	JOIN punishments p ON s.current_punishment_id = p.id
	WHERE p.is_active = true
	ORDER BY p.start_date DESC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list punished users: %w", err)
	}
	defer rows.Close()

	users := make([]models.UserStats, 0)
	for rows.Next() {
		stats, err := scanStatsFields(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user stats: %w", err)
		}
		users = append(users, *stats)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating punished users: %w", err)
	}

	return users, nil
}

func qualifiedStatsColumns() string {
	return `s.user_id, s.username, s.total_data_usage, s.total_requests, s.punishment_level, s.cooldown_days, s.request_limit, s.current_punishment_id, s.last_request_date`
}

func scanStatsFields(row scanTarget) (*models.UserStats, error) {
	var stats models.UserStats
	var level int
	var punishmentID uuid.NullUUID
	var lastRequest sql.NullTime

	err := row.Scan(
		&stats.UserID, &stats.Username, &stats.TotalDataUsage, &stats.TotalRequests,
		&level, &stats.CooldownDays, &stats.RequestLimit, &punishmentID, &lastRequest,
	)
	if err != nil {
		return nil, err
	}

	stats.PunishmentLevel = models.PunishmentLevel(level)
	if punishmentID.Valid {
		id := punishmentID.UUID
		stats.CurrentPunishmentID = &id
	}
	if lastRequest.Valid {
		t := lastRequest.Time
		stats.LastRequestDate = &t
	}

	return &stats, nil
}
