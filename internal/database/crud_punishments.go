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

const punishmentColumns = `id, user_id, level, start_date, end_date, cooldown_days, request_reduction, reason, data_usage, is_active`

// CreatePunishment inserts a punishment. Any punishment already active for
// the user is deactivated in the same transaction, so at most one row per
// user carries is_active = true.
func (db *DB) CreatePunishment(ctx context.Context, p *models.UserPunishment) error {
	defer observeQuery("insert", "punishments", time.Now())

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE punishments SET is_active = false WHERE user_id = ? AND is_active = true`, p.UserID); err != nil {
		return fmt.Errorf("failed to deactivate previous punishments for user %s: %w", p.UserID, err)
	}

	query := `INSERT INTO punishments (` + punishmentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query,
		p.ID, p.UserID, int(p.Level), p.StartDate.UTC(), p.EndDate.UTC(),
		p.CooldownDays, p.RequestReduction, p.Reason, p.DataUsage, p.IsActive,
	); err != nil {
		return fmt.Errorf("failed to create punishment for user %s: %w", p.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit punishment for user %s: %w", p.UserID, err)
	}

	return nil
}

// GetPunishment retrieves a punishment by ID.
func (db *DB) GetPunishment(ctx context.Context, id uuid.UUID) (*models.UserPunishment, error) {
	defer observeQuery("select", "punishments", time.Now())

	query := `SELECT ` + punishmentColumns + ` FROM punishments WHERE id = ?`
	return scanPunishment(db.conn.QueryRowContext(ctx, query, id))
}

// GetActivePunishment retrieves the user's active punishment, or
// ErrPunishmentNotFound when none exists. Expiry is the caller's concern:
// the row stays active in storage until something deactivates it.
func (db *DB) GetActivePunishment(ctx context.Context, userID string) (*models.UserPunishment, error) {
	defer observeQuery("select", "punishments", time.Now())

	query := `SELECT ` + punishmentColumns + `
	FROM punishments WHERE user_id = ? AND is_active = true
	ORDER BY start_date DESC LIMIT 1`
	return scanPunishment(db.conn.QueryRowContext(ctx, query, userID))
}

// GetUserPunishments retrieves all of a user's punishments, newest first.
func (db *DB) GetUserPunishments(ctx context.Context, userID string) ([]models.UserPunishment, error) {
	defer observeQuery("select", "punishments", time.Now())

	query := `SELECT ` + punishmentColumns + ` FROM punishments WHERE user_id = ? ORDER BY start_date DESC`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list punishments for user %s: %w", userID, err)
	}
	defer rows.Close()

	punishments := make([]models.UserPunishment, 0)
	for rows.Next() {
		p, err := scanPunishmentRows(rows)
		if err != nil {
			return nil, err
		}
		punishments = append(punishments, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating punishments: %w", err)
	}

	return punishments, nil
}

// DeactivatePunishment clears the is_active flag on one punishment.
func (db *DB) DeactivatePunishment(ctx context.Context, id uuid.UUID) error {
	defer observeQuery("update", "punishments", time.Now())

	result, err := db.conn.ExecContext(ctx,
		`UPDATE punishments SET is_active = false WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate punishment %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivation of punishment %s: %w", id, err)
	}
	if affected == 0 {
		return ErrPunishmentNotFound
	}

	return nil
}

// DeactivateUserPunishments clears the is_active flag on all of a user's
// punishments and reports how many rows changed. Zero rows is not an
// error: reset is idempotent.
func (db *DB) DeactivateUserPunishments(ctx context.Context, userID string) (int64, error) {
	defer observeQuery("update", "punishments", time.Now())

	result, err := db.conn.ExecContext(ctx,
		`UPDATE punishments SET is_active = false WHERE user_id = ? AND is_active = true`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate punishments for user %s: %w", userID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check deactivation for user %s: %w", userID, err)
	}

	return affected, nil
}

// DeleteUserPunishments physically removes a user's entire punishment
// history. Only the administrative full reset calls this; everything else
// deactivates and keeps the rows for audit.
func (db *DB) DeleteUserPunishments(ctx context.Context, userID string) (int64, error) {
	defer observeQuery("delete", "punishments", time.Now())

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM punishments WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete punishments for user %s: %w", userID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check deletion for user %s: %w", userID, err)
	}

	return affected, nil
}

// scanTarget is the subset of sql.Row and sql.Rows needed by the scan
// helpers.
type scanTarget interface {
	Scan(dest ...any) error
}

func scanPunishmentFields(row scanTarget) (*models.UserPunishment, error) {
	var p models.UserPunishment
	var level int
	err := row.Scan(
		&p.ID, &p.UserID, &level, &p.StartDate, &p.EndDate,
		&p.CooldownDays, &p.RequestReduction, &p.Reason, &p.DataUsage, &p.IsActive,
	)
	if err != nil {
		return nil, err
	}
	p.Level = models.PunishmentLevel(level)
	return &p, nil
}

func scanPunishment(row *sql.Row) (*models.UserPunishment, error) {
	p, err := scanPunishmentFields(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPunishmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan punishment: %w", err)
	}
	return p, nil
}

func scanPunishmentRows(rows *sql.Rows) (*models.UserPunishment, error) {
	p, err := scanPunishmentFields(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan punishment: %w", err)
	}
	return p, nil
}
