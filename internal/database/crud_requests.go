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

	"github.com/tomtom215/judgarr/internal/models"
)

// UpsertRequest inserts a request or refreshes its mutable columns when a
// row with the same broker ID already exists. Every size observation is
// appended to request_size_history so growth stays auditable.
func (db *DB) UpsertRequest(ctx context.Context, req *models.UserRequest) error {
	defer observeQuery("upsert", "requests", time.Now())

	now := time.Now().UTC()

	query := `INSERT INTO requests (
		id, user_id, media_id, media_type, request_date, size_bytes, status, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		size_bytes = excluded.size_bytes,
		status = excluded.status,
		updated_at = excluded.updated_at`

	_, err := db.conn.ExecContext(ctx, query,
		req.ID, req.UserID, req.MediaID, req.MediaType, req.RequestDate.UTC(), req.SizeBytes, req.Status, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert request %d: %w", req.ID, err)
	}

	historyQuery := `INSERT INTO request_size_history (request_id, size_bytes, observed_at) VALUES (?, ?, ?)`
	if _, err := db.conn.ExecContext(ctx, historyQuery, req.ID, req.SizeBytes, now); err != nil {
		return fmt.Errorf("failed to record size history for request %d: %w", req.ID, err)
	}

	return nil
}

// GetRequest retrieves a request by its broker ID.
func (db *DB) GetRequest(ctx context.Context, id int64) (*models.UserRequest, error) {
	defer observeQuery("select", "requests", time.Now())

	query := `SELECT id, user_id, media_id, media_type, request_date, size_bytes, status
	FROM requests WHERE id = ?`

	var req models.UserRequest
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.UserID, &req.MediaID, &req.MediaType, &req.RequestDate, &req.SizeBytes, &req.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request %d: %w", id, err)
	}

	return &req, nil
}

// GetUserRequests retrieves a user's requests within [start, end], newest
// first. Zero bounds disable that side of the filter.
func (db *DB) GetUserRequests(ctx context.Context, userID string, start, end time.Time) ([]models.UserRequest, error) {
	defer observeQuery("select", "requests", time.Now())

	query := `SELECT id, user_id, media_id, media_type, request_date, size_bytes, status
	FROM requests WHERE user_id = ?`
	args := []any{userID}

	if !start.IsZero() {
		query += " AND request_date >= ?"
		args = append(args, start.UTC())
	}
	if !end.IsZero() {
		query += " AND request_date <= ?"
		args = append(args, end.UTC())
	}
	query += " ORDER BY request_date DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests for user %s: %w", userID, err)
	}
	defer rows.Close()

	requests := make([]models.UserRequest, 0)
	for rows.Next() {
		var req models.UserRequest
		if err := rows.Scan(&req.ID, &req.UserID, &req.MediaID, &req.MediaType, &req.RequestDate, &req.SizeBytes, &req.Status); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}

	return requests, nil
}

// UpdateRequestSize records a new size observation for a request.
func (db *DB) UpdateRequestSize(ctx context.Context, id, sizeBytes int64) error {
	defer observeQuery("update", "requests", time.Now())

	now := time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE requests SET size_bytes = ?, updated_at = ? WHERE id = ?`, sizeBytes, now, id)
	if err != nil {
		return fmt.Errorf("failed to update size for request %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update for request %d: %w", id, err)
	}
	if affected == 0 {
		return ErrRequestNotFound
	}

	historyQuery := `INSERT INTO request_size_history (request_id, size_bytes, observed_at) VALUES (?, ?, ?)`
	if _, err := db.conn.ExecContext(ctx, historyQuery, id, sizeBytes, now); err != nil {
		return fmt.Errorf("failed to record size history for request %d: %w", id, err)
	}

	return nil
}

// GetRequestSizeHistory returns all size observations for a request,
// oldest first.
func (db *DB) GetRequestSizeHistory(ctx context.Context, id int64) ([]models.RequestSizeObservation, error) {
	defer observeQuery("select", "request_size_history", time.Now())

	query := `SELECT request_id, size_bytes, observed_at
	FROM request_size_history WHERE request_id = ? ORDER BY observed_at ASC`

	rows, err := db.conn.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list size history for request %d: %w", id, err)
	}
	defer rows.Close()

	history := make([]models.RequestSizeObservation, 0)
	for rows.Next() {
		var obs models.RequestSizeObservation
		if err := rows.Scan(&obs.RequestID, &obs.SizeBytes, &obs.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan size observation: %w", err)
		}
		history = append(history, obs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating size history: %w", err)
	}

	return history, nil
}
