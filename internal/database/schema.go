// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
schema.go - Database Schema Management

Tables:
  - requests: broker requests Judgarr has seen, with their latest known
    on-disk size
  - request_size_history: append-only size observations per request, kept
    so growth over time (quality upgrades, added seasons) stays auditable
  - punishments: punishment records; at most one row per user has
    is_active = true, enforced transactionally in crud_punishments.go
  - user_stats: per-user aggregate row mirroring the active punishment

All columns are defined in the initial CREATE TABLE statements; there are
no versioned migrations yet.
*/

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table creation SQL statements
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS requests (
			id BIGINT PRIMARY KEY,
			user_id TEXT NOT NULL,
			media_id TEXT NOT NULL,
			media_type TEXT NOT NULL,
			request_date TIMESTAMP NOT NULL,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS request_size_history (
			request_id BIGINT NOT NULL,
			size_bytes BIGINT NOT NULL,
			observed_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS punishments (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			level INTEGER NOT NULL,
			start_date TIMESTAMP NOT NULL,
			end_date TIMESTAMP NOT NULL,
			cooldown_days INTEGER NOT NULL,
			request_reduction INTEGER NOT NULL,
			reason TEXT NOT NULL,
			data_usage BIGINT NOT NULL,
			is_active BOOLEAN NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			total_data_usage BIGINT NOT NULL DEFAULT 0,
			total_requests INTEGER NOT NULL DEFAULT 0,
			punishment_level INTEGER NOT NULL DEFAULT 0,
			cooldown_days INTEGER NOT NULL DEFAULT 0,
			request_limit INTEGER NOT NULL,
			current_punishment_id UUID,
			last_request_date TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_requests_user_date ON requests (user_id, request_date)`,
		`CREATE INDEX IF NOT EXISTS idx_size_history_request ON request_size_history (request_id)`,
		`CREATE INDEX IF NOT EXISTS idx_punishments_user ON punishments (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_punishments_active ON punishments (user_id, is_active)`,
	}
}
