// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

// Package database provides the DuckDB persistence layer: broker requests
// with their size history, punishments, and per-user aggregate stats.
//
// All access goes through the DB type, which wraps a database/sql
// connection to an embedded DuckDB file. Schema creation is idempotent and
// runs on open; there are no versioned migrations yet.
package database
