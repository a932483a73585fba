// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package database

import "errors"

var (
	// ErrRequestNotFound indicates the request row does not exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrPunishmentNotFound indicates the punishment row does not exist.
	ErrPunishmentNotFound = errors.New("punishment not found")

	// ErrStatsNotFound indicates no stats row exists for the user.
	ErrStatsNotFound = errors.New("user stats not found")
)
