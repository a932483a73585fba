// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

// Package models defines the shared data structures used across Judgarr.
//
// It contains three groups of types:
//
//   - Persisted records owned by the database layer (UserRequest,
//     UserPunishment, UserStats)
//   - Ephemeral derived values (UserData, UserStatus, MediaIdentifiers)
//   - Wire models for the Overseerr, Radarr, and Sonarr REST APIs,
//     decoded with goccy/go-json struct tags
//
// PunishmentLevel is an ordered severity value; comparisons between levels
// are meaningful and used by the punishment calculator to guarantee that
// severity never decreases as a byproduct of a usage recalculation.
package models
