// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package models

import (
	"time"

	"github.com/google/uuid"
)

// PunishmentLevel is an ordered punishment severity. Higher values are more
// severe; the ordering is load-bearing (the calculator compares levels to
// enforce that severity never decreases automatically).
type PunishmentLevel int

// Punishment severity levels, ascending.
const (
	LevelNone PunishmentLevel = iota
	LevelWarning
	LevelMild
	LevelSevere
	LevelMaximum
)

// AllLevels lists the punishable levels in ascending severity order.
// LevelNone is intentionally excluded.
var AllLevels = []PunishmentLevel{LevelWarning, LevelMild, LevelSevere, LevelMaximum}

// String returns the lowercase level name used in logs, reasons, and the API.
func (l PunishmentLevel) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelWarning:
		return "warning"
	case LevelMild:
		return "mild"
	case LevelSevere:
		return "severe"
	case LevelMaximum:
		return "maximum"
	default:
		return "unknown"
	}
}

// Valid reports whether l is one of the defined levels.
func (l PunishmentLevel) Valid() bool {
	return l >= LevelNone && l <= LevelMaximum
}

// UserPunishment is a persisted punishment record.
//
// At most one punishment per user may have IsActive=true at any time; the
// database layer enforces this with a transactional deactivate-then-insert.
// Records are deactivated rather than deleted so punishment history survives
// resets and overrides.
type UserPunishment struct {
	ID               uuid.UUID       `json:"id"`
	UserID           string          `json:"user_id"`
	Level            PunishmentLevel `json:"level"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	CooldownDays     int             `json:"cooldown_days"`
	RequestReduction int             `json:"request_reduction"` // percent, non-negative magnitude
	Reason           string          `json:"reason"`
	DataUsage        int64           `json:"data_usage"` // bytes that triggered it, 0 if administrative
	IsActive         bool            `json:"is_active"`
}

// Expired reports whether the punishment's end date has passed.
// Expiry is evaluated lazily at read time; there is no background sweep.
func (p *UserPunishment) Expired(now time.Time) bool {
	return !now.Before(p.EndDate)
}
