// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
calculator.go - Punishment Level Calculator

Pure, deterministic level computation. No I/O: the calculator maps a
usage total and the user's current level to a new level, and builds the
punishment record for it. Persistence, quota push-down, and notification
are the manager's concern.

Level selection rules:
  - MAXIMUM is absorbing. A user at MAXIMUM stays there regardless of
    usage; only an explicit reset or override can lower them.
  - Thresholds are scanned in ascending order and the HIGHEST exceeded
    one wins (900GB against 500/750/1000/1500 yields MILD, not WARNING).
  - Levels never decrease from a usage recalculation. Usage dropping
    below a threshold does not demote; demotion is reset/override only.
*/

package punishments

import (
	"fmt"
	"time"

	"github.com/tomtom215/judgarr/internal/config"
	"github.com/tomtom215/judgarr/internal/models"
)

// levelSettings holds the configured consequences of one severity level.
type levelSettings struct {
	thresholdBytes int64
	cooldownDays   int
	reductionPct   int
}

// Calculator computes punishment levels from usage totals.
type Calculator struct {
	// settings indexed by level; LevelNone carries zeroes.
	settings map[models.PunishmentLevel]levelSettings
}

// NewCalculator builds a calculator from the punishment configuration.
// Thresholds are configured in gigabytes and converted to bytes here.
func NewCalculator(cfg *config.PunishmentConfig) *Calculator {
	return &Calculator{
		settings: map[models.PunishmentLevel]levelSettings{
			models.LevelWarning: {
				thresholdBytes: models.GigabytesToBytes(cfg.ThresholdsGB.Warning),
				cooldownDays:   int(cfg.CooldownDays.Warning),
				reductionPct:   int(cfg.ReductionPercent.Warning),
			},
			models.LevelMild: {
				thresholdBytes: models.GigabytesToBytes(cfg.ThresholdsGB.Mild),
				cooldownDays:   int(cfg.CooldownDays.Mild),
				reductionPct:   int(cfg.ReductionPercent.Mild),
			},
			models.LevelSevere: {
				thresholdBytes: models.GigabytesToBytes(cfg.ThresholdsGB.Severe),
				cooldownDays:   int(cfg.CooldownDays.Severe),
				reductionPct:   int(cfg.ReductionPercent.Severe),
			},
			models.LevelMaximum: {
				thresholdBytes: models.GigabytesToBytes(cfg.ThresholdsGB.Maximum),
				cooldownDays:   int(cfg.CooldownDays.Maximum),
				reductionPct:   int(cfg.ReductionPercent.Maximum),
			},
		},
	}
}

// DetermineLevel maps a usage total and the user's current level to the
// level the user should now hold.
func (c *Calculator) DetermineLevel(totalBytes int64, currentLevel models.PunishmentLevel) models.PunishmentLevel {
	// Terminal absorbing state.
	if currentLevel == models.LevelMaximum {
		return models.LevelMaximum
	}

	newLevel := models.LevelNone
	for _, level := range models.AllLevels {
		if level == models.LevelNone {
			continue
		}
		if totalBytes >= c.settings[level].thresholdBytes {
			newLevel = level // ascending scan, last match wins
		}
	}

	// Monotonicity: recalculation never demotes.
	if currentLevel > newLevel {
		return currentLevel
	}

	return newLevel
}

// CalculatePunishment builds the punishment record for a usage total, or
// nil when the determined level is NONE. now anchors the cooldown window.
func (c *Calculator) CalculatePunishment(userID string, totalBytes int64, currentLevel models.PunishmentLevel, now time.Time) *models.UserPunishment {
	level := c.DetermineLevel(totalBytes, currentLevel)
	if level == models.LevelNone {
		return nil
	}

	s := c.settings[level]

	return &models.UserPunishment{
		UserID:           userID,
		Level:            level,
		StartDate:        now,
		EndDate:          now.AddDate(0, 0, s.cooldownDays),
		CooldownDays:     s.cooldownDays,
		RequestReduction: s.reductionPct,
		Reason: fmt.Sprintf("Exceeded %s data usage threshold (%.1fGB over %.1fGB limit)",
			level, models.BytesToGigabytes(totalBytes), models.BytesToGigabytes(s.thresholdBytes)),
		DataUsage: totalBytes,
		IsActive:  true,
	}
}

// ReductionFor returns the configured request-limit reduction percentage
// for a level.
func (c *Calculator) ReductionFor(level models.PunishmentLevel) int {
	return c.settings[level].reductionPct
}
