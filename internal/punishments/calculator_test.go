// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package punishments

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/judgarr/internal/config"
	"github.com/tomtom215/judgarr/internal/models"
)

// testPunishmentConfig mirrors the default thresholds: 500/750/1000/1500 GB.
func testPunishmentConfig() *config.PunishmentConfig {
	return &config.PunishmentConfig{
		TrackingPeriodDays: 30,
		ThresholdsGB:       config.LevelValues{Warning: 500, Mild: 750, Severe: 1000, Maximum: 1500},
		CooldownDays:       config.LevelValues{Warning: 3, Mild: 5, Severe: 7, Maximum: 14},
		ReductionPercent:   config.LevelValues{Warning: 0, Mild: 5, Severe: 10, Maximum: 15},
	}
}

func gb(n float64) int64 { return models.GigabytesToBytes(n) }

func TestCalculator_DetermineLevel_HighestExceededWins(t *testing.T) {
	calc := NewCalculator(testPunishmentConfig())

	tests := []struct {
		name       string
		totalBytes int64
		want       models.PunishmentLevel
	}{
		{name: "below all thresholds", totalBytes: gb(100), want: models.LevelNone},
		{name: "just under warning", totalBytes: gb(499.9), want: models.LevelNone},
		{name: "exactly at warning", totalBytes: gb(500), want: models.LevelWarning},
		{name: "between warning and mild", totalBytes: gb(600), want: models.LevelWarning},
		{name: "900GB picks MILD not WARNING or SEVERE", totalBytes: gb(900), want: models.LevelMild},
		{name: "severe range", totalBytes: gb(1100), want: models.LevelSevere},
		{name: "above maximum", totalBytes: gb(2000), want: models.LevelMaximum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.DetermineLevel(tt.totalBytes, models.LevelNone)
			if got != tt.want {
				t.Errorf("DetermineLevel(%d, NONE): expected %s, got %s", tt.totalBytes, tt.want, got)
			}
		})
	}
}

// Usage recalculation never demotes: a MILD user whose usage falls into
// WARNING range stays MILD.
func TestCalculator_DetermineLevel_Monotonic(t *testing.T) {
	calc := NewCalculator(testPunishmentConfig())

	got := calc.DetermineLevel(gb(600), models.LevelMild)
	if got != models.LevelMild {
		t.Errorf("expected MILD to persist for warning-range usage, got %s", got)
	}

	got = calc.DetermineLevel(0, models.LevelSevere)
	if got != models.LevelSevere {
		t.Errorf("expected SEVERE to persist for zero usage, got %s", got)
	}

	// Escalation still allowed.
	got = calc.DetermineLevel(gb(1100), models.LevelWarning)
	if got != models.LevelSevere {
		t.Errorf("expected escalation WARNING -> SEVERE, got %s", got)
	}
}

func TestCalculator_DetermineLevel_MaximumAbsorbing(t *testing.T) {
	calc := NewCalculator(testPunishmentConfig())

	for _, totalBytes := range []int64{0, gb(100), gb(750), gb(5000)} {
		if got := calc.DetermineLevel(totalBytes, models.LevelMaximum); got != models.LevelMaximum {
			t.Errorf("DetermineLevel(%d, MAXIMUM): expected MAXIMUM, got %s", totalBytes, got)
		}
	}
}

func TestCalculator_CalculatePunishment(t *testing.T) {
	calc := NewCalculator(testPunishmentConfig())
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	// 1100GB exceeds the 1000GB SEVERE threshold but not 1500GB.
	p := calc.CalculatePunishment("42", gb(1100), models.LevelNone, now)
	if p == nil {
		t.Fatal("expected a punishment, got nil")
	}

	if p.Level != models.LevelSevere {
		t.Errorf("Level: expected SEVERE, got %s", p.Level)
	}
	if p.CooldownDays != 7 {
		t.Errorf("CooldownDays: expected 7, got %d", p.CooldownDays)
	}
	if p.RequestReduction != 10 {
		t.Errorf("RequestReduction: expected 10, got %d", p.RequestReduction)
	}
	if !p.EndDate.Equal(now.AddDate(0, 0, 7)) {
		t.Errorf("EndDate: expected %v, got %v", now.AddDate(0, 0, 7), p.EndDate)
	}
	if p.DataUsage != gb(1100) {
		t.Errorf("DataUsage: expected %d, got %d", gb(1100), p.DataUsage)
	}
	if !p.IsActive {
		t.Error("new punishment should be active")
	}
	if !strings.Contains(p.Reason, "SEVERE") {
		t.Errorf("Reason should cite the level, got %q", p.Reason)
	}
	if !strings.Contains(p.Reason, "1100.0GB") {
		t.Errorf("Reason should cite the usage in GB, got %q", p.Reason)
	}
}

func TestCalculator_CalculatePunishment_NoneBelowThresholds(t *testing.T) {
	calc := NewCalculator(testPunishmentConfig())

	if p := calc.CalculatePunishment("42", gb(100), models.LevelNone, time.Now()); p != nil {
		t.Fatalf("expected nil below every threshold, got %+v", p)
	}
}

func TestReduceLimit(t *testing.T) {
	tests := []struct {
		name         string
		limit        int
		reductionPct int
		want         int
	}{
		{name: "10 percent off baseline", limit: 100, reductionPct: 10, want: 90},
		{name: "zero reduction", limit: 100, reductionPct: 0, want: 100},
		{name: "floor holds for small limits", limit: 10, reductionPct: 90, want: 5},
		{name: "floor holds at full reduction", limit: 100, reductionPct: 100, want: 5},
		{name: "result exactly at floor", limit: 10, reductionPct: 50, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReduceLimit(tt.limit, tt.reductionPct); got != tt.want {
				t.Errorf("ReduceLimit(%d, %d): expected %d, got %d", tt.limit, tt.reductionPct, tt.want, got)
			}
		})
	}
}
