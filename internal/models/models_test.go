// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package models

import (
	"testing"
	"time"
)

func TestPunishmentLevelString(t *testing.T) {
	tests := []struct {
		level PunishmentLevel
		want  string
	}{
		{LevelNone, "none"},
		{LevelWarning, "warning"},
		{LevelMild, "mild"},
		{LevelSevere, "severe"},
		{LevelMaximum, "maximum"},
		{PunishmentLevel(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("PunishmentLevel(%d).String() = %q, want %q", int(tt.level), got, tt.want)
		}
	}
}

func TestPunishmentLevelOrdering(t *testing.T) {
	// Severity comparisons drive monotonicity; the constant order must hold.
	if !(LevelNone < LevelWarning && LevelWarning < LevelMild &&
		LevelMild < LevelSevere && LevelSevere < LevelMaximum) {
		t.Fatal("punishment levels are not strictly ascending")
	}
}

func TestUserStatusIsPunished(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		punishment *UserPunishment
		want       bool
	}{
		{
			name:       "no punishment",
			punishment: nil,
			want:       false,
		},
		{
			name: "active unexpired",
			punishment: &UserPunishment{
				IsActive: true,
				EndDate:  now.Add(48 * time.Hour),
			},
			want: true,
		},
		{
			name: "active but expired",
			punishment: &UserPunishment{
				IsActive: true,
				EndDate:  now.Add(-time.Hour),
			},
			want: false,
		},
		{
			name: "inactive unexpired",
			punishment: &UserPunishment{
				IsActive: false,
				EndDate:  now.Add(48 * time.Hour),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := UserStatus{UserID: "1", CurrentPunishment: tt.punishment}
			if got := status.IsPunished(); got != tt.want {
				t.Errorf("IsPunished() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserStatusCurrentRequestLimit(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		punishment *UserPunishment
		want       int
	}{
		{
			name:       "unpunished gets baseline",
			punishment: nil,
			want:       DefaultRequestLimit,
		},
		{
			name: "reduction applied",
			punishment: &UserPunishment{
				IsActive:         true,
				EndDate:          now.Add(time.Hour),
				RequestReduction: 10,
			},
			want: 90,
		},
		{
			name: "floored at zero",
			punishment: &UserPunishment{
				IsActive:         true,
				EndDate:          now.Add(time.Hour),
				RequestReduction: 250,
			},
			want: 0,
		},
		{
			name: "expired punishment restores baseline",
			punishment: &UserPunishment{
				IsActive:         true,
				EndDate:          now.Add(-time.Hour),
				RequestReduction: 50,
			},
			want: DefaultRequestLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := UserStatus{UserID: "1", CurrentPunishment: tt.punishment}
			if got := status.CurrentRequestLimit(); got != tt.want {
				t.Errorf("CurrentRequestLimit() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{GB, "1.0 GB"},
		{GB + GB/2, "1.5 GB"},
		{900 * GB, "900.0 GB"},
		{TB, "1.0 TB"},
		{2*TB + 300*GB, "2.3 TB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.size); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestGigabytesToBytes(t *testing.T) {
	if got := GigabytesToBytes(1); got != GB {
		t.Errorf("GigabytesToBytes(1) = %d, want %d", got, GB)
	}
	if got := GigabytesToBytes(1.5); got != GB+GB/2 {
		t.Errorf("GigabytesToBytes(1.5) = %d, want %d", got, GB+GB/2)
	}
}
