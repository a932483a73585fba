// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

// Package notifications delivers punishment lifecycle events to admins.
//
// Two channels are supported:
//   - Discord: webhook delivery with embeds
//   - Email: SMTP delivery, plaintext
//
// Delivery is strictly best-effort. A channel failure is logged and
// counted, never propagated; punishment state is authoritative in the
// database regardless of whether anyone was told about it.
package notifications

import (
	"context"
	"time"

	"github.com/tomtom215/judgarr/internal/models"
)

// Event is a punishment lifecycle notification.
type Event struct {
	// Title is the notification headline.
	Title string

	// Body is the plaintext detail.
	Body string

	// Username identifies the affected user for display.
	Username string

	// Level is the punishment level, or LevelNone for cleared events.
	Level models.PunishmentLevel

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Channel is a single notification delivery mechanism.
type Channel interface {
	// Name returns the channel identifier used in logs and metrics.
	Name() string

	// Send delivers the event. Implementations respect ctx cancellation.
	Send(ctx context.Context, event *Event) error
}
