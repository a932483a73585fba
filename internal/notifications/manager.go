// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/judgarr/internal/config"
	"github.com/tomtom215/judgarr/internal/logging"
	"github.com/tomtom215/judgarr/internal/metrics"
	"github.com/tomtom215/judgarr/internal/models"
)

// sendTimeout bounds each channel delivery independently of the caller's
// context so one slow channel cannot starve the rest.
const sendTimeout = 30 * time.Second

// Manager fans punishment lifecycle events out to all enabled channels.
//
// The zero-channel manager is valid and does nothing, so callers never
// need to nil-check their notifier.
type Manager struct {
	channels []Channel
}

// NewManager builds a manager from configuration, instantiating only the
// enabled channels.
func NewManager(cfg *config.NotificationsConfig) *Manager {
	m := &Manager{}
	if cfg == nil {
		return m
	}

	if cfg.Discord.Enabled {
		m.channels = append(m.channels, NewDiscordChannel(cfg.Discord.WebhookURL))
	}
	if cfg.SMTP.Enabled {
		m.channels = append(m.channels, NewEmailChannel(cfg.SMTP))
	}

	return m
}

// NewManagerWithChannels builds a manager over explicit channels.
func NewManagerWithChannels(channels ...Channel) *Manager {
	return &Manager{channels: channels}
}

// PunishmentCreated announces a new or escalated punishment.
func (m *Manager) PunishmentCreated(ctx context.Context, username string, p *models.UserPunishment) {
	name := username
	if name == "" {
		name = p.UserID
	}

	event := &Event{
		Title:     fmt.Sprintf("Punishment applied: %s", p.Level),
		Username:  name,
		Level:     p.Level,
		Timestamp: time.Now().UTC(),
		Body: fmt.Sprintf(
			"%s has been placed at punishment level %s.\n\nReason: %s\nData usage: %s\nCooldown: %d days (until %s)",
			name, p.Level, p.Reason,
			models.FormatSize(p.DataUsage),
			p.CooldownDays,
			p.EndDate.UTC().Format("2006-01-02"),
		),
	}

	m.broadcast(ctx, event)
}

// PunishmentCleared announces a punishment removal, reset, or expiry.
func (m *Manager) PunishmentCleared(ctx context.Context, username, reason string) {
	event := &Event{
		Title:     "Punishment cleared",
		Username:  username,
		Level:     models.LevelNone,
		Timestamp: time.Now().UTC(),
		Body:      fmt.Sprintf("%s has been restored to the baseline request limit.\n\nReason: %s", username, reason),
	}

	m.broadcast(ctx, event)
}

// broadcast delivers the event to every channel. Failures are logged and
// counted, never returned.
func (m *Manager) broadcast(ctx context.Context, event *Event) {
	for _, ch := range m.channels {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := ch.Send(sendCtx, event)
		cancel()

		if err != nil {
			metrics.NotificationsSent.WithLabelValues(ch.Name(), "error").Inc()
			logging.Warn().
				Err(err).
				Str("channel", ch.Name()).
				Str("title", event.Title).
				Msg("Notification delivery failed")
			continue
		}

		metrics.NotificationsSent.WithLabelValues(ch.Name(), "success").Inc()
		logging.Debug().
			Str("channel", ch.Name()).
			Str("title", event.Title).
			Msg("Notification delivered")
	}
}
