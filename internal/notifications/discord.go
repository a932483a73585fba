// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package notifications

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/judgarr/internal/models"
)

// Embed colors per punishment level. Cleared events use green.
const (
	colorCleared = 0x57F287
	colorWarning = 0xFEE75C
	colorMild    = 0xFAA61A
	colorSevere  = 0xED4245
	colorMaximum = 0x992D22
)

// DiscordChannel delivers events to a Discord webhook as embeds.
type DiscordChannel struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordChannel creates a Discord webhook channel.
func NewDiscordChannel(webhookURL string) *DiscordChannel {
	return &DiscordChannel{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the channel identifier.
func (c *DiscordChannel) Name() string {
	return "discord"
}

// discordPayload is the webhook message structure.
type discordPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Send posts the event to the webhook.
func (c *DiscordChannel) Send(ctx context.Context, event *Event) error {
	payload := c.buildPayload(event)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	errBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if readErr != nil {
		errBody = []byte("(failed to read response)")
	}
	return fmt.Errorf("discord webhook returned %d: %s", resp.StatusCode, string(errBody))
}

func (c *DiscordChannel) buildPayload(event *Event) discordPayload {
	embed := discordEmbed{
		Title:       event.Title,
		Description: event.Body,
		Color:       levelColor(event.Level),
		Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
	}
	if event.Username != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:   "User",
			Value:  event.Username,
			Inline: true,
		})
	}
	if event.Level != models.LevelNone {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:   "Level",
			Value:  event.Level.String(),
			Inline: true,
		})
	}

	return discordPayload{
		Username: "Judgarr",
		Embeds:   []discordEmbed{embed},
	}
}

func levelColor(level models.PunishmentLevel) int {
	switch level {
	case models.LevelWarning:
		return colorWarning
	case models.LevelMild:
		return colorMild
	case models.LevelSevere:
		return colorSevere
	case models.LevelMaximum:
		return colorMaximum
	default:
		return colorCleared
	}
}
