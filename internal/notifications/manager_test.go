// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/judgarr/internal/config"
	"github.com/tomtom215/judgarr/internal/models"
)

type recordingChannel struct {
	name   string
	events []*Event
	err    error
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Send(_ context.Context, event *Event) error {
	c.events = append(c.events, event)
	return c.err
}

func testPunishment() *models.UserPunishment {
	now := time.Now().UTC()
	return &models.UserPunishment{
		UserID:       "12",
		Level:        models.LevelSevere,
		StartDate:    now,
		EndDate:      now.Add(7 * 24 * time.Hour),
		CooldownDays: 7,
		Reason:       "Exceeded severe data usage threshold (1100.0GB over 1000.0GB limit)",
		DataUsage:    1100 * models.GB,
		IsActive:     true,
	}
}

func TestManager_PunishmentCreated_FansOut(t *testing.T) {
	first := &recordingChannel{name: "first"}
	second := &recordingChannel{name: "second"}
	mgr := NewManagerWithChannels(first, second)

	mgr.PunishmentCreated(context.Background(), "alice", testPunishment())

	for _, ch := range []*recordingChannel{first, second} {
		if len(ch.events) != 1 {
			t.Fatalf("channel %s received %d events, want 1", ch.name, len(ch.events))
		}
		event := ch.events[0]
		if event.Level != models.LevelSevere {
			t.Errorf("event level = %v, want %v", event.Level, models.LevelSevere)
		}
		if event.Username != "alice" {
			t.Errorf("event username = %q, want %q", event.Username, "alice")
		}
		if !strings.Contains(event.Body, "alice") || !strings.Contains(event.Body, "severe") {
			t.Errorf("event body missing user or level: %q", event.Body)
		}
	}
}

func TestManager_PunishmentCreated_FallsBackToUserID(t *testing.T) {
	ch := &recordingChannel{name: "test"}
	mgr := NewManagerWithChannels(ch)

	mgr.PunishmentCreated(context.Background(), "", testPunishment())

	if got := ch.events[0].Username; got != "12" {
		t.Errorf("username = %q, want user ID fallback %q", got, "12")
	}
}

func TestManager_ChannelFailureDoesNotStopFanOut(t *testing.T) {
	failing := &recordingChannel{name: "failing", err: errors.New("webhook down")}
	working := &recordingChannel{name: "working"}
	mgr := NewManagerWithChannels(failing, working)

	mgr.PunishmentCleared(context.Background(), "bob", "cooldown expired")

	if len(working.events) != 1 {
		t.Fatalf("working channel received %d events, want 1", len(working.events))
	}
	if working.events[0].Level != models.LevelNone {
		t.Errorf("cleared event level = %v, want %v", working.events[0].Level, models.LevelNone)
	}
}

func TestManager_NoChannelsIsValid(t *testing.T) {
	mgr := NewManager(nil)
	// Must not panic.
	mgr.PunishmentCreated(context.Background(), "alice", testPunishment())
	mgr.PunishmentCleared(context.Background(), "alice", "reset")
}

func TestNewManager_BuildsEnabledChannels(t *testing.T) {
	cfg := &config.NotificationsConfig{
		Discord: config.DiscordConfig{Enabled: true, WebhookURL: "https://discord.com/api/webhooks/1/x"},
		SMTP:    config.SMTPConfig{Enabled: false},
	}

	mgr := NewManager(cfg)
	if len(mgr.channels) != 1 {
		t.Fatalf("built %d channels, want 1", len(mgr.channels))
	}
	if mgr.channels[0].Name() != "discord" {
		t.Errorf("channel = %q, want %q", mgr.channels[0].Name(), "discord")
	}
}

func TestDiscordChannel_SendsEmbed(t *testing.T) {
	var received discordPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q, want application/json", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("unmarshal payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ch := NewDiscordChannel(server.URL)
	event := &Event{
		Title:     "Punishment applied: severe",
		Body:      "details",
		Username:  "alice",
		Level:     models.LevelSevere,
		Timestamp: time.Now().UTC(),
	}

	if err := ch.Send(context.Background(), event); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(received.Embeds) != 1 {
		t.Fatalf("payload has %d embeds, want 1", len(received.Embeds))
	}
	embed := received.Embeds[0]
	if embed.Title != event.Title {
		t.Errorf("embed title = %q, want %q", embed.Title, event.Title)
	}
	if embed.Color != colorSevere {
		t.Errorf("embed color = %#x, want %#x", embed.Color, colorSevere)
	}
	if len(embed.Fields) != 2 {
		t.Fatalf("embed has %d fields, want 2", len(embed.Fields))
	}
}

func TestDiscordChannel_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "Invalid Webhook Token"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	ch := NewDiscordChannel(server.URL)
	err := ch.Send(context.Background(), &Event{Title: "t", Timestamp: time.Now()})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should carry status code: %v", err)
	}
}

func TestEmailChannel_RequiresRecipients(t *testing.T) {
	ch := NewEmailChannel(config.SMTPConfig{Host: "mail.example.com", Port: 587})
	err := ch.Send(context.Background(), &Event{Title: "t", Timestamp: time.Now()})
	if err == nil {
		t.Fatal("expected error with no recipients")
	}
}

func TestEmailChannel_BuildMessage(t *testing.T) {
	ch := NewEmailChannel(config.SMTPConfig{
		Host:        "mail.example.com",
		Port:        587,
		FromAddress: "judgarr@example.com",
		ToAddresses: []string{"admin@example.com", "ops@example.com"},
	})

	msg := ch.buildMessage(&Event{
		Title:     "Punishment cleared",
		Body:      "alice has been restored to the baseline request limit.",
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	})

	for _, want := range []string{
		"From: Judgarr <judgarr@example.com>",
		"To: admin@example.com, ops@example.com",
		"Subject: Punishment cleared",
		"alice has been restored",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}
