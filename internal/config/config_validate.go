// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate runs the struct-tag constraints declared on Config fields.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid field: %w", err)
	}

	validators := []func() error{
		c.validateServices,
		c.validatePunishment,
		c.validateDatabase,
		c.validateNotifications,
		c.validateLogging,
	}

	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}

	return nil
}

// validateServices checks the three upstream service configurations.
func (c *Config) validateServices() error {
	services := []struct {
		name string
		cfg  *APIConfig
	}{
		{"overseerr", &c.Overseerr},
		{"radarr", &c.Radarr},
		{"sonarr", &c.Sonarr},
	}

	for _, s := range services {
		if s.cfg.URL == "" {
			return fmt.Errorf("%s.url is required", s.name)
		}
		if err := validateHTTPURL(s.cfg.URL, s.name+".url"); err != nil {
			return err
		}
		if strings.TrimSpace(s.cfg.APIKey) == "" {
			return fmt.Errorf("%s.api_key is required", s.name)
		}
	}

	return nil
}

// validatePunishment checks thresholds, cooldowns, and reductions for every
// level. A non-positive threshold is rejected here rather than surfacing as
// nonsense decisions later.
func (c *Config) validatePunishment() error {
	p := &c.Punishment

	if p.TrackingPeriodDays <= 0 {
		return fmt.Errorf("punishment.tracking_period_days must be positive, got %d", p.TrackingPeriodDays)
	}

	thresholds := map[string]float64{
		"warning": p.ThresholdsGB.Warning,
		"mild":    p.ThresholdsGB.Mild,
		"severe":  p.ThresholdsGB.Severe,
		"maximum": p.ThresholdsGB.Maximum,
	}
	for name, gb := range thresholds {
		if gb <= 0 {
			return fmt.Errorf("punishment.thresholds_gb.%s must be positive, got %g", name, gb)
		}
	}

	cooldowns := map[string]float64{
		"warning": p.CooldownDays.Warning,
		"mild":    p.CooldownDays.Mild,
		"severe":  p.CooldownDays.Severe,
		"maximum": p.CooldownDays.Maximum,
	}
	for name, days := range cooldowns {
		if days <= 0 {
			return fmt.Errorf("punishment.cooldown_days.%s must be positive, got %g", name, days)
		}
	}

	reductions := map[string]float64{
		"warning": p.ReductionPercent.Warning,
		"mild":    p.ReductionPercent.Mild,
		"severe":  p.ReductionPercent.Severe,
		"maximum": p.ReductionPercent.Maximum,
	}
	for name, pct := range reductions {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("punishment.reduction_percent.%s must be within [0,100], got %g", name, pct)
		}
	}

	return nil
}

// validateDatabase checks the DuckDB store settings.
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must not be negative, got %d", c.Database.Threads)
	}
	return nil
}

// validateNotifications checks enabled notification channels.
func (c *Config) validateNotifications() error {
	if c.Notifications.Discord.Enabled {
		if c.Notifications.Discord.WebhookURL == "" {
			return fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled")
		}
		if err := validateHTTPURL(c.Notifications.Discord.WebhookURL, "notifications.discord.webhook_url"); err != nil {
			return err
		}
	}

	if c.Notifications.SMTP.Enabled {
		smtp := &c.Notifications.SMTP
		if smtp.Host == "" {
			return fmt.Errorf("notifications.smtp.host is required when smtp is enabled")
		}
		if smtp.FromAddress == "" {
			return fmt.Errorf("notifications.smtp.from_address is required when smtp is enabled")
		}
		if len(smtp.ToAddresses) == 0 {
			return fmt.Errorf("notifications.smtp.to_addresses is required when smtp is enabled")
		}
	}

	return nil
}

// validateLogging checks logging settings.
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled", "":
	default:
		return fmt.Errorf("logging.level must be one of trace/debug/info/warn/error, got %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console", "":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}

// validateHTTPURL checks that value parses as an absolute http(s) URL.
func validateHTTPURL(value, field string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host", field)
	}
	return nil
}
