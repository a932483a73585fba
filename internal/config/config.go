// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

// Package config loads and validates Judgarr configuration.
//
// Configuration is layered via koanf v2 (highest priority wins):
//
//  1. Built-in defaults
//  2. YAML config file (config.yaml, config.yml, /etc/judgarr/..., or
//     the path named by the JUDGARR_CONFIG environment variable)
//  3. JUDGARR_-prefixed environment variables
//     (JUDGARR_OVERSEERR_API_KEY -> overseerr.api_key)
package config

import "time"

// APIConfig holds the connection settings for one upstream REST service.
type APIConfig struct {
	URL    string `koanf:"url" validate:"omitempty,url"`
	APIKey string `koanf:"api_key"`
}

// TMDBConfig holds settings for the TMDB metadata correlation service.
// The API key is optional: the external-IDs endpoints answer best-effort
// unauthenticated requests.
type TMDBConfig struct {
	APIKey string `koanf:"api_key"`
}

// LevelValues maps each punishable severity level to one configured value
// (a threshold, a cooldown, or a reduction).
type LevelValues struct {
	Warning float64 `koanf:"warning"`
	Mild    float64 `koanf:"mild"`
	Severe  float64 `koanf:"severe"`
	Maximum float64 `koanf:"maximum"`
}

// PunishmentConfig drives the punishment calculator.
//
// Thresholds are gigabytes of rolling-window usage, cooldowns are days, and
// reductions are the percentage taken off the persisted request limit.
type PunishmentConfig struct {
	TrackingPeriodDays int         `koanf:"tracking_period_days"`
	ThresholdsGB       LevelValues `koanf:"thresholds_gb"`
	CooldownDays       LevelValues `koanf:"cooldown_days"`
	ReductionPercent   LevelValues `koanf:"reduction_percent"`
}

// DatabaseConfig holds the DuckDB store settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// DiscordConfig holds Discord webhook notification settings.
type DiscordConfig struct {
	Enabled    bool   `koanf:"enabled"`
	WebhookURL string `koanf:"webhook_url"`
}

// SMTPConfig holds email notification settings.
type SMTPConfig struct {
	Enabled     bool     `koanf:"enabled"`
	Host        string   `koanf:"host"`
	Port        int      `koanf:"port" validate:"omitempty,min=1,max=65535"`
	Username    string   `koanf:"username"`
	Password    string   `koanf:"password"`
	FromAddress string   `koanf:"from_address" validate:"omitempty,email"`
	ToAddresses []string `koanf:"to_addresses"`
	UseTLS      bool     `koanf:"use_tls"`
}

// NotificationsConfig groups all notification channels.
type NotificationsConfig struct {
	Discord DiscordConfig `koanf:"discord"`
	SMTP    SMTPConfig    `koanf:"smtp"`
}

// ServerConfig holds the read-only status API settings.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"omitempty,min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Config is the root Judgarr configuration.
type Config struct {
	Overseerr     APIConfig           `koanf:"overseerr"`
	Radarr        APIConfig           `koanf:"radarr"`
	Sonarr        APIConfig           `koanf:"sonarr"`
	TMDB          TMDBConfig          `koanf:"tmdb"`
	Punishment    PunishmentConfig    `koanf:"punishment"`
	Database      DatabaseConfig      `koanf:"database"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Server        ServerConfig        `koanf:"server"`
	Logging       LoggingConfig       `koanf:"logging"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Overseerr: APIConfig{URL: "http://localhost:5055"},
		Radarr:    APIConfig{URL: "http://localhost:7878"},
		Sonarr:    APIConfig{URL: "http://localhost:8989"},
		Punishment: PunishmentConfig{
			TrackingPeriodDays: 30,
			ThresholdsGB: LevelValues{
				Warning: 500,
				Mild:    750,
				Severe:  1000,
				Maximum: 1500,
			},
			CooldownDays: LevelValues{
				Warning: 3,
				Mild:    5,
				Severe:  7,
				Maximum: 14,
			},
			ReductionPercent: LevelValues{
				Warning: 0,
				Mild:    5,
				Severe:  10,
				Maximum: 15,
			},
		},
		Database: DatabaseConfig{
			Path:      "judgarr.duckdb",
			MaxMemory: "512MB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Notifications: NotificationsConfig{
			Discord: DiscordConfig{Enabled: false},
			SMTP: SMTPConfig{
				Enabled: false,
				Port:    587,
				UseTLS:  true,
			},
		},
		Server: ServerConfig{
			Enabled:         false,
			Host:            "0.0.0.0",
			Port:            5056,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
