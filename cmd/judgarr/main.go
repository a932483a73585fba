// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

// Package main is the Judgarr command line entry point.
//
// Judgarr tracks per-user media download volume through Overseerr,
// Radarr, and Sonarr, and escalates punishments when users exceed
// configured thresholds over a rolling window.
//
// Subcommands:
//
//	check     evaluate one user (-user) or everyone (-all)
//	status    show a user's current standing
//	punished  list users under an active punishment
//	reset     clear a user's punishment state
//	override  administratively remove or escalate a punishment
//	serve     run the read-only status API
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): JUDGARR_-prefixed environment variables, a config.yaml
// file, and built-in defaults.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/judgarr/internal/api"
	"github.com/tomtom215/judgarr/internal/config"
	"github.com/tomtom215/judgarr/internal/correlation"
	"github.com/tomtom215/judgarr/internal/database"
	"github.com/tomtom215/judgarr/internal/logging"
	"github.com/tomtom215/judgarr/internal/models"
	"github.com/tomtom215/judgarr/internal/notifications"
	"github.com/tomtom215/judgarr/internal/punishments"
	syncclient "github.com/tomtom215/judgarr/internal/sync"
	"github.com/tomtom215/judgarr/internal/tracking"
	"github.com/tomtom215/judgarr/internal/users"
)

const usage = `Usage: judgarr <command> [flags]

Commands:
  check     Evaluate user data usage and apply punishments
  status    Show a user's current standing
  punished  List users under an active punishment
  reset     Clear a user's punishment state
  override  Remove or escalate a punishment
  serve     Run the read-only status API

Run 'judgarr <command> -h' for command-specific flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "check":
		err = runCheck(args)
	case "status":
		err = runStatus(args)
	case "punished":
		err = runPunished(args)
	case "reset":
		err = runReset(args)
	case "override":
		err = runOverride(args)
	case "serve":
		err = runServe(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "judgarr: unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		logging.Error().Err(err).Str("command", cmd).Msg("Command failed")
		os.Exit(1)
	}
}

// app bundles the wired components shared by all subcommands.
type app struct {
	cfg      *config.Config
	db       *database.DB
	tracker  *tracking.Service
	punisher *punishments.Manager
	users    *users.Manager
}

// isNotFound classifies the database package's miss sentinels for the
// managers, which deliberately do not import it.
func isNotFound(err error) bool {
	return errors.Is(err, database.ErrPunishmentNotFound) ||
		errors.Is(err, database.ErrStatsNotFound) ||
		errors.Is(err, database.ErrRequestNotFound)
}

// newApp loads configuration and wires the full component graph.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	overseerr := syncclient.NewCircuitBreakerClient(
		syncclient.NewOverseerrClient(cfg.Overseerr.URL, cfg.Overseerr.APIKey),
	)
	radarr := syncclient.NewRadarrClient(cfg.Radarr.URL, cfg.Radarr.APIKey)
	sonarr := syncclient.NewSonarrClient(cfg.Sonarr.URL, cfg.Sonarr.APIKey)
	resolver := correlation.NewService(cfg.TMDB.APIKey)
	notifier := notifications.NewManager(&cfg.Notifications)

	punisher := punishments.NewManager(db, &cfg.Punishment, overseerr, notifier, isNotFound)
	aggregator := tracking.NewAggregator(overseerr, radarr, sonarr, resolver, db)
	tracker := tracking.NewService(overseerr, aggregator, punisher, db, isNotFound, cfg.Punishment.TrackingPeriodDays)
	userMgr := users.NewManager(db, punisher, overseerr, isNotFound, cfg.Punishment.TrackingPeriodDays)

	return &app{
		cfg:      cfg,
		db:       db,
		tracker:  tracker,
		punisher: punisher,
		users:    userMgr,
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database")
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	userID := fs.String("user", "", "check a single user by Overseerr ID")
	all := fs.Bool("all", false, "check every Overseerr user")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" && !*all {
		return errors.New("check requires -user or -all")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	if *all {
		summary, err := a.tracker.CheckAllUsers(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Checked %d users (%d failed) in %s; %d punished\n",
			summary.UsersChecked, summary.UsersFailed, summary.Duration.Round(time.Millisecond), summary.Punished)
		return nil
	}

	result, err := a.tracker.CheckUser(ctx, *userID, "")
	if err != nil {
		return err
	}

	fmt.Printf("User %s: %s across %d requests\n",
		result.UserID, models.FormatSize(result.TotalBytes), len(result.Requests))
	if result.Punishment != nil {
		fmt.Printf("Punishment applied: %s until %s\n",
			result.Punishment.Level, result.Punishment.EndDate.Format("2006-01-02"))
	}
	return nil
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	userID := fs.String("user", "", "Overseerr user ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return errors.New("status requires -user")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	status, err := a.users.GetUserStatus(ctx, *userID)
	if err != nil {
		return err
	}

	fmt.Printf("User %s\n", status.UserID)
	fmt.Printf("  Requests:    %d (limit %d)\n", status.TotalRequests, status.CurrentRequestLimit())
	fmt.Printf("  Data usage:  %s\n", models.FormatSize(status.TotalDataUsage))
	if status.LastRequestDate != nil {
		fmt.Printf("  Last request: %s\n", status.LastRequestDate.Format("2006-01-02"))
	}
	if status.IsPunished() {
		p := status.CurrentPunishment
		fmt.Printf("  Punished:    %s, %d days remaining\n", p.Level, status.RemainingCooldownDays())
		fmt.Printf("  Reason:      %s\n", p.Reason)
	} else {
		fmt.Println("  Punished:    no")
	}
	return nil
}

func runPunished(args []string) error {
	fs := flag.NewFlagSet("punished", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	punished, err := a.users.ListPunishedUsers(ctx)
	if err != nil {
		return err
	}

	if len(punished) == 0 {
		fmt.Println("No users are currently punished")
		return nil
	}

	for _, pu := range punished {
		name := pu.Stats.Username
		if name == "" {
			name = pu.Stats.UserID
		}
		fmt.Printf("%s: %s until %s (%s, limit %d)\n",
			name, pu.Punishment.Level, pu.Punishment.EndDate.Format("2006-01-02"),
			models.FormatSize(pu.Punishment.DataUsage), pu.Stats.RequestLimit)
	}
	return nil
}

func runReset(args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	userID := fs.String("user", "", "Overseerr user ID")
	reason := fs.String("reason", "administrative reset", "reason recorded with the reset")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return errors.New("reset requires -user")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	if a.users.ResetUserStatus(ctx, *userID, *reason) {
		fmt.Printf("User %s reset\n", *userID)
	} else {
		fmt.Printf("User %s reset incomplete; see logs\n", *userID)
	}
	return nil
}

func runOverride(args []string) error {
	fs := flag.NewFlagSet("override", flag.ExitOnError)
	userID := fs.String("user", "", "Overseerr user ID")
	action := fs.String("action", "", "override action: remove or escalate")
	reason := fs.String("reason", "administrative override", "reason recorded with the override")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" || *action == "" {
		return errors.New("override requires -user and -action")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	if err := a.punisher.OverridePunishment(ctx, *userID, *action, *reason); err != nil {
		return err
	}
	fmt.Printf("Override %q applied to user %s\n", *action, *userID)
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	checkInterval := fs.Duration("check-interval", 0, "periodically run a full user check (0 disables)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	if *checkInterval > 0 {
		go runCheckLoop(ctx, a.tracker, *checkInterval)
	}

	router := api.NewRouter(a.cfg.Server, a.users, a.db)
	return router.Serve(ctx)
}

// runCheckLoop evaluates all users on a fixed interval until ctx is
// cancelled. Failures are logged; the loop never stops on error.
func runCheckLoop(ctx context.Context, tracker *tracking.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", interval).Msg("Periodic check loop started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary, err := tracker.CheckAllUsers(ctx)
			if err != nil {
				logging.Error().Err(err).Msg("Periodic check failed")
				continue
			}
			logging.Info().
				Int("users_checked", summary.UsersChecked).
				Int("users_failed", summary.UsersFailed).
				Int("punished", summary.Punished).
				Dur("duration", summary.Duration).
				Msg("Periodic check complete")
		}
	}
}
