// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/judgarr/internal/config"
	"github.com/tomtom215/judgarr/internal/models"
	"github.com/tomtom215/judgarr/internal/punishments"
)

var errStatsNotFound = errors.New("user stats not found")

// memStatsStore implements punishments.Store and StatsStore in memory.
type memStatsStore struct {
	punishments []*models.UserPunishment
	stats       map[string]*models.UserStats
}

func newMemStatsStore() *memStatsStore {
	return &memStatsStore{stats: make(map[string]*models.UserStats)}
}

func (s *memStatsStore) CreatePunishment(ctx context.Context, p *models.UserPunishment) error {
	for _, existing := range s.punishments {
		if existing.UserID == p.UserID {
			existing.IsActive = false
		}
	}
	cp := *p
	s.punishments = append(s.punishments, &cp)
	return nil
}

func (s *memStatsStore) GetActivePunishment(ctx context.Context, userID string) (*models.UserPunishment, error) {
	for i := len(s.punishments) - 1; i >= 0; i-- {
		if s.punishments[i].UserID == userID && s.punishments[i].IsActive {
			cp := *s.punishments[i]
			return &cp, nil
		}
	}
	return nil, errStatsNotFound
}

func (s *memStatsStore) DeactivateUserPunishments(ctx context.Context, userID string) (int64, error) {
	var affected int64
	for _, p := range s.punishments {
		if p.UserID == userID && p.IsActive {
			p.IsActive = false
			affected++
		}
	}
	return affected, nil
}

func (s *memStatsStore) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	stats, ok := s.stats[userID]
	if !ok {
		return nil, errStatsNotFound
	}
	cp := *stats
	return &cp, nil
}

func (s *memStatsStore) SaveUserStats(ctx context.Context, stats *models.UserStats) error {
	cp := *stats
	s.stats[stats.UserID] = &cp
	return nil
}

func isStatsNotFound(err error) bool { return errors.Is(err, errStatsNotFound) }

func testPunishmentConfig() *config.PunishmentConfig {
	return &config.PunishmentConfig{
		TrackingPeriodDays: 30,
		ThresholdsGB:       config.LevelValues{Warning: 500, Mild: 750, Severe: 1000, Maximum: 1500},
		CooldownDays:       config.LevelValues{Warning: 3, Mild: 5, Severe: 7, Maximum: 14},
		ReductionPercent:   config.LevelValues{Warning: 0, Mild: 5, Severe: 10, Maximum: 15},
	}
}

func newTestService(broker *fakeBroker, radarr *fakeRadarr, store *memStatsStore) *Service {
	agg := NewAggregator(broker, radarr, &fakeSonarr{}, &fakeResolver{}, nil)
	mgr := punishments.NewManager(store, testPunishmentConfig(), nil, nil, isStatsNotFound)
	return NewService(broker, agg, mgr, store, isStatsNotFound, 30)
}

func TestService_Window(t *testing.T) {
	svc := newTestService(&fakeBroker{}, &fakeRadarr{}, newMemStatsStore())

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	start, end := svc.Window(now)

	if !end.Equal(now) {
		t.Errorf("end: expected %v, got %v", now, end)
	}
	if !start.Equal(now.AddDate(0, 0, -30)) {
		t.Errorf("start: expected %v, got %v", now.AddDate(0, 0, -30), start)
	}
}

func TestService_CheckUser_PunishesOverThreshold(t *testing.T) {
	broker := &fakeBroker{requests: []models.OverseerrRequest{
		brokerRequest(1, models.MediaTypeMovie, 550),
	}}
	// 1100GB on one movie pushes the user into SEVERE.
	radarr := &fakeRadarr{sizes: map[int]int64{550: models.GigabytesToBytes(1100)}}
	store := newMemStatsStore()
	svc := newTestService(broker, radarr, store)

	result, err := svc.CheckUser(context.Background(), "42", "alice")
	if err != nil {
		t.Fatalf("CheckUser: %v", err)
	}

	if result.Punishment == nil {
		t.Fatal("expected a punishment")
	}
	if result.Punishment.Level != models.LevelSevere {
		t.Errorf("Level: expected SEVERE, got %s", result.Punishment.Level)
	}
	if result.TotalBytes != models.GigabytesToBytes(1100) {
		t.Errorf("TotalBytes: expected %d, got %d", models.GigabytesToBytes(1100), result.TotalBytes)
	}

	stats := store.stats["42"]
	if stats == nil {
		t.Fatal("stats should be provisioned")
	}
	if stats.RequestLimit != 90 {
		t.Errorf("RequestLimit: expected 90, got %d", stats.RequestLimit)
	}
	if stats.TotalRequests != 1 {
		t.Errorf("TotalRequests: expected 1, got %d", stats.TotalRequests)
	}
	if stats.LastRequestDate == nil {
		t.Error("LastRequestDate should be set")
	}
}

func TestService_CheckUser_UnderThreshold(t *testing.T) {
	broker := &fakeBroker{requests: []models.OverseerrRequest{
		brokerRequest(1, models.MediaTypeMovie, 550),
	}}
	radarr := &fakeRadarr{sizes: map[int]int64{550: models.GigabytesToBytes(50)}}
	store := newMemStatsStore()
	svc := newTestService(broker, radarr, store)

	result, err := svc.CheckUser(context.Background(), "42", "alice")
	if err != nil {
		t.Fatalf("CheckUser: %v", err)
	}
	if result.Punishment != nil {
		t.Fatalf("expected no punishment, got %+v", result.Punishment)
	}
	if store.stats["42"].TotalDataUsage != models.GigabytesToBytes(50) {
		t.Errorf("TotalDataUsage: expected %d, got %d", models.GigabytesToBytes(50), store.stats["42"].TotalDataUsage)
	}
}

func TestService_CheckAllUsers_SkipsBrokenUsers(t *testing.T) {
	broker := &fakeBroker{
		users: []models.OverseerrUser{
			{ID: 1, Username: "alice"},
			{ID: 2, Username: "bob"},
		},
		requests: []models.OverseerrRequest{brokerRequest(1, models.MediaTypeMovie, 550)},
	}
	radarr := &fakeRadarr{sizes: map[int]int64{550: models.GigabytesToBytes(10)}}
	store := newMemStatsStore()
	svc := newTestService(broker, radarr, store)

	summary, err := svc.CheckAllUsers(context.Background())
	if err != nil {
		t.Fatalf("CheckAllUsers: %v", err)
	}

	if summary.UsersChecked != 2 {
		t.Errorf("UsersChecked: expected 2, got %d", summary.UsersChecked)
	}
	if summary.UsersFailed != 0 {
		t.Errorf("UsersFailed: expected 0, got %d", summary.UsersFailed)
	}
	if summary.Punished != 0 {
		t.Errorf("Punished: expected 0, got %d", summary.Punished)
	}
}

func TestUserDataProcessor_AnalyzeRequestPatterns(t *testing.T) {
	p := NewUserDataProcessor()

	requests := []models.UserRequest{
		{MediaType: models.MediaTypeMovie},
		{MediaType: models.MediaTypeMovie},
		{MediaType: models.MediaTypeTV},
	}

	data := p.AnalyzeRequestPatterns("42", requests, 30)

	if data.TotalRequests != 3 {
		t.Errorf("TotalRequests: expected 3, got %d", data.TotalRequests)
	}
	if data.MovieRequests != 2 {
		t.Errorf("MovieRequests: expected 2, got %d", data.MovieRequests)
	}
	if data.TVRequests != 1 {
		t.Errorf("TVRequests: expected 1, got %d", data.TVRequests)
	}
	if want := 0.1; data.RequestFrequency != want {
		t.Errorf("RequestFrequency: expected %.2f, got %.2f", want, data.RequestFrequency)
	}
}

func TestUserDataProcessor_ZeroWindow(t *testing.T) {
	p := NewUserDataProcessor()

	data := p.AnalyzeRequestPatterns("42", []models.UserRequest{{MediaType: models.MediaTypeMovie}}, 0)
	if data.RequestFrequency != 1 {
		t.Errorf("RequestFrequency with zero window: expected 1, got %.2f", data.RequestFrequency)
	}
}
