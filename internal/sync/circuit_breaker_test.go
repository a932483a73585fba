// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/judgarr/internal/models"
)

// mockOverseerrClient is a scriptable OverseerrClientInterface for breaker
// tests.
type mockOverseerrClient struct {
	err   error
	user  *models.OverseerrUser
	users []models.OverseerrUser
}

func (m *mockOverseerrClient) GetUserRequests(ctx context.Context, userID string, take, skip int, status string) (*models.OverseerrRequestsResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.OverseerrRequestsResponse{}, nil
}

func (m *mockOverseerrClient) GetAllUserRequests(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.OverseerrRequest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.OverseerrRequest{}, nil
}

func (m *mockOverseerrClient) GetUser(ctx context.Context, userID string) (*models.OverseerrUser, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockOverseerrClient) GetAllUsers(ctx context.Context) ([]models.OverseerrUser, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users, nil
}

func (m *mockOverseerrClient) GetUserQuota(ctx context.Context, userID string) (*models.OverseerrUserQuota, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.OverseerrUserQuota{}, nil
}

func (m *mockOverseerrClient) UpdateUserQuota(ctx context.Context, userID string, settings models.OverseerrQuotaSettings) error {
	return m.err
}

func (m *mockOverseerrClient) GetSettings(ctx context.Context) (*models.OverseerrSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.OverseerrSettings{}, nil
}

func TestCircuitBreakerClient_PassThrough(t *testing.T) {
	mock := &mockOverseerrClient{
		user:  &models.OverseerrUser{ID: 42, Email: "user@example.com"},
		users: []models.OverseerrUser{{ID: 1}, {ID: 2}},
	}
	cbc := NewCircuitBreakerClient(mock)

	user, err := cbc.GetUser(context.Background(), "42")
	checkNoError(t, "GetUser", err)
	checkIntEqual(t, "user ID", user.ID, 42)

	users, err := cbc.GetAllUsers(context.Background())
	checkNoError(t, "GetAllUsers", err)
	checkIntEqual(t, "users", len(users), 2)

	err = cbc.UpdateUserQuota(context.Background(), "42", models.OverseerrQuotaSettings{})
	checkNoError(t, "UpdateUserQuota", err)
}

func TestCircuitBreakerClient_ErrorPropagation(t *testing.T) {
	mock := &mockOverseerrClient{err: ErrAuthentication}
	cbc := NewCircuitBreakerClient(mock)

	_, err := cbc.GetUser(context.Background(), "42")
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

// TestCircuitBreakerClient_OpensAfterFailures drives the breaker past its
// trip threshold and verifies subsequent calls are rejected without
// reaching the wrapped client.
func TestCircuitBreakerClient_OpensAfterFailures(t *testing.T) {
	mock := &mockOverseerrClient{err: &UpstreamError{Service: "overseerr", StatusCode: 500}}
	cbc := NewCircuitBreakerClient(mock)

	// 10 failures at 100% failure rate trips the breaker.
	for i := 0; i < 10; i++ {
		if _, err := cbc.GetUser(context.Background(), "42"); err == nil {
			t.Fatalf("call %d: expected error, got nil", i)
		}
	}

	mock.err = nil // upstream recovers, but the circuit is open
	_, err := cbc.GetUser(context.Background(), "42")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}
}
