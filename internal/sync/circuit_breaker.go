// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

/*
circuit_breaker.go - Circuit Breaker Wrapper for the Broker Client

Wraps OverseerrClient with the circuit breaker pattern to prevent
cascading failures when the request broker is unavailable or slow. The
broker is the only upstream every tracking cycle touches for every user,
so a dead broker would otherwise turn each cycle into a full timeout
parade across all users.

DETERMINISM NOTE: The circuit breaker uses real time (via sony/gobreaker)
for its interval and timeout calculations. Tests should mock the
underlying client, not the breaker.
*/

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/judgarr/internal/logging"
	"github.com/tomtom215/judgarr/internal/metrics"
	"github.com/tomtom215/judgarr/internal/models"
)

// CircuitBreakerClient wraps OverseerrClient with circuit breaker
// protection. It implements OverseerrClientInterface and can be dropped in
// wherever the raw client is used.
type CircuitBreakerClient struct {
	client OverseerrClientInterface
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// Ensure CircuitBreakerClient implements OverseerrClientInterface
var _ OverseerrClientInterface = (*CircuitBreakerClient)(nil)

// NewCircuitBreakerClient wraps client with a circuit breaker.
// Configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewCircuitBreakerClient(client OverseerrClientInterface) *CircuitBreakerClient {
	cbName := "overseerr-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps a broker API call with circuit breaker protection.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()

	return result, nil
}

// castResult safely type-casts the circuit breaker result with error
// checking.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// castSlice is the castResult counterpart for slice-valued calls.
func castSlice[T any](result interface{}, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.([]T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// GetUserRequests retrieves one page of a user's requests with circuit breaker protection
func (cbc *CircuitBreakerClient) GetUserRequests(ctx context.Context, userID string, take, skip int, status string) (*models.OverseerrRequestsResponse, error) {
	return castResult[models.OverseerrRequestsResponse](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetUserRequests(ctx, userID, take, skip, status)
	}))
}

// GetAllUserRequests retrieves a user's requests within a window with circuit breaker protection
func (cbc *CircuitBreakerClient) GetAllUserRequests(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.OverseerrRequest, error) {
	return castSlice[models.OverseerrRequest](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetAllUserRequests(ctx, userID, startDate, endDate)
	}))
}

// GetUser retrieves a broker user with circuit breaker protection
func (cbc *CircuitBreakerClient) GetUser(ctx context.Context, userID string) (*models.OverseerrUser, error) {
	return castResult[models.OverseerrUser](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetUser(ctx, userID)
	}))
}

// GetAllUsers retrieves all broker users with circuit breaker protection
func (cbc *CircuitBreakerClient) GetAllUsers(ctx context.Context) ([]models.OverseerrUser, error) {
	return castSlice[models.OverseerrUser](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetAllUsers(ctx)
	}))
}

// GetUserQuota retrieves a user's quota with circuit breaker protection
func (cbc *CircuitBreakerClient) GetUserQuota(ctx context.Context, userID string) (*models.OverseerrUserQuota, error) {
	return castResult[models.OverseerrUserQuota](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetUserQuota(ctx, userID)
	}))
}

// UpdateUserQuota pushes quota settings down to the broker with circuit breaker protection
func (cbc *CircuitBreakerClient) UpdateUserQuota(ctx context.Context, userID string, settings models.OverseerrQuotaSettings) error {
	_, err := cbc.execute(func() (interface{}, error) {
		return nil, cbc.client.UpdateUserQuota(ctx, userID, settings)
	})
	return err
}

// GetSettings retrieves broker settings with circuit breaker protection
func (cbc *CircuitBreakerClient) GetSettings(ctx context.Context) (*models.OverseerrSettings, error) {
	return castResult[models.OverseerrSettings](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetSettings(ctx)
	}))
}
