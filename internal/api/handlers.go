// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/tomtom215/judgarr/internal/logging"
	"github.com/tomtom215/judgarr/internal/models"
	"github.com/tomtom215/judgarr/internal/users"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// healthResponse reports process and storage liveness.
type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// userStatusResponse augments the stored status with derived fields so
// clients do not reimplement cooldown arithmetic.
type userStatusResponse struct {
	*models.UserStatus
	IsPunished            bool `json:"is_punished"`
	RemainingCooldownDays int  `json:"remaining_cooldown_days"`
	CurrentRequestLimit   int  `json:"current_request_limit"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleHealth reports liveness plus a database ping when available.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Database:  "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	status := http.StatusOK
	if rt.db != nil {
		if err := rt.db.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	} else {
		resp.Database = "not configured"
	}

	writeJSON(w, status, resp)
}

// handleUserStatus serves a single user's standing. Unknown users are
// provisioned, not 404ed, matching the tracking pipeline's behavior.
func (rt *Router) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}

	status, err := rt.users.GetUserStatus(r.Context(), userID)
	if err != nil {
		logging.Error().Err(err).Str("user_id", userID).Msg("Failed to get user status")
		writeError(w, http.StatusInternalServerError, "failed to get user status")
		return
	}

	writeJSON(w, http.StatusOK, userStatusResponse{
		UserStatus:            status,
		IsPunished:            status.IsPunished(),
		RemainingCooldownDays: status.RemainingCooldownDays(),
		CurrentRequestLimit:   status.CurrentRequestLimit(),
	})
}

// handlePunishedUsers lists users currently under an unexpired punishment.
func (rt *Router) handlePunishedUsers(w http.ResponseWriter, r *http.Request) {
	punished, err := rt.users.ListPunishedUsers(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list punished users")
		writeError(w, http.StatusInternalServerError, "failed to list punished users")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Users []users.PunishedUser `json:"users"`
		Count int                  `json:"count"`
	}{Users: punished, Count: len(punished)})
}
