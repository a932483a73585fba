// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package tracking

import (
	"time"

	"github.com/tomtom215/judgarr/internal/models"
)

// UserDataProcessor derives request-pattern summaries from annotated
// request lists. Pure and stateless; the snapshots it produces are
// ephemeral display data, never persisted.
type UserDataProcessor struct{}

// NewUserDataProcessor creates a processor.
func NewUserDataProcessor() *UserDataProcessor {
	return &UserDataProcessor{}
}

// AnalyzeRequestPatterns summarizes a user's requests over a window:
// counts per media kind and average requests per day. windowDays at or
// below zero counts as one day so the frequency stays defined.
func (p *UserDataProcessor) AnalyzeRequestPatterns(userID string, requests []models.UserRequest, windowDays int) models.UserData {
	if windowDays <= 0 {
		windowDays = 1
	}

	data := models.UserData{
		UserID:        userID,
		TotalRequests: len(requests),
		LastProcessed: time.Now().UTC(),
	}

	for _, req := range requests {
		switch req.MediaType {
		case models.MediaTypeMovie:
			data.MovieRequests++
		case models.MediaTypeTV:
			data.TVRequests++
		}
	}

	data.RequestFrequency = float64(len(requests)) / float64(windowDays)

	return data
}
