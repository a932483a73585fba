// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

// Package sync implements the REST clients for the three upstream services
// Judgarr composes:
//
//   - Overseerr: the request broker (who requested what, quotas, users)
//   - Radarr: the movie library manager (on-disk movie sizes)
//   - Sonarr: the TV library manager (on-disk series/season sizes)
//
// All clients authenticate with a static X-Api-Key header and issue
// single-shot requests: no retries and no backoff. Failures surface through
// the typed error taxonomy in errors.go (authentication, rate-limited,
// not-found, generic upstream) so callers can decide whether to skip or
// abort. The Overseerr client is additionally available behind a circuit
// breaker for the batch check cycle.
package sync
