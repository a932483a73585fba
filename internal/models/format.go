// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package models

import "fmt"

// Byte size units. Binary, not SI: thresholds are configured in GiB-style
// gigabytes (2^30 bytes).
const (
	GB int64 = 1 << 30
	TB int64 = GB * 1024
)

// FormatSize renders a byte count as a human-readable string with one
// decimal place ("1.5 GB", "2.3 TB"). Sub-gigabyte values are shown as
// plain bytes.
func FormatSize(sizeBytes int64) string {
	switch {
	case sizeBytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(sizeBytes)/float64(TB))
	case sizeBytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(sizeBytes)/float64(GB))
	default:
		return fmt.Sprintf("%d B", sizeBytes)
	}
}

// GigabytesToBytes converts a configured gigabyte threshold to bytes.
func GigabytesToBytes(gb float64) int64 {
	return int64(gb * float64(GB))
}

// BytesToGigabytes converts bytes to gigabytes for display.
func BytesToGigabytes(b int64) float64 {
	return float64(b) / float64(GB)
}
