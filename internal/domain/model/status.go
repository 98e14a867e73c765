package model

import "strings"

// Canonical payment statuses. Gateway statuses outside this vocabulary are
// carried through upper-cased rather than rejected.
const (
	StatusPending    = "PENDING"
	StatusPaid       = "PAID"
	StatusProcessing = "PROCESSING"
	StatusCanceled   = "CANCELED"
	StatusUnknown    = "UNKNOWN"
)

// Normalize maps a raw gateway status string to the canonical vocabulary.
// Matching is case-insensitive; an empty input maps to UNKNOWN and anything
// outside the table passes through upper-cased.
func Normalize(raw string) string {
	if raw == "" {
		return StatusUnknown
	}

	switch strings.ToUpper(raw) {
	case "PAID", "COMPLETED", "APPROVED":
		return StatusPaid
	case "PENDING", "IN_ANALYSIS", "WAITING":
		return StatusProcessing
	case "DECLINED", "CANCELED", "REFUNDED":
		return StatusCanceled
	default:
		return strings.ToUpper(raw)
	}
}
