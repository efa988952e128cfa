// Package lifecycle decides when a task is forced into the expired state.
//
// The same functions back the server sweep and the client board so both sides
// always agree on when a task expires.
package lifecycle

import (
	"taskboard/internal/domain"
	"time"
)

// DefaultThresholdMinutes is three days.
const DefaultThresholdMinutes = 4320

// Evaluate reports whether t must expire at now and why. Done and Expired
// tasks never fire. Checks run in order: past due date, duration over the
// threshold, age over the threshold.
func Evaluate(t domain.Task, now time.Time, thresholdMinutes int) (domain.ExpiryReason, bool) {
	if t.Status.Terminal() {
		return domain.ReasonNone, false
	}

	if !t.DueDate.IsZero() && t.DueDate.Before(now) {
		return domain.ReasonPastDue, true
	}

	if t.Duration != nil && *t.Duration > thresholdMinutes {
		return domain.ReasonDurationExceeded, true
	}

	if now.Sub(t.CreatedAt) > Threshold(thresholdMinutes) {
		return domain.ReasonAgeExceeded, true
	}

	return domain.ReasonNone, false
}

// Apply expires t in place when Evaluate fires and reports whether it changed.
func Apply(t *domain.Task, now time.Time, thresholdMinutes int) bool {
	reason, expire := Evaluate(*t, now, thresholdMinutes)
	if !expire {
		return false
	}
	t.Status = domain.StatusExpired
	t.ExpiredReason = reason
	// a clock behind the creator's must not move updatedAt before createdAt
	t.UpdatedAt = now
	if now.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}
	return true
}

func Threshold(minutes int) time.Duration {
	return time.Duration(minutes) * time.Minute
}
