package application

import (
	"time"

	"farmlink/internal/common"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// ReapplyCooldown is how long a worker must wait after a rejection before
// applying to the same job again.
const ReapplyCooldown = 24 * time.Hour

// Application is one worker's request to fill one slot on a job. A rejection
// is never overwritten: reapplying creates a fresh row, so the pair's history
// accumulates one rejected record per cycle.
type Application struct {
	ID         common.UUID `json:"id"`
	JobID      common.UUID `json:"job_id"`
	WorkerID   common.UUID `json:"worker_id"`
	Status     Status      `json:"status"`
	RejectedAt *time.Time  `json:"rejected_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Active reports whether the application still occupies the worker's single
// live slot for its job (pending or accepted, i.e. not rejected).
func (a Application) Active() bool {
	return a.Status == StatusPending || a.Status == StatusAccepted
}

// CooldownRemaining returns how much of the reapply cooldown is left at now,
// zero once it has fully elapsed.
func CooldownRemaining(rejectedAt, now time.Time) time.Duration {
	remaining := ReapplyCooldown - now.Sub(rejectedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CooldownHours converts a remaining cooldown to whole hours for display,
// rounding up so "1h 1m left" reads as 2 hours.
func CooldownHours(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	hours := int(remaining / time.Hour)
	if remaining%time.Hour != 0 {
		hours++
	}
	return hours
}
