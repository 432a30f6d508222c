package job

import (
	"time"

	"farmlink/internal/common"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusFilled     Status = "filled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Job is a posting by a farmer: a wage, a number of openings, and the workers
// accepted so far. Status is derived from the acceptance state except for the
// two farmer-controlled states (in-progress, completed).
type Job struct {
	ID                common.UUID   `json:"id"`
	OwnerID           common.UUID   `json:"owner_id"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	Location          string        `json:"location"`
	Wage              int64         `json:"wage"`
	RequiredWorkers   int           `json:"required_workers"`
	AcceptedWorkerIDs []common.UUID `json:"accepted_worker_ids"`
	Status            Status        `json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// AcceptedCount treats a nil slice as the empty set; callers must not
// default the slice themselves.
func (j Job) AcceptedCount() int {
	return len(j.AcceptedWorkerIDs)
}

func (j Job) HasAcceptedWorker(workerID common.UUID) bool {
	for _, id := range j.AcceptedWorkerIDs {
		if id == workerID {
			return true
		}
	}
	return false
}

// AddAcceptedWorker adds workerID to the accepted set. Re-adding an existing
// member is a no-op, not an error.
func (j *Job) AddAcceptedWorker(workerID common.UUID) {
	if j.HasAcceptedWorker(workerID) {
		return
	}
	j.AcceptedWorkerIDs = append(j.AcceptedWorkerIDs, workerID)
}
