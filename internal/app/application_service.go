package app

import (
	"context"
	"fmt"
	"time"

	"farmlink/internal/common"
	"farmlink/internal/domain/analytics"
	"farmlink/internal/domain/application"
	"farmlink/internal/domain/job"
)

// ApplicationService runs the application state machine: pending rows
// created by workers, accepted or rejected by the owning farmer, and the
// reapply cooldown after a rejection. The clock is a field so the cooldown
// can be tested without waiting a day.
type ApplicationService struct {
	applications application.Repository
	jobs         job.Repository
	analytics    analytics.Repository
	clock        func() time.Time
}

func NewApplicationService(applications application.Repository, jobs job.Repository, analytics analytics.Repository) *ApplicationService {
	return &ApplicationService{applications: applications, jobs: jobs, analytics: analytics, clock: time.Now}
}

// Apply creates a fresh pending application for the (job, worker) pair.
// A pair holds at most one live (pending or accepted) row at a time;
// after a rejection the worker may come back once the cooldown elapses,
// and the new row sits beside the rejected one rather than replacing it.
func (s *ApplicationService) Apply(ctx context.Context, jobID, workerID common.UUID) (*application.Application, error) {
	posting, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if posting.Status != job.StatusOpen {
		return nil, common.NewError(common.CodeNotEligible, "job is not open for applications", nil)
	}
	if posting.AcceptedCount() >= posting.RequiredWorkers {
		return nil, common.NewError(common.CodeNotEligible, "job already has all required workers", nil)
	}
	history, err := s.applications.ListByJobAndWorker(ctx, jobID, workerID)
	if err != nil {
		return nil, err
	}
	for _, previous := range history {
		if previous.Active() {
			return nil, common.NewError(common.CodeNotEligible, "already applied to this job", nil)
		}
	}
	if remaining := remainingCooldown(history, s.clock().UTC()); remaining > 0 {
		hours := application.CooldownHours(remaining)
		return nil, common.NewError(common.CodeCooldownActive, fmt.Sprintf("rejected recently: you can reapply to this job in %d hours", hours), nil)
	}
	created, err := s.applications.Create(ctx, application.Application{
		JobID:    jobID,
		WorkerID: workerID,
		Status:   application.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "application.created", UserID: &workerID, Payload: analyticsPayload(ctx, map[string]string{"application_id": created.ID.String(), "job_id": jobID.String()})})
	return created, nil
}

// Accept moves a pending application to accepted and adds the worker to
// the job's accepted set. Both records are written whole, application
// first, and the job's status is recomputed in the same write.
func (s *ApplicationService) Accept(ctx context.Context, farmerID, applicationID common.UUID) (*application.Application, error) {
	item, posting, err := s.ownedApplication(ctx, farmerID, applicationID)
	if err != nil {
		return nil, err
	}
	if posting.Status == job.StatusCompleted {
		return nil, common.NewError(common.CodeTerminalState, "job is completed and can no longer change", nil)
	}
	if item.Status != application.StatusPending {
		return nil, common.NewError(common.CodeValidation, "only pending applications can be accepted", nil)
	}
	// Re-accepting a worker who already holds a slot is a no-op for the
	// set, so capacity only blocks genuinely new members.
	if !posting.HasAcceptedWorker(item.WorkerID) && posting.AcceptedCount() >= posting.RequiredWorkers {
		return nil, common.NewError(common.CodeValidation, "job already has all required workers accepted", nil)
	}
	item.Status = application.StatusAccepted
	updated, err := s.applications.Put(ctx, *item)
	if err != nil {
		return nil, err
	}
	posting.AddAcceptedWorker(item.WorkerID)
	posting.Status = job.DeriveStatus(posting.Status, posting.AcceptedCount(), posting.RequiredWorkers)
	if _, err := s.jobs.Put(ctx, *posting); err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "application.accepted", UserID: &farmerID, Payload: analyticsPayload(ctx, map[string]string{"application_id": applicationID.String(), "job_id": posting.ID.String()})})
	return updated, nil
}

// Reject moves a pending application to rejected and stamps the moment,
// which starts the reapply cooldown. Status and timestamp land in one
// whole-record write.
func (s *ApplicationService) Reject(ctx context.Context, farmerID, applicationID common.UUID) (*application.Application, error) {
	item, posting, err := s.ownedApplication(ctx, farmerID, applicationID)
	if err != nil {
		return nil, err
	}
	if item.Status != application.StatusPending {
		return nil, common.NewError(common.CodeValidation, "only pending applications can be rejected", nil)
	}
	rejectedAt := s.clock().UTC()
	item.Status = application.StatusRejected
	item.RejectedAt = &rejectedAt
	updated, err := s.applications.Put(ctx, *item)
	if err != nil {
		return nil, err
	}
	derived := job.DeriveStatus(posting.Status, posting.AcceptedCount(), posting.RequiredWorkers)
	if derived != posting.Status {
		posting.Status = derived
		if _, err := s.jobs.Put(ctx, *posting); err != nil {
			return nil, err
		}
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "application.rejected", UserID: &farmerID, Payload: analyticsPayload(ctx, map[string]string{"application_id": applicationID.String(), "job_id": posting.ID.String()})})
	return updated, nil
}

func (s *ApplicationService) Get(ctx context.Context, id common.UUID) (*application.Application, error) {
	return s.applications.GetByID(ctx, id)
}

func (s *ApplicationService) ListByWorker(ctx context.Context, workerID common.UUID) ([]application.Application, error) {
	return s.applications.ListByWorker(ctx, workerID)
}

func (s *ApplicationService) ListByFarmer(ctx context.Context, farmerID common.UUID) ([]application.Application, error) {
	return s.applications.ListByOwner(ctx, farmerID)
}

func (s *ApplicationService) ownedApplication(ctx context.Context, farmerID, applicationID common.UUID) (*application.Application, *job.Job, error) {
	item, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	posting, err := s.jobs.GetByID(ctx, item.JobID)
	if err != nil {
		return nil, nil, err
	}
	if posting.OwnerID != farmerID {
		return nil, nil, common.NewError(common.CodeForbidden, "application belongs to another farmer's job", nil)
	}
	return item, posting, nil
}

// remainingCooldown returns how much of the reapply cooldown is still
// running given the pair's history, measured from the latest rejection.
func remainingCooldown(history []application.Application, now time.Time) time.Duration {
	var latest time.Time
	for _, previous := range history {
		if previous.Status != application.StatusRejected || previous.RejectedAt == nil {
			continue
		}
		if previous.RejectedAt.After(latest) {
			latest = *previous.RejectedAt
		}
	}
	if latest.IsZero() {
		return 0
	}
	return application.CooldownRemaining(latest, now)
}
