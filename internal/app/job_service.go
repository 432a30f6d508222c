package app

import (
	"context"
	"fmt"
	"strings"

	"farmlink/internal/common"
	"farmlink/internal/domain/analytics"
	"farmlink/internal/domain/application"
	"farmlink/internal/domain/job"
	"farmlink/internal/domain/message"
)

type Logger interface {
	Info(msg string)
	Error(msg string)
}

// JobService owns the job lifecycle: farmer edits gated by the wage and
// capacity rules, and the status recompute pass that keeps every job's
// derived status in line with its acceptance state.
type JobService struct {
	jobs         job.Repository
	applications application.Repository
	messages     message.Repository
	analytics    analytics.Repository
	logger       Logger
}

func NewJobService(jobs job.Repository, applications application.Repository, messages message.Repository, analytics analytics.Repository, logger Logger) *JobService {
	return &JobService{jobs: jobs, applications: applications, messages: messages, analytics: analytics, logger: logger}
}

func (s *JobService) Create(ctx context.Context, j job.Job) (*job.Job, error) {
	if strings.TrimSpace(j.Title) == "" {
		return nil, common.NewError(common.CodeValidation, "title is required", nil)
	}
	if strings.TrimSpace(j.Description) == "" {
		return nil, common.NewError(common.CodeValidation, "description is required", nil)
	}
	if strings.TrimSpace(j.Location) == "" {
		return nil, common.NewError(common.CodeValidation, "location is required", nil)
	}
	if j.Wage <= 0 {
		return nil, common.NewValidationError("invalid wage", map[string]string{"wage": "wage must be positive"})
	}
	if j.RequiredWorkers < 1 {
		return nil, common.NewValidationError("invalid required workers", map[string]string{"required_workers": "required workers must be at least 1"})
	}
	// A job always starts open with nobody accepted, whatever the caller sent.
	j.Status = job.StatusOpen
	j.AcceptedWorkerIDs = nil
	created, err := s.jobs.Create(ctx, j)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "job.created", UserID: &j.OwnerID, Payload: analyticsPayload(ctx, map[string]string{"job_id": created.ID.String()})})
	return created, nil
}

// Update edits the presentation fields. Wage, capacity, and status have
// their own gated operations and are left untouched here.
func (s *JobService) Update(ctx context.Context, ownerID, jobID common.UUID, title, description, location string) (*job.Job, error) {
	current, err := s.ownedMutableJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, common.NewError(common.CodeValidation, "title is required", nil)
	}
	current.Title = title
	current.Description = description
	current.Location = location
	current.Status = job.DeriveStatus(current.Status, current.AcceptedCount(), current.RequiredWorkers)
	updated, err := s.jobs.Put(ctx, *current)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "job.updated", UserID: &ownerID, Payload: analyticsPayload(ctx, map[string]string{"job_id": jobID.String()})})
	return updated, nil
}

func (s *JobService) EditWage(ctx context.Context, ownerID, jobID common.UUID, wage int64) (*job.Job, error) {
	current, err := s.ownedMutableJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	count, err := s.applications.CountByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := job.ValidateWageChange(current.Wage, wage, count); err != nil {
		return nil, err
	}
	current.Wage = wage
	current.Status = job.DeriveStatus(current.Status, current.AcceptedCount(), current.RequiredWorkers)
	updated, err := s.jobs.Put(ctx, *current)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "job.wage_changed", UserID: &ownerID, Payload: analyticsPayload(ctx, map[string]string{"job_id": jobID.String(), "wage": fmt.Sprintf("%d", wage)})})
	return updated, nil
}

func (s *JobService) EditRequiredWorkers(ctx context.Context, ownerID, jobID common.UUID, count int) (*job.Job, error) {
	current, err := s.ownedMutableJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	applicationCount, err := s.applications.CountByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := job.ValidateRequiredWorkers(count, current.AcceptedCount(), applicationCount, current.RequiredWorkers); err != nil {
		return nil, err
	}
	current.RequiredWorkers = count
	current.Status = job.DeriveStatus(current.Status, current.AcceptedCount(), current.RequiredWorkers)
	updated, err := s.jobs.Put(ctx, *current)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "job.capacity_changed", UserID: &ownerID, Payload: analyticsPayload(ctx, map[string]string{"job_id": jobID.String(), "required_workers": fmt.Sprintf("%d", count)})})
	return updated, nil
}

func (s *JobService) EditStatus(ctx context.Context, ownerID, jobID common.UUID, status job.Status) (*job.Job, error) {
	normalized, err := normalizeJobStatus(status)
	if err != nil {
		return nil, err
	}
	current, err := s.ownedMutableJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	// The recompute runs once more over the manual edit, so e.g. setting
	// open on an already-full job immediately lands back on filled.
	current.Status = job.DeriveStatus(normalized, current.AcceptedCount(), current.RequiredWorkers)
	updated, err := s.jobs.Put(ctx, *current)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "job.status_changed", UserID: &ownerID, Payload: analyticsPayload(ctx, map[string]string{"job_id": jobID.String(), "status": string(updated.Status)})})
	return updated, nil
}

// Delete removes a job and everything hanging off it: applications and
// their message threads. Completed jobs are kept as history and refuse
// deletion.
func (s *JobService) Delete(ctx context.Context, ownerID, jobID common.UUID) error {
	current, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if current.OwnerID != ownerID {
		return common.NewError(common.CodeForbidden, "job belongs to another farmer", nil)
	}
	if current.Status == job.StatusCompleted {
		return common.NewError(common.CodeTerminalState, "completed jobs are kept as history and cannot be deleted", nil)
	}
	apps, err := s.applications.ListByJob(ctx, jobID)
	if err != nil {
		return err
	}
	applicationIDs := make([]common.UUID, 0, len(apps))
	for _, a := range apps {
		applicationIDs = append(applicationIDs, a.ID)
	}
	if err := s.messages.DeleteByApplications(ctx, applicationIDs); err != nil {
		return err
	}
	if err := s.applications.DeleteByJob(ctx, jobID); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "job.deleted", UserID: &ownerID, Payload: analyticsPayload(ctx, map[string]string{"job_id": jobID.String(), "applications": fmt.Sprintf("%d", len(applicationIDs))})})
	return nil
}

func (s *JobService) Get(ctx context.Context, id common.UUID) (*job.Job, error) {
	item, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err = s.repair(ctx, item)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "job.viewed", Payload: analyticsPayload(ctx, map[string]string{"job_id": item.ID.String()})})
	return item, nil
}

func (s *JobService) GetByOwner(ctx context.Context, ownerID, jobID common.UUID) (*job.Job, error) {
	item, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, common.NewError(common.CodeForbidden, "job belongs to another farmer", nil)
	}
	return s.repair(ctx, item)
}

// ListOpen serves the public board. The recompute pass runs first and the
// list is re-read afterwards, so stale statuses never reach the caller.
func (s *JobService) ListOpen(ctx context.Context) ([]job.Job, error) {
	if _, err := s.RecomputeAll(ctx); err != nil {
		return nil, err
	}
	items, err := s.jobs.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "job.listed", Payload: analyticsPayload(ctx, map[string]string{"count": fmt.Sprintf("%d", len(items))})})
	return items, nil
}

func (s *JobService) ListByOwner(ctx context.Context, ownerID common.UUID) ([]job.Job, error) {
	if _, err := s.RecomputeAll(ctx); err != nil {
		return nil, err
	}
	return s.jobs.ListByOwner(ctx, ownerID)
}

// RecomputeAll walks every job and rewrites the ones whose stored status
// disagrees with the derived one. Idempotent, so it is safe on every read
// session and from the background reconciler.
func (s *JobService) RecomputeAll(ctx context.Context) ([]job.Job, error) {
	items, err := s.jobs.List(ctx)
	if err != nil {
		return nil, err
	}
	repaired := 0
	for i := range items {
		derived := job.DeriveStatus(items[i].Status, items[i].AcceptedCount(), items[i].RequiredWorkers)
		if derived == items[i].Status {
			continue
		}
		items[i].Status = derived
		updated, err := s.jobs.Put(ctx, items[i])
		if err != nil {
			return nil, err
		}
		items[i] = *updated
		repaired++
	}
	if repaired > 0 {
		s.logInfo(fmt.Sprintf("status recompute repaired %d jobs", repaired))
	}
	return items, nil
}

// repair reconciles a single loaded record the same way the batch pass
// does, writing it back only when the status actually changed.
func (s *JobService) repair(ctx context.Context, item *job.Job) (*job.Job, error) {
	derived := job.DeriveStatus(item.Status, item.AcceptedCount(), item.RequiredWorkers)
	if derived == item.Status {
		return item, nil
	}
	item.Status = derived
	return s.jobs.Put(ctx, *item)
}

// ownedMutableJob loads a job and applies the two gates shared by every
// farmer edit: the caller owns it and it has not reached the terminal
// completed state.
func (s *JobService) ownedMutableJob(ctx context.Context, ownerID, jobID common.UUID) (*job.Job, error) {
	current, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if current.OwnerID != ownerID {
		return nil, common.NewError(common.CodeForbidden, "job belongs to another farmer", nil)
	}
	if current.Status == job.StatusCompleted {
		return nil, common.NewError(common.CodeTerminalState, "job is completed and can no longer change", nil)
	}
	return current, nil
}

func normalizeJobStatus(status job.Status) (job.Status, error) {
	normalized := job.Status(strings.ToLower(strings.TrimSpace(string(status))))
	if normalized == "in_progress" || normalized == "inprogress" {
		normalized = job.StatusInProgress
	}
	switch normalized {
	case job.StatusOpen, job.StatusFilled, job.StatusInProgress, job.StatusCompleted:
		return normalized, nil
	default:
		return "", common.NewValidationError("invalid job status", map[string]string{"status": "status must be open, filled, in-progress, or completed"})
	}
}

func (s *JobService) logInfo(msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Info(msg)
}

func analyticsPayload(ctx context.Context, payload map[string]string) map[string]string {
	requestID := common.RequestIDFromContext(ctx)
	if requestID == "" {
		return payload
	}
	if payload == nil {
		payload = map[string]string{}
	}
	payload["request_id"] = requestID
	return payload
}
