package app

import (
	"context"
	"testing"
	"time"

	"farmlink/internal/common"
	"farmlink/internal/domain/application"
	"farmlink/internal/domain/job"
	"farmlink/internal/repository/memory"
)

type fixture struct {
	jobs         *memory.JobRepository
	applications *memory.ApplicationRepository
	messages     *memory.MessageRepository
	analytics    *memory.AnalyticsRepository
	jobService   *JobService
	appService   *ApplicationService
	msgService   *MessageService
}

func newFixture() *fixture {
	jobs := memory.NewJobRepository()
	applications := memory.NewApplicationRepository(jobs)
	messages := memory.NewMessageRepository()
	analytics := memory.NewAnalyticsRepository()
	return &fixture{
		jobs:         jobs,
		applications: applications,
		messages:     messages,
		analytics:    analytics,
		jobService:   NewJobService(jobs, applications, messages, analytics, nil),
		appService:   NewApplicationService(applications, jobs, analytics),
		msgService:   NewMessageService(messages, applications, jobs, analytics),
	}
}

func (f *fixture) createJob(t *testing.T, ownerID common.UUID, wage int64, requiredWorkers int) *job.Job {
	t.Helper()
	created, err := f.jobService.Create(context.Background(), job.Job{
		OwnerID:         ownerID,
		Title:           "apple picking",
		Description:     "seasonal harvest work",
		Location:        "Green Valley",
		Wage:            wage,
		RequiredWorkers: requiredWorkers,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return created
}

func TestApplyCreatesPendingApplication(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	worker := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 2)

	created, err := f.appService.Apply(context.Background(), posting.ID, worker)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if created.Status != application.StatusPending {
		t.Fatalf("expected pending, got %s", created.Status)
	}
	if created.JobID != posting.ID || created.WorkerID != worker {
		t.Fatal("unexpected application references")
	}
}

func TestApplyToMissingJob(t *testing.T) {
	f := newFixture()
	_, err := f.appService.Apply(context.Background(), common.NewUUID(), common.NewUUID())
	if !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestApplyToNonOpenJobRefused(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 2)
	if _, err := f.jobService.EditStatus(context.Background(), farmer, posting.ID, job.StatusInProgress); err != nil {
		t.Fatalf("edit status: %v", err)
	}

	_, err := f.appService.Apply(context.Background(), posting.ID, common.NewUUID())
	if !common.Is(err, common.CodeNotEligible) {
		t.Fatalf("expected not_eligible, got %v", err)
	}
}

func TestApplyTwiceRefused(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	worker := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 2)

	if _, err := f.appService.Apply(context.Background(), posting.ID, worker); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	_, err := f.appService.Apply(context.Background(), posting.ID, worker)
	if !common.Is(err, common.CodeNotEligible) {
		t.Fatalf("expected not_eligible on second apply, got %v", err)
	}
}

func TestApplyAfterAcceptRefused(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	worker := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 2)

	created, err := f.appService.Apply(context.Background(), posting.ID, worker)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.appService.Accept(context.Background(), farmer, created.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	_, err = f.appService.Apply(context.Background(), posting.ID, worker)
	if !common.Is(err, common.CodeNotEligible) {
		t.Fatalf("expected not_eligible while holding accepted application, got %v", err)
	}
}

// Scenario A then B: first acceptance leaves the job open, the second
// fills it.
func TestAcceptFillsJobAtCapacity(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	w1 := common.NewUUID()
	w2 := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 2)

	first, err := f.appService.Apply(context.Background(), posting.ID, w1)
	if err != nil {
		t.Fatalf("w1 apply: %v", err)
	}
	if _, err := f.jobService.EditWage(context.Background(), farmer, posting.ID, 600); !common.Is(err, common.CodeWageLocked) {
		t.Fatalf("expected wage_locked after first application, got %v", err)
	}
	if _, err := f.appService.Accept(context.Background(), farmer, first.ID); err != nil {
		t.Fatalf("accept w1: %v", err)
	}

	loaded, err := f.jobs.GetByID(context.Background(), posting.ID)
	if err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if loaded.Status != job.StatusOpen {
		t.Fatalf("expected open with 1 of 2 accepted, got %s", loaded.Status)
	}
	if loaded.AcceptedCount() != 1 || !loaded.HasAcceptedWorker(w1) {
		t.Fatalf("expected accepted set [w1], got %v", loaded.AcceptedWorkerIDs)
	}

	second, err := f.appService.Apply(context.Background(), posting.ID, w2)
	if err != nil {
		t.Fatalf("w2 apply: %v", err)
	}
	if _, err := f.appService.Accept(context.Background(), farmer, second.ID); err != nil {
		t.Fatalf("accept w2: %v", err)
	}

	loaded, err = f.jobs.GetByID(context.Background(), posting.ID)
	if err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if loaded.Status != job.StatusFilled {
		t.Fatalf("expected filled with 2 of 2 accepted, got %s", loaded.Status)
	}
	if loaded.AcceptedCount() != 2 {
		t.Fatalf("expected 2 accepted, got %d", loaded.AcceptedCount())
	}
}

func TestAcceptBeyondCapacityRefused(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 1)

	first, err := f.appService.Apply(context.Background(), posting.ID, common.NewUUID())
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	second, err := f.appService.Apply(context.Background(), posting.ID, common.NewUUID())
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if _, err := f.appService.Accept(context.Background(), farmer, first.ID); err != nil {
		t.Fatalf("accept first: %v", err)
	}
	if _, err := f.appService.Accept(context.Background(), farmer, second.ID); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected refusal past capacity, got %v", err)
	}
}

func TestAcceptByNonOwnerForbidden(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 1)

	created, err := f.appService.Apply(context.Background(), posting.ID, common.NewUUID())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.appService.Accept(context.Background(), common.NewUUID(), created.ID); !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAcceptOnCompletedJobRefused(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 2)

	created, err := f.appService.Apply(context.Background(), posting.ID, common.NewUUID())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.jobService.EditStatus(context.Background(), farmer, posting.ID, job.StatusCompleted); err != nil {
		t.Fatalf("complete job: %v", err)
	}
	if _, err := f.appService.Accept(context.Background(), farmer, created.ID); !common.Is(err, common.CodeTerminalState) {
		t.Fatalf("expected terminal_state, got %v", err)
	}
}

func TestAcceptKeepsInProgressStatus(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	worker := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 1)

	created, err := f.appService.Apply(context.Background(), posting.ID, worker)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.jobService.EditStatus(context.Background(), farmer, posting.ID, job.StatusInProgress); err != nil {
		t.Fatalf("edit status: %v", err)
	}
	if _, err := f.appService.Accept(context.Background(), farmer, created.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	loaded, err := f.jobs.GetByID(context.Background(), posting.ID)
	if err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if loaded.Status != job.StatusInProgress {
		t.Fatalf("expected in-progress preserved over derivation, got %s", loaded.Status)
	}
	if !loaded.HasAcceptedWorker(worker) {
		t.Fatal("expected worker in accepted set")
	}
}

func TestRejectStampsTimeAndKeepsHistory(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	worker := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 2)

	rejectedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.appService.clock = func() time.Time { return rejectedAt }

	created, err := f.appService.Apply(context.Background(), posting.ID, worker)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	updated, err := f.appService.Reject(context.Background(), farmer, created.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if updated.Status != application.StatusRejected {
		t.Fatalf("expected rejected, got %s", updated.Status)
	}
	if updated.RejectedAt == nil || !updated.RejectedAt.Equal(rejectedAt) {
		t.Fatalf("expected rejected_at %s, got %v", rejectedAt, updated.RejectedAt)
	}
	if _, err := f.appService.Reject(context.Background(), farmer, created.ID); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected only-pending refusal, got %v", err)
	}
}

// Scenario C: reapply fails inside the 24h cooldown and succeeds after it,
// producing a second row beside the rejected one.
func TestReapplyCooldown(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	worker := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 2)

	rejectedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.appService.clock = func() time.Time { return rejectedAt }

	created, err := f.appService.Apply(context.Background(), posting.ID, worker)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.appService.Reject(context.Background(), farmer, created.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	f.appService.clock = func() time.Time { return rejectedAt.Add(time.Hour) }
	_, err = f.appService.Apply(context.Background(), posting.ID, worker)
	if !common.Is(err, common.CodeCooldownActive) {
		t.Fatalf("expected cooldown_active at T+1h, got %v", err)
	}
	coded := err.(*common.Error)
	if want := "rejected recently: you can reapply to this job in 23 hours"; coded.Message != want {
		t.Fatalf("expected remaining hours in message, got %q", coded.Message)
	}

	f.appService.clock = func() time.Time { return rejectedAt.Add(25 * time.Hour) }
	second, err := f.appService.Apply(context.Background(), posting.ID, worker)
	if err != nil {
		t.Fatalf("reapply at T+25h: %v", err)
	}
	if second.Status != application.StatusPending {
		t.Fatalf("expected pending, got %s", second.Status)
	}
	if second.ID == created.ID {
		t.Fatal("expected a fresh application row")
	}

	history, err := f.applications.ListByJobAndWorker(context.Background(), posting.ID, worker)
	if err != nil {
		t.Fatalf("pair history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 rows in history, got %d", len(history))
	}
	if history[0].Status != application.StatusRejected || history[1].Status != application.StatusPending {
		t.Fatalf("expected rejected then pending, got %s then %s", history[0].Status, history[1].Status)
	}
}

func TestCooldownMeasuredFromLatestRejection(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	worker := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 2)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.appService.clock = func() time.Time { return start }

	first, err := f.appService.Apply(context.Background(), posting.ID, worker)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.appService.Reject(context.Background(), farmer, first.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	f.appService.clock = func() time.Time { return start.Add(25 * time.Hour) }
	second, err := f.appService.Apply(context.Background(), posting.ID, worker)
	if err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if _, err := f.appService.Reject(context.Background(), farmer, second.ID); err != nil {
		t.Fatalf("second reject: %v", err)
	}

	// One hour past the second rejection the first one no longer matters.
	f.appService.clock = func() time.Time { return start.Add(26 * time.Hour) }
	if _, err := f.appService.Apply(context.Background(), posting.ID, worker); !common.Is(err, common.CodeCooldownActive) {
		t.Fatalf("expected cooldown_active from the latest rejection, got %v", err)
	}
}

func TestListByFarmerSeesOnlyOwnJobsApplications(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	other := common.NewUUID()
	mine := f.createJob(t, farmer, 500, 2)
	theirs := f.createJob(t, other, 700, 1)

	if _, err := f.appService.Apply(context.Background(), mine.ID, common.NewUUID()); err != nil {
		t.Fatalf("apply to mine: %v", err)
	}
	if _, err := f.appService.Apply(context.Background(), theirs.ID, common.NewUUID()); err != nil {
		t.Fatalf("apply to theirs: %v", err)
	}

	items, err := f.appService.ListByFarmer(context.Background(), farmer)
	if err != nil {
		t.Fatalf("list by farmer: %v", err)
	}
	if len(items) != 1 || items[0].JobID != mine.ID {
		t.Fatalf("expected exactly the application to my job, got %v", items)
	}
}
