package app

import (
	"context"
	"testing"

	"farmlink/internal/common"
	"farmlink/internal/domain/job"
)

func TestCreateJobStartsOpenAndEmpty(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()

	created, err := f.jobService.Create(context.Background(), job.Job{
		OwnerID:         farmer,
		Title:           "fence repair",
		Description:     "two days of fence work",
		Location:        "North Field",
		Wage:            300,
		RequiredWorkers: 1,
		// The caller cannot smuggle in a status or accepted workers.
		Status:            job.StatusFilled,
		AcceptedWorkerIDs: []common.UUID{common.NewUUID()},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != job.StatusOpen {
		t.Fatalf("expected open, got %s", created.Status)
	}
	if created.AcceptedCount() != 0 {
		t.Fatalf("expected empty accepted set, got %d", created.AcceptedCount())
	}
}

func TestCreateJobValidation(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	base := job.Job{OwnerID: farmer, Title: "t", Description: "d", Location: "l", Wage: 100, RequiredWorkers: 1}

	broken := base
	broken.Title = " "
	if _, err := f.jobService.Create(context.Background(), broken); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error for blank title, got %v", err)
	}
	broken = base
	broken.Wage = 0
	if _, err := f.jobService.Create(context.Background(), broken); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error for zero wage, got %v", err)
	}
	broken = base
	broken.RequiredWorkers = 0
	if _, err := f.jobService.Create(context.Background(), broken); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error for zero workers, got %v", err)
	}
}

func TestEditWageBeforeAndAfterApplications(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 2)

	updated, err := f.jobService.EditWage(context.Background(), farmer, posting.ID, 600)
	if err != nil {
		t.Fatalf("edit wage with no applications: %v", err)
	}
	if updated.Wage != 600 {
		t.Fatalf("expected wage 600, got %d", updated.Wage)
	}

	if _, err := f.appService.Apply(context.Background(), posting.ID, common.NewUUID()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.jobService.EditWage(context.Background(), farmer, posting.ID, 700); !common.Is(err, common.CodeWageLocked) {
		t.Fatalf("expected wage_locked, got %v", err)
	}
	// Writing the current value back is a no-op, never an error.
	if _, err := f.jobService.EditWage(context.Background(), farmer, posting.ID, 600); err != nil {
		t.Fatalf("expected same-value write allowed, got %v", err)
	}
}

// Scenario D: one pending application blocks shrinking the advertised count.
func TestEditRequiredWorkersShrinkBlockedByApplications(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 3)

	if _, err := f.appService.Apply(context.Background(), posting.ID, common.NewUUID()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.jobService.EditRequiredWorkers(context.Background(), farmer, posting.ID, 2); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected shrink refused, got %v", err)
	}
	if _, err := f.jobService.EditRequiredWorkers(context.Background(), farmer, posting.ID, 5); err != nil {
		t.Fatalf("expected increase allowed, got %v", err)
	}
}

func TestEditRequiredWorkersIncreaseReopensFilledJob(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 1)

	created, err := f.appService.Apply(context.Background(), posting.ID, common.NewUUID())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.appService.Accept(context.Background(), farmer, created.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	updated, err := f.jobService.EditRequiredWorkers(context.Background(), farmer, posting.ID, 2)
	if err != nil {
		t.Fatalf("increase capacity: %v", err)
	}
	if updated.Status != job.StatusOpen {
		t.Fatalf("expected filled job to reopen after capacity increase, got %s", updated.Status)
	}
}

func TestEditStatusManualOpenOnFullJobCorrected(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 1)

	created, err := f.appService.Apply(context.Background(), posting.ID, common.NewUUID())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.appService.Accept(context.Background(), farmer, created.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	updated, err := f.jobService.EditStatus(context.Background(), farmer, posting.ID, job.StatusOpen)
	if err != nil {
		t.Fatalf("edit status: %v", err)
	}
	if updated.Status != job.StatusFilled {
		t.Fatalf("expected manual open corrected back to filled, got %s", updated.Status)
	}
}

func TestEditStatusRejectsUnknownValue(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 1)

	if _, err := f.jobService.EditStatus(context.Background(), farmer, posting.ID, job.Status("archived")); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// Scenario E: completed is terminal for every mutation and for deletion.
func TestCompletedJobIsTerminal(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 1)

	if _, err := f.jobService.EditStatus(context.Background(), farmer, posting.ID, job.StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := f.jobService.EditWage(context.Background(), farmer, posting.ID, 600); !common.Is(err, common.CodeTerminalState) {
		t.Fatalf("expected terminal_state on wage edit, got %v", err)
	}
	if _, err := f.jobService.EditRequiredWorkers(context.Background(), farmer, posting.ID, 2); !common.Is(err, common.CodeTerminalState) {
		t.Fatalf("expected terminal_state on capacity edit, got %v", err)
	}
	if _, err := f.jobService.EditStatus(context.Background(), farmer, posting.ID, job.StatusOpen); !common.Is(err, common.CodeTerminalState) {
		t.Fatalf("expected terminal_state on status edit, got %v", err)
	}
	if err := f.jobService.Delete(context.Background(), farmer, posting.ID); !common.Is(err, common.CodeTerminalState) {
		t.Fatalf("expected terminal_state on delete, got %v", err)
	}

	if !common.IsValidationFamily(common.NewError(common.CodeTerminalState, "", nil)) {
		t.Fatal("terminal_state should belong to the validation family")
	}
}

func TestEditByNonOwnerForbidden(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 1)

	if _, err := f.jobService.EditWage(context.Background(), common.NewUUID(), posting.ID, 600); !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := f.jobService.Delete(context.Background(), common.NewUUID(), posting.ID); !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDeleteCascadesApplicationsAndMessages(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	worker := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 2)

	created, err := f.appService.Apply(context.Background(), posting.ID, worker)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.msgService.Send(context.Background(), created.ID, worker, "when does the work start?"); err != nil {
		t.Fatalf("send message: %v", err)
	}

	if err := f.jobService.Delete(context.Background(), farmer, posting.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.jobs.GetByID(context.Background(), posting.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected job gone, got %v", err)
	}
	remaining, err := f.applications.ListByJob(context.Background(), posting.ID)
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected applications cascaded, got %d", len(remaining))
	}
	messages, err := f.messages.ListByApplication(context.Background(), created.ID, 10, 0)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected messages cascaded, got %d", len(messages))
	}
}

func TestRecomputeAllRepairsDriftedStatus(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 1)

	created, err := f.appService.Apply(context.Background(), posting.ID, common.NewUUID())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.appService.Accept(context.Background(), farmer, created.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Simulate a stale record written by another browsing context.
	stale, err := f.jobs.GetByID(context.Background(), posting.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	stale.Status = job.StatusOpen
	if _, err := f.jobs.Put(context.Background(), *stale); err != nil {
		t.Fatalf("write stale: %v", err)
	}

	if _, err := f.jobService.RecomputeAll(context.Background()); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	repaired, err := f.jobs.GetByID(context.Background(), posting.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if repaired.Status != job.StatusFilled {
		t.Fatalf("expected drift repaired to filled, got %s", repaired.Status)
	}
}

func TestRecomputeAllIdempotent(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	full := f.createJob(t, farmer, 500, 1)
	f.createJob(t, farmer, 400, 2)

	created, err := f.appService.Apply(context.Background(), full.ID, common.NewUUID())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.appService.Accept(context.Background(), farmer, created.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	once, err := f.jobService.RecomputeAll(context.Background())
	if err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	twice, err := f.jobService.RecomputeAll(context.Background())
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if len(once) != len(twice) {
		t.Fatalf("expected stable collection, got %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID || once[i].Status != twice[i].Status {
			t.Fatalf("expected identical statuses, got %v vs %v", once[i], twice[i])
		}
	}
}

func TestRecomputeAllPreservesInProgress(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 2)

	if _, err := f.jobService.EditStatus(context.Background(), farmer, posting.ID, job.StatusInProgress); err != nil {
		t.Fatalf("edit status: %v", err)
	}
	if _, err := f.jobService.RecomputeAll(context.Background()); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	loaded, err := f.jobs.GetByID(context.Background(), posting.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Status != job.StatusInProgress {
		t.Fatalf("expected in-progress preserved, got %s", loaded.Status)
	}
}

func TestListOpenRunsRecomputeFirst(t *testing.T) {
	f := newFixture()
	farmer := common.NewUUID()
	posting := f.createJob(t, farmer, 500, 1)

	created, err := f.appService.Apply(context.Background(), posting.ID, common.NewUUID())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.appService.Accept(context.Background(), farmer, created.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Drift the filled job back to open; the read path must not serve it.
	stale, err := f.jobs.GetByID(context.Background(), posting.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	stale.Status = job.StatusOpen
	if _, err := f.jobs.Put(context.Background(), *stale); err != nil {
		t.Fatalf("write stale: %v", err)
	}

	items, err := f.jobService.ListOpen(context.Background())
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	for _, item := range items {
		if item.ID == posting.ID {
			t.Fatal("expected repaired filled job excluded from the open board")
		}
	}
}
