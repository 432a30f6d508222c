package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"farmlink/internal/common"
	"farmlink/internal/domain/application"
)

// ApplicationRepository keeps the jobs store at hand so ListByOwner can do
// the join the SQL implementation expresses in one query.
type ApplicationRepository struct {
	mu           sync.RWMutex
	applications map[common.UUID]application.Application
	seq          map[common.UUID]int
	next         int
	jobs         *JobRepository
}

var _ application.Repository = (*ApplicationRepository)(nil)

func NewApplicationRepository(jobs *JobRepository) *ApplicationRepository {
	return &ApplicationRepository{
		applications: make(map[common.UUID]application.Application),
		seq:          make(map[common.UUID]int),
		jobs:         jobs,
	}
}

func (r *ApplicationRepository) Create(_ context.Context, a application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = common.NewUUID()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	r.applications[a.ID] = copyApplication(a)
	r.next++
	r.seq[a.ID] = r.next
	return &a, nil
}

func (r *ApplicationRepository) Put(_ context.Context, a application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.UpdatedAt = time.Now().UTC()
	if _, ok := r.seq[a.ID]; !ok {
		r.next++
		r.seq[a.ID] = r.next
	}
	r.applications[a.ID] = copyApplication(a)
	return &a, nil
}

func (r *ApplicationRepository) GetByID(_ context.Context, id common.UUID) (*application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.applications[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	found := copyApplication(stored)
	return &found, nil
}

func (r *ApplicationRepository) List(_ context.Context) ([]application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(application.Application) bool { return true }), nil
}

func (r *ApplicationRepository) ListByJob(_ context.Context, jobID common.UUID) ([]application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a application.Application) bool { return a.JobID == jobID }), nil
}

func (r *ApplicationRepository) ListByWorker(_ context.Context, workerID common.UUID) ([]application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a application.Application) bool { return a.WorkerID == workerID }), nil
}

func (r *ApplicationRepository) ListByOwner(ctx context.Context, ownerID common.UUID) ([]application.Application, error) {
	owned, err := r.jobs.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ownedIDs := make(map[common.UUID]bool, len(owned))
	for _, j := range owned {
		ownedIDs[j.ID] = true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a application.Application) bool { return ownedIDs[a.JobID] }), nil
}

func (r *ApplicationRepository) ListByJobAndWorker(_ context.Context, jobID, workerID common.UUID) ([]application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a application.Application) bool { return a.JobID == jobID && a.WorkerID == workerID }), nil
}

func (r *ApplicationRepository) CountByJob(_ context.Context, jobID common.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, a := range r.applications {
		if a.JobID == jobID {
			count++
		}
	}
	return count, nil
}

func (r *ApplicationRepository) DeleteByJob(_ context.Context, jobID common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.applications {
		if a.JobID == jobID {
			delete(r.applications, id)
			delete(r.seq, id)
		}
	}
	return nil
}

func (r *ApplicationRepository) collect(match func(application.Application) bool) []application.Application {
	var items []application.Application
	for _, stored := range r.applications {
		if match(stored) {
			items = append(items, copyApplication(stored))
		}
	}
	sort.Slice(items, func(i, k int) bool { return r.seq[items[i].ID] < r.seq[items[k].ID] })
	return items
}

func copyApplication(a application.Application) application.Application {
	if a.RejectedAt != nil {
		rejectedAt := *a.RejectedAt
		a.RejectedAt = &rejectedAt
	}
	return a
}
