// Package memory holds mutex-guarded map implementations of the domain
// repositories. They back the STORE=memory dev mode and every service test;
// records are copied on the way in and out so callers never share state
// with the store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"farmlink/internal/common"
	"farmlink/internal/domain/job"
)

type JobRepository struct {
	mu   sync.RWMutex
	jobs map[common.UUID]job.Job
	seq  map[common.UUID]int
	next int
}

var _ job.Repository = (*JobRepository)(nil)

func NewJobRepository() *JobRepository {
	return &JobRepository{jobs: make(map[common.UUID]job.Job), seq: make(map[common.UUID]int)}
}

func (r *JobRepository) Create(_ context.Context, j job.Job) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j.ID = common.NewUUID()
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	r.jobs[j.ID] = copyJob(j)
	r.next++
	r.seq[j.ID] = r.next
	return &j, nil
}

func (r *JobRepository) Put(_ context.Context, j job.Job) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j.UpdatedAt = time.Now().UTC()
	if _, ok := r.seq[j.ID]; !ok {
		r.next++
		r.seq[j.ID] = r.next
	}
	r.jobs[j.ID] = copyJob(j)
	return &j, nil
}

func (r *JobRepository) GetByID(_ context.Context, id common.UUID) (*job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.jobs[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	found := copyJob(stored)
	return &found, nil
}

func (r *JobRepository) List(_ context.Context) ([]job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(job.Job) bool { return true }), nil
}

func (r *JobRepository) ListOpen(_ context.Context) ([]job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(j job.Job) bool { return j.Status == job.StatusOpen }), nil
}

func (r *JobRepository) ListByOwner(_ context.Context, ownerID common.UUID) ([]job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(j job.Job) bool { return j.OwnerID == ownerID }), nil
}

func (r *JobRepository) Delete(_ context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return common.NewError(common.CodeNotFound, "job not found", nil)
	}
	delete(r.jobs, id)
	delete(r.seq, id)
	return nil
}

// collect returns matching jobs in insertion order; callers hold the lock.
func (r *JobRepository) collect(match func(job.Job) bool) []job.Job {
	var items []job.Job
	for _, stored := range r.jobs {
		if match(stored) {
			items = append(items, copyJob(stored))
		}
	}
	sort.Slice(items, func(i, k int) bool { return r.seq[items[i].ID] < r.seq[items[k].ID] })
	return items
}

func copyJob(j job.Job) job.Job {
	if j.AcceptedWorkerIDs != nil {
		accepted := make([]common.UUID, len(j.AcceptedWorkerIDs))
		copy(accepted, j.AcceptedWorkerIDs)
		j.AcceptedWorkerIDs = accepted
	}
	return j
}
