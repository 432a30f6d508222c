package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"farmlink/internal/common"
	"farmlink/internal/domain/job"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, j job.Job) (*job.Job, error) {
	j.ID = common.NewUUID()
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO jobs (id, owner_id, title, description, location, wage, required_workers, accepted_worker_ids, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		j.ID, j.OwnerID, j.Title, j.Description, j.Location, j.Wage, j.RequiredWorkers, pq.Array(uuidStrings(j.AcceptedWorkerIDs)), j.Status, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create job", err)
	}
	return &j, nil
}

// Put replaces the whole record in one statement, inserting when the id is
// new. Partial updates never happen at this boundary.
func (r *JobRepository) Put(ctx context.Context, j job.Job) (*job.Job, error) {
	j.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO jobs (id, owner_id, title, description, location, wage, required_workers, accepted_worker_ids, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			location = EXCLUDED.location,
			wage = EXCLUDED.wage,
			required_workers = EXCLUDED.required_workers,
			accepted_worker_ids = EXCLUDED.accepted_worker_ids,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		j.ID, j.OwnerID, j.Title, j.Description, j.Location, j.Wage, j.RequiredWorkers, pq.Array(uuidStrings(j.AcceptedWorkerIDs)), j.Status, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to put job", err)
	}
	return &j, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id common.UUID) (*job.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, owner_id, title, description, location, wage, required_workers, accepted_worker_ids, status, created_at, updated_at
		FROM jobs WHERE id = $1`, id)
	var j job.Job
	var accepted []string
	if err := row.Scan(&j.ID, &j.OwnerID, &j.Title, &j.Description, &j.Location, &j.Wage, &j.RequiredWorkers, pq.Array(&accepted), &j.Status, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "job not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load job", err)
	}
	j.AcceptedWorkerIDs = uuidsFromStrings(accepted)
	return &j, nil
}

func (r *JobRepository) List(ctx context.Context) ([]job.Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, owner_id, title, description, location, wage, required_workers, accepted_worker_ids, status, created_at, updated_at
		FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list jobs", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *JobRepository) ListOpen(ctx context.Context) ([]job.Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, owner_id, title, description, location, wage, required_workers, accepted_worker_ids, status, created_at, updated_at
		FROM jobs WHERE status = $1 ORDER BY created_at DESC`, job.StatusOpen)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list open jobs", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *JobRepository) ListByOwner(ctx context.Context, ownerID common.UUID) ([]job.Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, owner_id, title, description, location, wage, required_workers, accepted_worker_ids, status, created_at, updated_at
		FROM jobs WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list owner jobs", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *JobRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete job", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "job not found", sql.ErrNoRows)
	}
	return nil
}

func scanJobs(rows *sql.Rows) ([]job.Job, error) {
	var items []job.Job
	for rows.Next() {
		var j job.Job
		var accepted []string
		if err := rows.Scan(&j.ID, &j.OwnerID, &j.Title, &j.Description, &j.Location, &j.Wage, &j.RequiredWorkers, pq.Array(&accepted), &j.Status, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan job", err)
		}
		j.AcceptedWorkerIDs = uuidsFromStrings(accepted)
		items = append(items, j)
	}
	return items, nil
}

func uuidStrings(ids []common.UUID) []string {
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}
	return values
}

func uuidsFromStrings(values []string) []common.UUID {
	if len(values) == 0 {
		return nil
	}
	ids := make([]common.UUID, 0, len(values))
	for _, value := range values {
		ids = append(ids, common.UUID(value))
	}
	return ids
}
