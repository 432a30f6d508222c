package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"farmlink/internal/common"
	"farmlink/internal/domain/application"
)

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, job_id, worker_id, status, rejected_at, created_at, updated_at`

func (r *ApplicationRepository) Create(ctx context.Context, a application.Application) (*application.Application, error) {
	a.ID = common.NewUUID()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO applications (id, job_id, worker_id, status, rejected_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.JobID, a.WorkerID, a.Status, a.RejectedAt, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create application", err)
	}
	return &a, nil
}

// Put replaces the whole record in one statement, so status and rejected_at
// can never land in separate writes.
func (r *ApplicationRepository) Put(ctx context.Context, a application.Application) (*application.Application, error) {
	a.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO applications (id, job_id, worker_id, status, rejected_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			job_id = EXCLUDED.job_id,
			worker_id = EXCLUDED.worker_id,
			status = EXCLUDED.status,
			rejected_at = EXCLUDED.rejected_at,
			updated_at = EXCLUDED.updated_at`,
		a.ID, a.JobID, a.WorkerID, a.Status, a.RejectedAt, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to put application", err)
	}
	return &a, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	var a application.Application
	if err := row.Scan(&a.ID, &a.JobID, &a.WorkerID, &a.Status, &a.RejectedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	return &a, nil
}

func (r *ApplicationRepository) List(ctx context.Context) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications ORDER BY created_at`)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID common.UUID) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY created_at`, jobID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list job applications", err)
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *ApplicationRepository) ListByWorker(ctx context.Context, workerID common.UUID) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE worker_id = $1 ORDER BY created_at DESC`, workerID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list worker applications", err)
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *ApplicationRepository) ListByOwner(ctx context.Context, ownerID common.UUID) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT a.id, a.job_id, a.worker_id, a.status, a.rejected_at, a.created_at, a.updated_at
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE j.owner_id = $1
		ORDER BY a.created_at DESC`, ownerID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list farmer applications", err)
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *ApplicationRepository) ListByJobAndWorker(ctx context.Context, jobID, workerID common.UUID) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 AND worker_id = $2 ORDER BY created_at`, jobID, workerID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list pair applications", err)
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *ApplicationRepository) CountByJob(ctx context.Context, jobID common.UUID) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications WHERE job_id = $1`, jobID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to count applications", err)
	}
	return count, nil
}

func (r *ApplicationRepository) DeleteByJob(ctx context.Context, jobID common.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE job_id = $1`, jobID); err != nil {
		return common.NewError(common.CodeInternal, "failed to delete job applications", err)
	}
	return nil
}

func scanApplications(rows *sql.Rows) ([]application.Application, error) {
	var items []application.Application
	for rows.Next() {
		var a application.Application
		if err := rows.Scan(&a.ID, &a.JobID, &a.WorkerID, &a.Status, &a.RejectedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan application", err)
		}
		items = append(items, a)
	}
	return items, nil
}
