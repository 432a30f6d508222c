package application

import (
	"context"

	"farmlink/internal/common"
)

// Repository is the keyed Application store. Put replaces the whole record in
// a single write. ListByJobAndWorker returns the pair's full history, oldest
// first, rejected rows included.
type Repository interface {
	Create(ctx context.Context, a Application) (*Application, error)
	Put(ctx context.Context, a Application) (*Application, error)
	GetByID(ctx context.Context, id common.UUID) (*Application, error)
	List(ctx context.Context) ([]Application, error)
	ListByJob(ctx context.Context, jobID common.UUID) ([]Application, error)
	ListByWorker(ctx context.Context, workerID common.UUID) ([]Application, error)
	ListByOwner(ctx context.Context, ownerID common.UUID) ([]Application, error)
	ListByJobAndWorker(ctx context.Context, jobID, workerID common.UUID) ([]Application, error)
	CountByJob(ctx context.Context, jobID common.UUID) (int, error)
	DeleteByJob(ctx context.Context, jobID common.UUID) error
}
