package job

import (
	"context"

	"farmlink/internal/common"
)

// Repository is the keyed Job store. Put replaces the whole record in a
// single write; partial updates do not exist at this boundary.
type Repository interface {
	Create(ctx context.Context, j Job) (*Job, error)
	Put(ctx context.Context, j Job) (*Job, error)
	GetByID(ctx context.Context, id common.UUID) (*Job, error)
	List(ctx context.Context) ([]Job, error)
	ListOpen(ctx context.Context) ([]Job, error)
	ListByOwner(ctx context.Context, ownerID common.UUID) ([]Job, error)
	Delete(ctx context.Context, id common.UUID) error
}
