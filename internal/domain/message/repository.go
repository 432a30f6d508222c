package message

import (
	"context"

	"farmlink/internal/common"
)

type Repository interface {
	Create(ctx context.Context, m Message) (*Message, error)
	ListByApplication(ctx context.Context, applicationID common.UUID, limit, offset int) ([]Message, error)
	DeleteByApplications(ctx context.Context, applicationIDs []common.UUID) error
}
