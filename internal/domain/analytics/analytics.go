package analytics

import (
	"context"
	"time"

	"farmlink/internal/common"
)

// Event is a fire-and-forget usage record. Services emit events on the happy
// path and ignore write failures; analytics never blocks a user action.
type Event struct {
	ID        common.UUID       `json:"id"`
	Name      string            `json:"name"`
	UserID    *common.UUID      `json:"user_id,omitempty"`
	Payload   map[string]string `json:"payload,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, event Event) error
}
