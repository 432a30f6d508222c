package message

import (
	"time"

	"farmlink/internal/common"
)

// Message belongs to the thread between a job's farmer and one applicant.
// Threads are scoped to an application and removed with the job's cascade.
type Message struct {
	ID            common.UUID `json:"id"`
	ApplicationID common.UUID `json:"application_id"`
	SenderID      common.UUID `json:"sender_id"`
	Body          string      `json:"body"`
	CreatedAt     time.Time   `json:"created_at"`
}
