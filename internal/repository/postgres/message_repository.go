package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"farmlink/internal/common"
	"farmlink/internal/domain/message"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m message.Message) (*message.Message, error) {
	m.ID = common.NewUUID()
	m.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO messages (id, application_id, sender_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.ApplicationID, m.SenderID, m.Body, m.CreatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create message", err)
	}
	return &m, nil
}

func (r *MessageRepository) ListByApplication(ctx context.Context, applicationID common.UUID, limit, offset int) ([]message.Message, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, application_id, sender_id, body, created_at
		FROM messages WHERE application_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3`, applicationID, limit, offset)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list messages", err)
	}
	defer rows.Close()
	var items []message.Message
	for rows.Next() {
		var m message.Message
		if err := rows.Scan(&m.ID, &m.ApplicationID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan message", err)
		}
		items = append(items, m)
	}
	return items, nil
}

func (r *MessageRepository) DeleteByApplications(ctx context.Context, applicationIDs []common.UUID) error {
	if len(applicationIDs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(applicationIDs))
	for _, id := range applicationIDs {
		ids = append(ids, id.String())
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE application_id = ANY($1)`, pq.Array(ids)); err != nil {
		return common.NewError(common.CodeInternal, "failed to delete messages", err)
	}
	return nil
}
