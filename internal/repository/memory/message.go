package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"farmlink/internal/common"
	"farmlink/internal/domain/message"
)

type MessageRepository struct {
	mu       sync.RWMutex
	messages map[common.UUID]message.Message
	seq      map[common.UUID]int
	next     int
}

var _ message.Repository = (*MessageRepository)(nil)

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{messages: make(map[common.UUID]message.Message), seq: make(map[common.UUID]int)}
}

func (r *MessageRepository) Create(_ context.Context, m message.Message) (*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = common.NewUUID()
	m.CreatedAt = time.Now().UTC()
	r.messages[m.ID] = m
	r.next++
	r.seq[m.ID] = r.next
	return &m, nil
}

func (r *MessageRepository) ListByApplication(_ context.Context, applicationID common.UUID, limit, offset int) ([]message.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []message.Message
	for _, stored := range r.messages {
		if stored.ApplicationID == applicationID {
			items = append(items, stored)
		}
	}
	sort.Slice(items, func(i, k int) bool { return r.seq[items[i].ID] < r.seq[items[k].ID] })
	if offset >= len(items) {
		return nil, nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (r *MessageRepository) DeleteByApplications(_ context.Context, applicationIDs []common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := make(map[common.UUID]bool, len(applicationIDs))
	for _, id := range applicationIDs {
		drop[id] = true
	}
	for id, m := range r.messages {
		if drop[m.ApplicationID] {
			delete(r.messages, id)
			delete(r.seq, id)
		}
	}
	return nil
}
