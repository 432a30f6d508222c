package memory

import (
	"context"
	"sync"
	"time"

	"farmlink/internal/common"
	"farmlink/internal/domain/analytics"
)

type AnalyticsRepository struct {
	mu     sync.Mutex
	events []analytics.Event
}

var _ analytics.Repository = (*AnalyticsRepository)(nil)

func NewAnalyticsRepository() *AnalyticsRepository {
	return &AnalyticsRepository{}
}

func (r *AnalyticsRepository) Create(_ context.Context, event analytics.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = common.NewUUID()
	event.CreatedAt = time.Now().UTC()
	r.events = append(r.events, event)
	return nil
}

// Events returns a snapshot, newest last. Used by tests to assert emission.
func (r *AnalyticsRepository) Events() []analytics.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([]analytics.Event, len(r.events))
	copy(snapshot, r.events)
	return snapshot
}
