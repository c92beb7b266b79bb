package memory

import (
	"context"

	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(_ context.Context, events []survival.DomainEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range events {
		r.store.events[e.Entity] = append(r.store.events[e.Entity], e)
	}
	return nil
}

// ListByEntity returns the newest events first.
func (r EventRepo) ListByEntity(_ context.Context, ent entity.ID, limit int) ([]survival.DomainEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	stored := r.store.events[ent]
	if len(stored) == 0 {
		return nil, ports.ErrNotFound
	}
	n := len(stored)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]survival.DomainEvent, 0, n)
	for i := len(stored) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}

var _ ports.EventRepository = EventRepo{}
