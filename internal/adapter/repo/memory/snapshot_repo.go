package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

type SnapshotRepo struct {
	store *Store
}

func NewSnapshotRepo(store *Store) SnapshotRepo {
	return SnapshotRepo{store: store}
}

func (r SnapshotRepo) Save(_ context.Context, snapshots []survival.NeedSnapshot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range snapshots {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		r.store.snapshots[s.Entity] = append(r.store.snapshots[s.Entity], s)
	}
	return nil
}

func (r SnapshotRepo) ListByEntity(_ context.Context, ent entity.ID, limit int) ([]survival.NeedSnapshot, error) {
	r.store.mu.RLock()
	rows := append([]survival.NeedSnapshot(nil), r.store.snapshots[ent]...)
	r.store.mu.RUnlock()
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].CapturedAt.Equal(rows[j].CapturedAt) {
			return rows[i].CapturedAt.After(rows[j].CapturedAt)
		}
		return rows[i].Kind < rows[j].Kind
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

var _ ports.SnapshotRepository = SnapshotRepo{}
