package ports

import (
	"context"

	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

type SnapshotRepository interface {
	Save(ctx context.Context, snapshots []survival.NeedSnapshot) error
	ListByEntity(ctx context.Context, ent entity.ID, limit int) ([]survival.NeedSnapshot, error)
}

type EventRepository interface {
	Append(ctx context.Context, events []survival.DomainEvent) error
	ListByEntity(ctx context.Context, ent entity.ID, limit int) ([]survival.DomainEvent, error)
}
