package sqliterepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

type snapshotRow struct {
	ID         string  `db:"id"`
	EntityID   int64   `db:"entity_id"`
	Kind       string  `db:"kind"`
	Supply     float64 `db:"supply"`
	MaxSupply  float64 `db:"max_supply"`
	Needy      int     `db:"needy"`
	CapturedAt int64   `db:"captured_at"`
}

type eventRow struct {
	ID         int64  `db:"id"`
	EventID    string `db:"event_id"`
	EntityID   int64  `db:"entity_id"`
	Type       string `db:"type"`
	OccurredAt int64  `db:"occurred_at"`
	Payload    string `db:"payload"`
}

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) SnapshotRepo {
	return SnapshotRepo{db: db}
}

func (r SnapshotRepo) Save(ctx context.Context, snapshots []survival.NeedSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	q := r.db.from(ctx)
	stmt, err := q.PreparexContext(ctx, `INSERT OR IGNORE INTO need_snapshots
		(id, entity_id, kind, supply, max_supply, needy, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range snapshots {
		id := s.ID
		if id == "" {
			id = uuid.NewString()
		}
		needy := 0
		if s.Needy {
			needy = 1
		}
		if _, err := stmt.ExecContext(ctx, id, int64(s.Entity), string(s.Kind), s.Supply, s.MaxSupply, needy, s.CapturedAt.UnixNano()); err != nil {
			return fmt.Errorf("insert snapshot %s: %w", id, err)
		}
	}
	return nil
}

func (r SnapshotRepo) ListByEntity(ctx context.Context, ent entity.ID, limit int) ([]survival.NeedSnapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []snapshotRow
	err := sqlx.SelectContext(ctx, r.db.from(ctx), &rows,
		`SELECT id, entity_id, kind, supply, max_supply, needy, captured_at
		 FROM need_snapshots WHERE entity_id = ?
		 ORDER BY captured_at DESC, kind ASC LIMIT ?`,
		int64(ent), limit,
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}
	out := make([]survival.NeedSnapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, survival.NeedSnapshot{
			ID:         row.ID,
			Entity:     entity.ID(row.EntityID),
			Kind:       survival.Kind(row.Kind),
			Supply:     row.Supply,
			MaxSupply:  row.MaxSupply,
			Needy:      row.Needy != 0,
			CapturedAt: time.Unix(0, row.CapturedAt).UTC(),
		})
	}
	return out, nil
}

type EventRepo struct {
	db *DB
}

func NewEventRepo(db *DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, events []survival.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	q := r.db.from(ctx)
	for _, e := range events {
		b, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", e.Type, err)
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO domain_events (event_id, entity_id, type, occurred_at, payload) VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), int64(e.Entity), e.Type, e.OccurredAt.UnixNano(), string(b),
		); err != nil {
			return fmt.Errorf("insert event %s: %w", e.Type, err)
		}
	}
	return nil
}

func (r EventRepo) ListByEntity(ctx context.Context, ent entity.ID, limit int) ([]survival.DomainEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []eventRow
	err := sqlx.SelectContext(ctx, r.db.from(ctx), &rows,
		`SELECT id, event_id, entity_id, type, occurred_at, payload
		 FROM domain_events WHERE entity_id = ?
		 ORDER BY occurred_at DESC, id DESC LIMIT ?`,
		int64(ent), limit,
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}
	out := make([]survival.DomainEvent, 0, len(rows))
	for _, row := range rows {
		var payload map[string]any
		if row.Payload != "" {
			_ = json.Unmarshal([]byte(row.Payload), &payload)
		}
		out = append(out, survival.DomainEvent{
			Type:       row.Type,
			Entity:     entity.ID(row.EntityID),
			OccurredAt: time.Unix(0, row.OccurredAt).UTC(),
			Payload:    payload,
		})
	}
	return out, nil
}

var (
	_ ports.SnapshotRepository = SnapshotRepo{}
	_ ports.EventRepository    = EventRepo{}
	_ ports.TxManager          = TxManager{}
)
