package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"outpost/internal/app/needs"
	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

var ErrInvalidRequest = errors.New("invalid snapshot request")

// UseCase persists need mirages and reads back their history.
type UseCase struct {
	Registry   *entity.Registry
	Serializer ports.Serializer
	Snapshots  ports.SnapshotRepository
	Events     ports.EventRepository
	TxManager  ports.TxManager
	Now        func() time.Time
}

func (u UseCase) Capture(ctx context.Context, req CaptureRequest) (CaptureResponse, error) {
	if req.Entity == entity.Invalid || u.Registry == nil || u.Snapshots == nil {
		return CaptureResponse{}, ErrInvalidRequest
	}
	now := time.Now
	if u.Now != nil {
		now = u.Now
	}

	var (
		mirages []survival.Mirage
		found   bool
	)
	read := func() {
		if !u.Registry.Exists(req.Entity) {
			return
		}
		found = true
		for _, kind := range survival.Kinds() {
			if t, ok := entity.Query[*needs.Track](u.Registry, req.Entity, ports.NeedIID(kind)); ok {
				mirages = append(mirages, t.Mirage())
			}
		}
	}
	if u.Serializer == nil {
		read()
	} else if err := u.Serializer.Exec(ctx, read); err != nil {
		return CaptureResponse{}, err
	}
	if !found {
		return CaptureResponse{}, fmt.Errorf("entity %s: %w", req.Entity, ports.ErrNotFound)
	}

	at := now().UTC()
	rows := make([]survival.NeedSnapshot, 0, len(mirages))
	for _, m := range mirages {
		rows = append(rows, survival.NeedSnapshot{
			Entity:     req.Entity,
			Kind:       m.Kind(),
			Supply:     m.GetSupply(),
			MaxSupply:  m.GetMaxSupply(),
			Needy:      m.IsNeedy(),
			CapturedAt: at,
		})
	}
	save := func(ctx context.Context) error {
		return u.Snapshots.Save(ctx, rows)
	}
	var err error
	if u.TxManager != nil {
		err = u.TxManager.RunInTx(ctx, save)
	} else {
		err = save(ctx)
	}
	if err != nil {
		return CaptureResponse{}, fmt.Errorf("save snapshots: %w", err)
	}
	return CaptureResponse{Snapshots: rows}, nil
}

func (u UseCase) History(ctx context.Context, req HistoryRequest) (HistoryResponse, error) {
	if req.Entity == entity.Invalid || u.Snapshots == nil {
		return HistoryResponse{}, ErrInvalidRequest
	}
	rows, err := u.Snapshots.ListByEntity(ctx, req.Entity, req.Limit)
	if err != nil {
		return HistoryResponse{}, err
	}
	return HistoryResponse{Snapshots: rows}, nil
}

func (u UseCase) ListEvents(ctx context.Context, req EventsRequest) (EventsResponse, error) {
	if req.Entity == entity.Invalid || u.Events == nil {
		return EventsResponse{}, ErrInvalidRequest
	}
	events, err := u.Events.ListByEntity(ctx, req.Entity, req.Limit)
	if err != nil {
		return EventsResponse{}, err
	}
	events = filterByTimeWindow(events, req.OccurredFrom, req.OccurredTo)
	return EventsResponse{Events: events, LatestSupplies: latestSupplies(events)}, nil
}

func filterByTimeWindow(events []survival.DomainEvent, from, to int64) []survival.DomainEvent {
	if from <= 0 && to <= 0 {
		return events
	}
	out := make([]survival.DomainEvent, 0, len(events))
	for _, evt := range events {
		ts := evt.OccurredAt.Unix()
		if from > 0 && ts < from {
			continue
		}
		if to > 0 && ts > to {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// latestSupplies expects events newest first.
func latestSupplies(events []survival.DomainEvent) map[survival.Kind]float64 {
	out := make(map[survival.Kind]float64)
	for _, evt := range events {
		if evt.Type != survival.EventSuppliesChanged {
			continue
		}
		kind, ok := kindOf(evt.Payload["kind"])
		if !ok {
			continue
		}
		if _, seen := out[kind]; seen {
			continue
		}
		if v, ok := num(evt.Payload["to"]); ok {
			out[kind] = v
		}
	}
	return out
}

func kindOf(v any) (survival.Kind, bool) {
	switch k := v.(type) {
	case survival.Kind:
		return k, true
	case string:
		kind, err := survival.ParseKind(k)
		return kind, err == nil
	default:
		return "", false
	}
}

func num(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
