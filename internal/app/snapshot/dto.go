package snapshot

import (
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

type CaptureRequest struct {
	Entity entity.ID
}

type CaptureResponse struct {
	Snapshots []survival.NeedSnapshot `json:"snapshots"`
}

type HistoryRequest struct {
	Entity entity.ID
	Limit  int
}

type HistoryResponse struct {
	Snapshots []survival.NeedSnapshot `json:"snapshots"`
}

type EventsRequest struct {
	Entity       entity.ID
	Limit        int
	OccurredFrom int64
	OccurredTo   int64
}

// EventsResponse carries LatestSupplies, the newest supplies_changed value
// per kind within the listed events.
type EventsResponse struct {
	Events         []survival.DomainEvent    `json:"events"`
	LatestSupplies map[survival.Kind]float64 `json:"latest_supplies"`
}
