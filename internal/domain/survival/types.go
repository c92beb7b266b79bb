package survival

import (
	"time"

	"outpost/internal/domain/entity"
)

type ResourceAmount struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

type Change struct {
	Old float64 `json:"old"`
	New float64 `json:"new"`
}

func (c Change) Delta() float64 {
	return c.New - c.Old
}

type StopReason string

const (
	ReasonNone              StopReason = ""
	ReasonTargetInvalidated StopReason = "TargetInvalidated"
	ReasonOutOfRange        StopReason = "OutOfRange"
)

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type DomainEvent struct {
	Type       string         `json:"type"`
	Entity     entity.ID      `json:"entity"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

const (
	EventSuppliesChanged  = "supplies_changed"
	EventStarvationDamage = "starvation_damage"
	EventForageOrdered    = "forage_ordered"
	EventRepairStarted    = "repair_started"
	EventRepairStopped    = "repair_stopped"
	EventBuildProgress    = "build_progress"
)

// NeedSnapshot is a persisted mirage.
type NeedSnapshot struct {
	ID         string    `json:"id"`
	Entity     entity.ID `json:"entity"`
	Kind       Kind      `json:"kind"`
	Supply     float64   `json:"supply"`
	MaxSupply  float64   `json:"max_supply"`
	Needy      bool      `json:"needy"`
	CapturedAt time.Time `json:"captured_at"`
}
