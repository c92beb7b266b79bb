package ports

import (
	"context"
	"time"

	"outpost/internal/domain/entity"
)

type TimerID uint64

// TimerKey identifies what a timer drives, for bookkeeping only.
type TimerKey struct {
	Entity entity.ID  `json:"entity"`
	IID    entity.IID `json:"iid"`
	Method string     `json:"method"`
}

// Scheduler runs callbacks one at a time on the simulation goroutine.
// lateness is how far behind its due time the callback fired.
type Scheduler interface {
	SetInterval(key TimerKey, first, repeat time.Duration, fn func(lateness time.Duration)) TimerID
	SetTimeout(key TimerKey, delay time.Duration, fn func(lateness time.Duration)) TimerID
	CancelTimer(id TimerID)
}

// Serializer runs fn on the simulation goroutine's side of the world lock.
type Serializer interface {
	Exec(ctx context.Context, fn func()) error
}
