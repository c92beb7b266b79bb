package ports

import "outpost/internal/domain/survival"

// Notifier must not block the caller.
type Notifier interface {
	Post(event survival.DomainEvent)
}

type NopNotifier struct{}

func (NopNotifier) Post(survival.DomainEvent) {}
