package memory

import (
	"sync"

	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

type Store struct {
	mu        sync.RWMutex
	txMu      sync.Mutex
	snapshots map[entity.ID][]survival.NeedSnapshot
	events    map[entity.ID][]survival.DomainEvent
}

func NewStore() *Store {
	return &Store{
		snapshots: make(map[entity.ID][]survival.NeedSnapshot),
		events:    make(map[entity.ID][]survival.DomainEvent),
	}
}
