package entity

import (
	"strconv"
	"sync"
)

// ID identifies a simulated entity. Invalid is never assigned.
type ID uint32

const Invalid ID = 0

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IID names a capability slot on an entity.
type IID string

// Registry maps entities to the capabilities attached to them.
type Registry struct {
	mu    sync.RWMutex
	next  ID
	byID  map[ID]map[IID]any
	hooks map[ID][]func()
}

func NewRegistry() *Registry {
	return &Registry{
		byID:  make(map[ID]map[IID]any),
		hooks: make(map[ID][]func()),
	}
}

func (r *Registry) Create() ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := r.next
	r.byID[id] = make(map[IID]any)
	return id
}

func (r *Registry) Exists(id ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}

// Attach stores capability under iid, replacing any previous one.
func (r *Registry) Attach(id ID, iid IID, capability any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	caps, ok := r.byID[id]
	if !ok || capability == nil {
		return false
	}
	caps[iid] = capability
	return true
}

func (r *Registry) Detach(id ID, iid IID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caps, ok := r.byID[id]; ok {
		delete(caps, iid)
	}
}

// OnDestroy registers fn to run when id is destroyed.
func (r *Registry) OnDestroy(id ID, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok || fn == nil {
		return
	}
	r.hooks[id] = append(r.hooks[id], fn)
}

// Destroy runs destroy hooks in registration order, then drops the entity.
func (r *Registry) Destroy(id ID) {
	r.mu.Lock()
	hooks := r.hooks[id]
	delete(r.hooks, id)
	r.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

func (r *Registry) lookup(id ID, iid IID) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	caps, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	c, ok := caps[iid]
	return c, ok
}

// Entities returns every live entity id carrying iid.
func (r *Registry) Entities(iid IID) []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ID, 0)
	for id, caps := range r.byID {
		if _, ok := caps[iid]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Query returns the capability stored under iid if it satisfies T.
func Query[T any](r *Registry, id ID, iid IID) (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}
	c, ok := r.lookup(id, iid)
	if !ok {
		return zero, false
	}
	typed, ok := c.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
