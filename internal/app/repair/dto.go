package repair

import (
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

type StartRequest struct {
	Entity entity.ID
	Target entity.ID
	// Caller is notified when the builder stops on its own. Empty means UnitAI.
	Caller entity.IID
}

type StartResponse struct {
	Entity entity.ID      `json:"entity"`
	Target entity.ID      `json:"target"`
	Range  survival.Range `json:"range"`
}

type StopRequest struct {
	Entity entity.ID
}

type StopResponse struct {
	Entity     entity.ID `json:"entity"`
	WasActive  bool      `json:"was_active"`
	LastTarget entity.ID `json:"last_target,omitempty"`
}
