package status

import (
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

type Request struct {
	Entity entity.ID
}

type BuilderView struct {
	Target   entity.ID      `json:"target,omitempty"`
	Active   bool           `json:"active"`
	Targeted entity.ID      `json:"targeted,omitempty"`
	Rate     float64        `json:"rate"`
	Range    survival.Range `json:"range"`
	Entities []string       `json:"entities"`
}

type Response struct {
	Entity  entity.ID                 `json:"entity"`
	Needs   []survival.Mirage         `json:"needs"`
	Carried []survival.ResourceAmount `json:"carried"`
	Builder *BuilderView              `json:"builder,omitempty"`
}
