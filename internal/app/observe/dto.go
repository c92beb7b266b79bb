package observe

import (
	"outpost/internal/domain/entity"
	"outpost/internal/domain/world"
)

type Request struct {
	Entity entity.ID
	// Radius overrides the entity's vision range when positive.
	Radius float64
}

type ObservedResource struct {
	ID          entity.ID   `json:"id"`
	GenericType string      `json:"generic_type"`
	Amount      float64     `json:"amount"`
	Position    world.Point `json:"position"`
	Distance    float64     `json:"distance"`
}

type Response struct {
	Entity    entity.ID          `json:"entity"`
	Center    world.Point        `json:"center"`
	Radius    float64            `json:"radius"`
	Resources []ObservedResource `json:"resources"`
}
