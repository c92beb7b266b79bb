package memory

import (
	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
	"outpost/internal/domain/world"
)

// World assembles entities from the in-memory collaborators.
type World struct {
	Registry *entity.Registry
}

func NewWorld(reg *entity.Registry) World {
	if reg == nil {
		reg = entity.NewRegistry()
	}
	return World{Registry: reg}
}

type UnitSpec struct {
	Player      int
	Civ         string
	At          world.Point
	Hitpoints   float64
	Vision      float64
	Obstruction float64
	Capacity    float64
	Carrying    []survival.ResourceAmount
}

// Unit is the set of collaborators attached by SpawnUnit.
type Unit struct {
	ID       entity.ID
	Health   *Health
	Fogging  *Fogging
	Ledger   *Ledger
	AI       *UnitAI
	Position *Position
	Visual   *Visual
}

func (w World) SpawnUnit(spec UnitSpec) Unit {
	id := w.Registry.Create()
	u := Unit{
		ID:       id,
		Health:   NewHealth(spec.Hitpoints),
		Fogging:  &Fogging{},
		Ledger:   NewLedger(spec.Capacity, spec.Carrying...),
		AI:       NewUnitAI(w.Registry, id),
		Position: &Position{At: spec.At},
		Visual:   &Visual{Animation: survival.AnimationIdle},
	}
	w.Registry.Attach(id, ports.IIDHealth, u.Health)
	w.Registry.Attach(id, ports.IIDFogging, u.Fogging)
	w.Registry.Attach(id, ports.IIDResourceGatherer, u.Ledger)
	w.Registry.Attach(id, ports.IIDUnitAI, u.AI)
	w.Registry.Attach(id, ports.IIDPosition, u.Position)
	w.Registry.Attach(id, ports.IIDVision, Vision{Radius: spec.Vision})
	w.Registry.Attach(id, ports.IIDOwnership, Ownership{Player: spec.Player})
	w.Registry.Attach(id, ports.IIDVisual, u.Visual)
	if spec.Civ != "" {
		w.Registry.Attach(id, ports.IIDIdentity, Identity{Native: spec.Civ})
	}
	if spec.Obstruction > 0 {
		w.Registry.Attach(id, ports.IIDObstruction, Obstruction{Radius: spec.Obstruction})
	}
	return u
}

func (w World) SpawnResource(n world.ResourceNode) (entity.ID, error) {
	node, err := NewResourceNode(n)
	if err != nil {
		return entity.Invalid, err
	}
	id := w.Registry.Create()
	w.Registry.Attach(id, ports.IIDResourceSupply, node)
	w.Registry.Attach(id, ports.IIDPosition, node)
	return id, nil
}

func (w World) SpawnDropsite(player int, at world.Point, accepted ...string) (entity.ID, *Dropsite) {
	id := w.Registry.Create()
	site := NewDropsite(accepted...)
	w.Registry.Attach(id, ports.IIDResourceDropsite, site)
	w.Registry.Attach(id, ports.IIDPosition, &Position{At: at})
	w.Registry.Attach(id, ports.IIDOwnership, Ownership{Player: player})
	return id, site
}

func (w World) SpawnFoundation(player int, at world.Point, costs []survival.ResourceAmount, ratio, buildTime float64) (entity.ID, *Foundation) {
	id := w.Registry.Create()
	f := NewFoundation(costs, ratio, buildTime)
	w.Registry.Attach(id, ports.IIDFoundation, f)
	w.Registry.Attach(id, ports.IIDBuilderList, f)
	w.Registry.Attach(id, ports.IIDCost, Cost(costs))
	w.Registry.Attach(id, ports.IIDPosition, &Position{At: at})
	w.Registry.Attach(id, ports.IIDOwnership, Ownership{Player: player})
	return id, f
}

func (w World) SpawnStructure(player int, at world.Point, hp, repairRate float64, costs []survival.ResourceAmount) (entity.ID, *Structure) {
	id := w.Registry.Create()
	s := NewStructure(hp, repairRate, costs)
	w.Registry.Attach(id, ports.IIDRepairable, s)
	w.Registry.Attach(id, ports.IIDBuilderList, s)
	w.Registry.Attach(id, ports.IIDCost, s)
	w.Registry.Attach(id, ports.IIDHealth, s.Health)
	w.Registry.Attach(id, ports.IIDPosition, &Position{At: at})
	w.Registry.Attach(id, ports.IIDOwnership, Ownership{Player: player})
	return id, s
}
