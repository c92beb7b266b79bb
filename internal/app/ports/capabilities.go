package ports

import (
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
	"outpost/internal/domain/world"
)

const (
	IIDHealth           entity.IID = "Health"
	IIDFogging          entity.IID = "Fogging"
	IIDResourceGatherer entity.IID = "ResourceGatherer"
	IIDResourceSupply   entity.IID = "ResourceSupply"
	IIDResourceDropsite entity.IID = "ResourceDropsite"
	IIDUnitAI           entity.IID = "UnitAI"
	IIDPosition         entity.IID = "Position"
	IIDVision           entity.IID = "Vision"
	IIDOwnership        entity.IID = "Ownership"
	IIDIdentity         entity.IID = "Identity"
	IIDFoundation       entity.IID = "Foundation"
	IIDRepairable       entity.IID = "Repairable"
	IIDCost             entity.IID = "Cost"
	IIDBuilderList      entity.IID = "BuilderList"
	IIDObstruction      entity.IID = "Obstruction"
	IIDVisual           entity.IID = "Visual"
	IIDBuilder          entity.IID = "Builder"
	IIDMeatSupplies     entity.IID = "MeatSupplies"
	IIDVeganSupplies    entity.IID = "VeganSupplies"
	IIDWaterSupplies    entity.IID = "WaterSupplies"
)

// NeedIID maps a need kind to its capability slot.
func NeedIID(k survival.Kind) entity.IID {
	switch k {
	case survival.KindMeat:
		return IIDMeatSupplies
	case survival.KindVegan:
		return IIDVeganSupplies
	case survival.KindWater:
		return IIDWaterSupplies
	default:
		return entity.IID(string(k) + "Supplies")
	}
}

type Health interface {
	Reduce(amount float64)
}

type Fogging interface {
	Activate()
}

// ResourceGatherer owns the carried-resource ledger.
type ResourceGatherer interface {
	CarryingStatus() []survival.ResourceAmount
	AdjustCarried(resourceType string, delta float64)
}

type ResourceSupply interface {
	GenericType() string
	CurrentAmount() float64
	Change(delta float64) float64
}

type ResourceDropsite interface {
	AcceptsType(resourceType string) bool
	ReceiveResources(offered []survival.ResourceAmount, from entity.ID) []survival.ResourceAmount
}

type GatherOrder struct {
	Queued    bool
	Force     bool
	PushFront bool
	Redrop    bool
	Full      bool
}

type UnitAI interface {
	FindNearbyResource(center world.Point, radius float64, accept func(entity.ID, ResourceSupply) bool) (entity.ID, bool)
	PerformGather(target entity.ID, order GatherOrder) bool
	FaceTowardsTarget(target entity.ID)
}

// MessageProcessor receives builder termination reasons.
type MessageProcessor interface {
	ProcessMessage(reason survival.StopReason)
}

type Position interface {
	Position() (world.Point, bool)
}

type Vision interface {
	Range() float64
}

type Ownership interface {
	Owner() int
}

type Identity interface {
	Civ() string
}

type Foundation interface {
	IsComplete() bool
	ResourceCosts() []survival.ResourceAmount
	NeededResourceCount(resourceType string) float64
	ReduceNeededResourceCount(resourceType string, amount float64)
	ResourceRatio() float64
	BuildMultiplier() float64
	Build(builder entity.ID, work float64)
}

type Repairable interface {
	IsRepairable() bool
	Repair(builder entity.ID, work float64)
}

type Cost interface {
	ResourceCosts() []survival.ResourceAmount
}

type BuilderList interface {
	AddBuilder(builder entity.ID)
	RemoveBuilder(builder entity.ID)
}

type Obstruction interface {
	Size() float64
}

type Visual interface {
	SelectAnimation(name string, once bool, speed float64)
}

// RangeManager answers range queries between two entities.
type RangeManager interface {
	IsInTargetRange(ent, target entity.ID, minRange, maxRange float64) bool
}

// Players is the system-wide player directory.
type Players interface {
	IsAlly(player, other int) bool
	Civ(player int) string
	DisabledTemplates(player int) map[string]bool
}

type TemplateCatalog interface {
	TemplateExists(name string) bool
}

// ValueModifiers applies technology/aura modifiers to template values.
type ValueModifiers interface {
	Apply(name string, base float64, ent entity.ID) float64
}

type IdentityModifiers struct{}

func (IdentityModifiers) Apply(_ string, base float64, _ entity.ID) float64 { return base }

type Random interface {
	Float64() float64
}
