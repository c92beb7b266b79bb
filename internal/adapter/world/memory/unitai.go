package memory

import (
	"math"

	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
	"outpost/internal/domain/world"
)

type Order struct {
	Target entity.ID         `json:"target"`
	Flags  ports.GatherOrder `json:"flags"`
}

// UnitAI resolves gather orders instantly: the unit takes what fits into its
// ledger from the target supply. Movement is not simulated.
type UnitAI struct {
	reg    *entity.Registry
	self   entity.ID
	Orders []Order
	Facing entity.ID
	Inbox  []survival.StopReason
}

func NewUnitAI(reg *entity.Registry, self entity.ID) *UnitAI {
	return &UnitAI{reg: reg, self: self}
}

// FindNearbyResource returns the closest supply within radius accepted by
// accept. Ties go to the lower entity id.
func (u *UnitAI) FindNearbyResource(center world.Point, radius float64, accept func(entity.ID, ports.ResourceSupply) bool) (entity.ID, bool) {
	best := entity.Invalid
	bestDist := math.Inf(1)
	for _, id := range u.reg.Entities(ports.IIDResourceSupply) {
		supply, ok := entity.Query[ports.ResourceSupply](u.reg, id, ports.IIDResourceSupply)
		if !ok || (accept != nil && !accept(id, supply)) {
			continue
		}
		pos, ok := entity.Query[ports.Position](u.reg, id, ports.IIDPosition)
		if !ok {
			continue
		}
		at, ok := pos.Position()
		if !ok || !center.Within(at, radius) {
			continue
		}
		d := center.DistanceTo(at)
		if d < bestDist || (d == bestDist && id < best) {
			best, bestDist = id, d
		}
	}
	return best, best != entity.Invalid
}

func (u *UnitAI) PerformGather(target entity.ID, order ports.GatherOrder) bool {
	supply, ok := entity.Query[ports.ResourceSupply](u.reg, target, ports.IIDResourceSupply)
	if !ok {
		return false
	}
	if order.PushFront {
		u.Orders = append([]Order{{Target: target, Flags: order}}, u.Orders...)
	} else {
		u.Orders = append(u.Orders, Order{Target: target, Flags: order})
	}
	ledger, ok := entity.Query[*Ledger](u.reg, u.self, ports.IIDResourceGatherer)
	if !ok {
		return true
	}
	take := math.Min(ledger.Free(), supply.CurrentAmount())
	if take > 0 {
		taken := -supply.Change(-take)
		ledger.AdjustCarried(supply.GenericType(), taken)
	}
	return true
}

func (u *UnitAI) FaceTowardsTarget(target entity.ID) { u.Facing = target }

// ProcessMessage records builder stop reasons addressed to this unit.
func (u *UnitAI) ProcessMessage(reason survival.StopReason) {
	u.Inbox = append(u.Inbox, reason)
}

var (
	_ ports.UnitAI           = (*UnitAI)(nil)
	_ ports.MessageProcessor = (*UnitAI)(nil)
)
