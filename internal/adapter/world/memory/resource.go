package memory

import (
	"math"

	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
	"outpost/internal/domain/world"
)

// ResourceNode is a gatherable supply placed in the world.
type ResourceNode struct {
	node world.ResourceNode
}

func NewResourceNode(n world.ResourceNode) (*ResourceNode, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &ResourceNode{node: n}, nil
}

func (r *ResourceNode) GenericType() string    { return r.node.GenericType }
func (r *ResourceNode) CurrentAmount() float64 { return r.node.Amount }
func (r *ResourceNode) MaxAmount() float64     { return r.node.MaxAmount }

// Change applies delta within [0, MaxAmount] and returns what was applied.
func (r *ResourceNode) Change(delta float64) float64 {
	old := r.node.Amount
	r.node.Amount = math.Max(0, math.Min(r.node.MaxAmount, old+delta))
	return r.node.Amount - old
}

func (r *ResourceNode) Position() (world.Point, bool) { return r.node.Position, true }

// Dropsite accepts a fixed set of resource types.
type Dropsite struct {
	Accepted []string
	Stock    map[string]float64
}

func NewDropsite(accepted ...string) *Dropsite {
	return &Dropsite{Accepted: accepted, Stock: map[string]float64{}}
}

func (d *Dropsite) AcceptsType(resourceType string) bool {
	for _, a := range d.Accepted {
		if a == resourceType {
			return true
		}
	}
	return false
}

// ReceiveResources takes the first accepted type from offered and returns
// what the sender still holds.
func (d *Dropsite) ReceiveResources(offered []survival.ResourceAmount, _ entity.ID) []survival.ResourceAmount {
	taken, ok := survival.Dropoff(d.Accepted, offered)
	rest := make([]survival.ResourceAmount, 0, len(offered))
	for _, o := range offered {
		if ok && o.Type == taken.Type {
			continue
		}
		rest = append(rest, o)
	}
	if ok && taken.Amount > 0 {
		d.Stock[taken.Type] += taken.Amount
	}
	return rest
}

var (
	_ ports.ResourceSupply   = (*ResourceNode)(nil)
	_ ports.Position         = (*ResourceNode)(nil)
	_ ports.ResourceDropsite = (*Dropsite)(nil)
)
