package memory

import (
	"math"

	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

// Foundation is a structure under construction. It completes once enough
// work has been put in; needed counts track outstanding materials.
type Foundation struct {
	Costs      []survival.ResourceAmount
	Needed     map[string]float64
	Ratio      float64
	Multiplier float64
	BuildTime  float64
	Progress   float64
	builders   map[entity.ID]bool
}

func NewFoundation(costs []survival.ResourceAmount, ratio, buildTime float64) *Foundation {
	needed := make(map[string]float64, len(costs))
	for _, c := range costs {
		needed[c.Type] += c.Amount
	}
	if buildTime <= 0 {
		buildTime = 1
	}
	return &Foundation{
		Costs:      append([]survival.ResourceAmount(nil), costs...),
		Needed:     needed,
		Ratio:      ratio,
		Multiplier: 1,
		BuildTime:  buildTime,
		builders:   map[entity.ID]bool{},
	}
}

func (f *Foundation) IsComplete() bool { return f.Progress >= 1 }

// ResourceCosts lists outstanding costs in their original order.
func (f *Foundation) ResourceCosts() []survival.ResourceAmount {
	out := make([]survival.ResourceAmount, 0, len(f.Costs))
	for _, c := range f.Costs {
		out = append(out, survival.ResourceAmount{Type: c.Type, Amount: f.Needed[c.Type]})
	}
	return out
}

func (f *Foundation) NeededResourceCount(resourceType string) float64 {
	return f.Needed[resourceType]
}

func (f *Foundation) ReduceNeededResourceCount(resourceType string, amount float64) {
	if _, ok := f.Needed[resourceType]; !ok || amount <= 0 {
		return
	}
	f.Needed[resourceType] = math.Max(0, f.Needed[resourceType]-amount)
}

func (f *Foundation) ResourceRatio() float64   { return f.Ratio }
func (f *Foundation) BuildMultiplier() float64 { return f.Multiplier }

func (f *Foundation) Build(_ entity.ID, work float64) {
	if work <= 0 || f.IsComplete() {
		return
	}
	f.Progress = math.Min(1, f.Progress+work*f.Multiplier/f.BuildTime)
}

func (f *Foundation) AddBuilder(id entity.ID)    { f.builders[id] = true }
func (f *Foundation) RemoveBuilder(id entity.ID) { delete(f.builders, id) }

func (f *Foundation) Builders() int { return len(f.builders) }

// Structure is a finished building that can be damaged and repaired.
type Structure struct {
	Health     *Health
	RepairRate float64
	Costs      []survival.ResourceAmount
	builders   map[entity.ID]bool
}

func NewStructure(hp, repairRate float64, costs []survival.ResourceAmount) *Structure {
	return &Structure{
		Health:     NewHealth(hp),
		RepairRate: repairRate,
		Costs:      append([]survival.ResourceAmount(nil), costs...),
		builders:   map[entity.ID]bool{},
	}
}

func (s *Structure) IsRepairable() bool { return s.Health.Hitpoints < s.Health.Max }

func (s *Structure) Repair(_ entity.ID, work float64) {
	if work <= 0 {
		return
	}
	s.Health.Hitpoints = math.Min(s.Health.Max, s.Health.Hitpoints+work*s.RepairRate)
}

func (s *Structure) ResourceCosts() []survival.ResourceAmount {
	return append([]survival.ResourceAmount(nil), s.Costs...)
}

func (s *Structure) AddBuilder(id entity.ID)    { s.builders[id] = true }
func (s *Structure) RemoveBuilder(id entity.ID) { delete(s.builders, id) }

func (s *Structure) Builders() int { return len(s.builders) }

type staticCost []survival.ResourceAmount

func (c staticCost) ResourceCosts() []survival.ResourceAmount {
	return append([]survival.ResourceAmount(nil), c...)
}

// Cost is the full template cost of a structure, independent of progress.
func Cost(costs []survival.ResourceAmount) ports.Cost {
	return staticCost(append([]survival.ResourceAmount(nil), costs...))
}

var (
	_ ports.Foundation  = (*Foundation)(nil)
	_ ports.BuilderList = (*Foundation)(nil)
	_ ports.Repairable  = (*Structure)(nil)
	_ ports.Cost        = (*Structure)(nil)
	_ ports.BuilderList = (*Structure)(nil)
)
