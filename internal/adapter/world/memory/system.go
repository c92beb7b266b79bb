package memory

import (
	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
)

// Ranges measures center distance between entity positions.
type Ranges struct {
	Registry *entity.Registry
}

func (r Ranges) IsInTargetRange(ent, target entity.ID, minRange, maxRange float64) bool {
	a, ok := entity.Query[ports.Position](r.Registry, ent, ports.IIDPosition)
	if !ok {
		return false
	}
	b, ok := entity.Query[ports.Position](r.Registry, target, ports.IIDPosition)
	if !ok {
		return false
	}
	pa, okA := a.Position()
	pb, okB := b.Position()
	if !okA || !okB {
		return false
	}
	d := pa.DistanceTo(pb)
	return d >= minRange && d <= maxRange
}

type Player struct {
	Civ      string
	Allies   []int
	Disabled map[string]bool
}

// Players is a static player directory. Every player is its own ally.
type Players map[int]Player

func (p Players) IsAlly(player, other int) bool {
	if player == other {
		return true
	}
	for _, a := range p[player].Allies {
		if a == other {
			return true
		}
	}
	return false
}

func (p Players) Civ(player int) string { return p[player].Civ }

func (p Players) DisabledTemplates(player int) map[string]bool {
	out := make(map[string]bool, len(p[player].Disabled))
	for k, v := range p[player].Disabled {
		out[k] = v
	}
	return out
}

type Catalog map[string]bool

func (c Catalog) TemplateExists(name string) bool { return c[name] }

// Modifiers multiplies named template values.
type Modifiers map[string]float64

func (m Modifiers) Apply(name string, base float64, _ entity.ID) float64 {
	if f, ok := m[name]; ok {
		return base * f
	}
	return base
}

var (
	_ ports.RangeManager    = Ranges{}
	_ ports.Players         = Players{}
	_ ports.TemplateCatalog = Catalog{}
	_ ports.ValueModifiers  = Modifiers{}
)
