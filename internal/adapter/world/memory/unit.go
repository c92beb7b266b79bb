package memory

import (
	"math"

	"outpost/internal/app/ports"
	"outpost/internal/domain/survival"
	"outpost/internal/domain/world"
)

type Health struct {
	Hitpoints float64 `json:"hitpoints"`
	Max       float64 `json:"max"`
}

func NewHealth(max float64) *Health {
	return &Health{Hitpoints: max, Max: max}
}

func (h *Health) Reduce(amount float64) {
	if amount <= 0 {
		return
	}
	h.Hitpoints = math.Max(0, h.Hitpoints-amount)
}

func (h *Health) IsDead() bool { return h.Hitpoints <= 0 }

// Fogging counts how often an entity was hidden before a change.
type Fogging struct {
	Activations int
}

func (f *Fogging) Activate() { f.Activations++ }

// Ledger is an ordered carried-resource list.
type Ledger struct {
	Capacity float64
	carrying []survival.ResourceAmount
}

func NewLedger(capacity float64, initial ...survival.ResourceAmount) *Ledger {
	l := &Ledger{Capacity: capacity}
	for _, r := range initial {
		l.AdjustCarried(r.Type, r.Amount)
	}
	return l
}

func (l *Ledger) CarryingStatus() []survival.ResourceAmount {
	return append([]survival.ResourceAmount(nil), l.carrying...)
}

// AdjustCarried applies delta to resourceType, floored at 0 and capped at
// Capacity when Capacity is positive.
func (l *Ledger) AdjustCarried(resourceType string, delta float64) {
	if resourceType == "" || delta == 0 {
		return
	}
	for i := range l.carrying {
		if l.carrying[i].Type != resourceType {
			continue
		}
		l.carrying[i].Amount = l.clamp(l.carrying[i].Amount + delta)
		return
	}
	if delta < 0 {
		return
	}
	l.carrying = append(l.carrying, survival.ResourceAmount{Type: resourceType, Amount: l.clamp(delta)})
}

func (l *Ledger) Free() float64 {
	if l.Capacity <= 0 {
		return math.Inf(1)
	}
	total := 0.0
	for _, c := range l.carrying {
		total += c.Amount
	}
	return math.Max(0, l.Capacity-total)
}

func (l *Ledger) clamp(v float64) float64 {
	v = math.Max(0, v)
	if l.Capacity > 0 {
		v = math.Min(v, l.Capacity)
	}
	return v
}

type Position struct{ At world.Point }

func (p *Position) Position() (world.Point, bool) { return p.At, true }

type Vision struct{ Radius float64 }

func (v Vision) Range() float64 { return v.Radius }

type Ownership struct{ Player int }

func (o Ownership) Owner() int { return o.Player }

type Identity struct{ Native string }

func (i Identity) Civ() string { return i.Native }

type Obstruction struct{ Radius float64 }

func (o Obstruction) Size() float64 { return o.Radius }

type Visual struct{ Animation string }

func (v *Visual) SelectAnimation(name string, _ bool, _ float64) { v.Animation = name }

var (
	_ ports.Health           = (*Health)(nil)
	_ ports.Fogging          = (*Fogging)(nil)
	_ ports.ResourceGatherer = (*Ledger)(nil)
	_ ports.Position         = (*Position)(nil)
	_ ports.Vision           = Vision{}
	_ ports.Ownership        = Ownership{}
	_ ports.Identity         = Identity{}
	_ ports.Obstruction      = Obstruction{}
	_ ports.Visual           = (*Visual)(nil)
)
