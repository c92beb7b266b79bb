package builder

import (
	"time"

	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
	"outpost/internal/domain/world"
)

type stubScheduler struct {
	next      ports.TimerID
	active    map[ports.TimerID]ports.TimerKey
	cancelled []ports.TimerID
}

func (s *stubScheduler) SetInterval(key ports.TimerKey, _, _ time.Duration, _ func(time.Duration)) ports.TimerID {
	if s.active == nil {
		s.active = map[ports.TimerID]ports.TimerKey{}
	}
	s.next++
	s.active[s.next] = key
	return s.next
}

func (s *stubScheduler) SetTimeout(key ports.TimerKey, d time.Duration, fn func(time.Duration)) ports.TimerID {
	return s.SetInterval(key, d, 0, fn)
}

func (s *stubScheduler) CancelTimer(id ports.TimerID) {
	delete(s.active, id)
	s.cancelled = append(s.cancelled, id)
}

type allies struct{ disabled map[string]bool }

func (allies) IsAlly(player, other int) bool { return player == other || (player > 0 && other > 0) }
func (allies) Civ(int) string                { return "athen" }

func (a allies) DisabledTemplates(int) map[string]bool { return a.disabled }

type catalog map[string]bool

func (c catalog) TemplateExists(name string) bool { return c[name] }

type owner int

func (o owner) Owner() int { return int(o) }

type civ string

func (c civ) Civ() string { return string(c) }

type stubRanges struct{ in bool }

func (r *stubRanges) IsInTargetRange(_, _ entity.ID, _, _ float64) bool { return r.in }

type stubFoundation struct {
	complete   bool
	costs      []survival.ResourceAmount
	needed     map[string]float64
	ratio      float64
	multiplier float64
	work       []float64
}

func (f *stubFoundation) IsComplete() bool                         { return f.complete }
func (f *stubFoundation) ResourceCosts() []survival.ResourceAmount { return f.costs }
func (f *stubFoundation) NeededResourceCount(t string) float64     { return f.needed[t] }
func (f *stubFoundation) ResourceRatio() float64                   { return f.ratio }
func (f *stubFoundation) BuildMultiplier() float64                 { return f.multiplier }

func (f *stubFoundation) ReduceNeededResourceCount(t string, amount float64) {
	f.needed[t] -= amount
}

func (f *stubFoundation) Build(_ entity.ID, work float64) { f.work = append(f.work, work) }

type stubRepairable struct {
	damaged bool
	repairs []float64
}

func (r *stubRepairable) IsRepairable() bool               { return r.damaged }
func (r *stubRepairable) Repair(_ entity.ID, work float64) { r.repairs = append(r.repairs, work) }

type stubCost []survival.ResourceAmount

func (c stubCost) ResourceCosts() []survival.ResourceAmount { return c }

type stubBuilderList struct{ builders map[entity.ID]bool }

func (l *stubBuilderList) AddBuilder(id entity.ID)    { l.builders[id] = true }
func (l *stubBuilderList) RemoveBuilder(id entity.ID) { delete(l.builders, id) }

type stubVisual struct{ last string }

func (v *stubVisual) SelectAnimation(name string, _ bool, _ float64) { v.last = name }

type stubObstruction float64

func (o stubObstruction) Size() float64 { return float64(o) }

type stubGatherer struct{ carrying []survival.ResourceAmount }

func (g *stubGatherer) CarryingStatus() []survival.ResourceAmount {
	return append([]survival.ResourceAmount(nil), g.carrying...)
}

func (g *stubGatherer) AdjustCarried(resourceType string, delta float64) {
	for i := range g.carrying {
		if g.carrying[i].Type == resourceType {
			g.carrying[i].Amount += delta
			return
		}
	}
}

type stubSupply struct {
	generic string
	amount  float64
}

func (s stubSupply) GenericType() string          { return s.generic }
func (s stubSupply) CurrentAmount() float64       { return s.amount }
func (s stubSupply) Change(delta float64) float64 { return delta }

type stubUnitAI struct {
	nearby   []entity.ID
	supplies map[entity.ID]stubSupply
	searched []string
	gathered []entity.ID
	faced    int
}

func (a *stubUnitAI) FindNearbyResource(_ world.Point, _ float64, accept func(entity.ID, ports.ResourceSupply) bool) (entity.ID, bool) {
	probe := ""
	for _, id := range a.nearby {
		s := a.supplies[id]
		if accept(id, s) {
			a.searched = append(a.searched, s.generic)
			return id, true
		}
	}
	for _, generic := range []string{"wood", "stone", "metal", "food"} {
		if accept(entity.Invalid, stubSupply{generic: generic, amount: 1}) {
			probe = generic
		}
	}
	a.searched = append(a.searched, probe)
	return entity.Invalid, false
}

func (a *stubUnitAI) PerformGather(target entity.ID, _ ports.GatherOrder) bool {
	a.gathered = append(a.gathered, target)
	return true
}

func (a *stubUnitAI) FaceTowardsTarget(entity.ID) { a.faced++ }

type stubPosition struct{}

func (stubPosition) Position() (world.Point, bool) { return world.Point{}, true }

type recordingProcessor struct {
	reasons []survival.StopReason
	onStop  func(survival.StopReason)
}

func (p *recordingProcessor) ProcessMessage(reason survival.StopReason) {
	p.reasons = append(p.reasons, reason)
	if p.onStop != nil {
		p.onStop(reason)
	}
}

type fixture struct {
	reg     *entity.Registry
	sched   *stubScheduler
	ranges  *stubRanges
	actor   entity.ID
	visual  *stubVisual
	carry   *stubGatherer
	ai      *stubUnitAI
	builder *Builder
}

func newFixture(rate float64) *fixture {
	reg := entity.NewRegistry()
	f := &fixture{
		reg:    reg,
		sched:  &stubScheduler{},
		ranges: &stubRanges{in: true},
		actor:  reg.Create(),
		visual: &stubVisual{},
		carry:  &stubGatherer{},
		ai:     &stubUnitAI{supplies: map[entity.ID]stubSupply{}},
	}
	reg.Attach(f.actor, ports.IIDOwnership, owner(1))
	reg.Attach(f.actor, ports.IIDVisual, f.visual)
	reg.Attach(f.actor, ports.IIDResourceGatherer, f.carry)
	reg.Attach(f.actor, ports.IIDUnitAI, f.ai)
	reg.Attach(f.actor, ports.IIDPosition, stubPosition{})

	b, err := Attach(Deps{
		Registry:  reg,
		Scheduler: f.sched,
		Ranges:    f.ranges,
		Players:   allies{},
	}, f.actor, survival.BuilderTemplate{Rate: rate})
	if err != nil {
		panic(err)
	}
	f.builder = b
	return f
}

func (f *fixture) foundation(player int, fd *stubFoundation) (entity.ID, *stubBuilderList) {
	id := f.reg.Create()
	list := &stubBuilderList{builders: map[entity.ID]bool{}}
	f.reg.Attach(id, ports.IIDOwnership, owner(player))
	f.reg.Attach(id, ports.IIDFoundation, fd)
	f.reg.Attach(id, ports.IIDCost, stubCost(fd.costs))
	f.reg.Attach(id, ports.IIDBuilderList, list)
	return id, list
}

func (f *fixture) repairable(player int, r *stubRepairable, costs []survival.ResourceAmount) entity.ID {
	id := f.reg.Create()
	f.reg.Attach(id, ports.IIDOwnership, owner(player))
	f.reg.Attach(id, ports.IIDRepairable, r)
	f.reg.Attach(id, ports.IIDCost, stubCost(costs))
	return id
}

var (
	_ ports.Foundation       = (*stubFoundation)(nil)
	_ ports.Repairable       = (*stubRepairable)(nil)
	_ ports.UnitAI           = (*stubUnitAI)(nil)
	_ ports.Players          = allies{}
	_ ports.MessageProcessor = (*recordingProcessor)(nil)
)
