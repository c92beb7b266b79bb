package needs

import (
	"time"

	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
	"outpost/internal/domain/world"
)

type scheduledTimer struct {
	key    ports.TimerKey
	period time.Duration
	fn     func(time.Duration)
}

type stubScheduler struct {
	next      ports.TimerID
	timers    map[ports.TimerID]scheduledTimer
	cancelled []ports.TimerID
}

func newStubScheduler() *stubScheduler {
	return &stubScheduler{timers: map[ports.TimerID]scheduledTimer{}}
}

func (s *stubScheduler) SetInterval(key ports.TimerKey, _, repeat time.Duration, fn func(time.Duration)) ports.TimerID {
	s.next++
	s.timers[s.next] = scheduledTimer{key: key, period: repeat, fn: fn}
	return s.next
}

func (s *stubScheduler) SetTimeout(key ports.TimerKey, delay time.Duration, fn func(time.Duration)) ports.TimerID {
	return s.SetInterval(key, delay, 0, fn)
}

func (s *stubScheduler) CancelTimer(id ports.TimerID) {
	delete(s.timers, id)
	s.cancelled = append(s.cancelled, id)
}

func (s *stubScheduler) find(iid entity.IID, method string) (scheduledTimer, bool) {
	for _, tm := range s.timers {
		if tm.key.IID == iid && tm.key.Method == method {
			return tm, true
		}
	}
	return scheduledTimer{}, false
}

func (s *stubScheduler) count() int { return len(s.timers) }

type fixedRandom struct{ v float64 }

func (r fixedRandom) Float64() float64 { return r.v }

type recordingNotifier struct{ events []survival.DomainEvent }

func (n *recordingNotifier) Post(e survival.DomainEvent) { n.events = append(n.events, e) }

type stubHealth struct{ lost float64 }

func (h *stubHealth) Reduce(amount float64) { h.lost += amount }

type stubFogging struct{ activations int }

func (f *stubFogging) Activate() { f.activations++ }

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
	g.carrying = append(g.carrying, survival.ResourceAmount{Type: resourceType, Amount: delta})
}

type stubSupply struct {
	generic string
	amount  float64
}

func (s stubSupply) GenericType() string          { return s.generic }
func (s stubSupply) CurrentAmount() float64       { return s.amount }
func (s stubSupply) Change(delta float64) float64 { return delta }

type stubUnitAI struct {
	nearby   map[entity.ID]stubSupply
	radius   float64
	gathered []entity.ID
	orders   []ports.GatherOrder
}

func (a *stubUnitAI) FindNearbyResource(_ world.Point, radius float64, accept func(entity.ID, ports.ResourceSupply) bool) (entity.ID, bool) {
	a.radius = radius
	for id := entity.ID(1); id < 64; id++ {
		s, ok := a.nearby[id]
		if ok && accept(id, s) {
			return id, true
		}
	}
	return entity.Invalid, false
}

func (a *stubUnitAI) PerformGather(target entity.ID, order ports.GatherOrder) bool {
	a.gathered = append(a.gathered, target)
	a.orders = append(a.orders, order)
	return true
}

func (a *stubUnitAI) FaceTowardsTarget(entity.ID) {}

type stubPosition struct{ p world.Point }

func (p stubPosition) Position() (world.Point, bool) { return p.p, true }

type stubVision struct{ r float64 }

func (v stubVision) Range() float64 { return v.r }

type scaleModifier struct {
	name   string
	factor float64
}

func (m *scaleModifier) Apply(name string, base float64, _ entity.ID) float64 {
	if name == m.name {
		return base * m.factor
	}
	return base
}

type fixture struct {
	reg      *entity.Registry
	sched    *stubScheduler
	notifier *recordingNotifier
	ent      entity.ID
	deps     Deps
}

func newFixture(roll float64) *fixture {
	reg := entity.NewRegistry()
	f := &fixture{
		reg:      reg,
		sched:    newStubScheduler(),
		notifier: &recordingNotifier{},
		ent:      reg.Create(),
	}
	f.deps = Deps{
		Registry:  reg,
		Scheduler: f.sched,
		Notifier:  f.notifier,
		Random:    fixedRandom{v: roll},
		Now:       func() time.Time { return time.Unix(1700000000, 0) },
	}
	return f
}

func (f *fixture) attach(kind survival.Kind, tpl survival.NeedTemplate) *Track {
	t, err := Attach(f.deps, f.ent, kind, tpl)
	if err != nil {
		panic(err)
	}
	return t
}

var (
	_ ports.Scheduler        = (*stubScheduler)(nil)
	_ ports.ResourceGatherer = (*stubGatherer)(nil)
	_ ports.UnitAI           = (*stubUnitAI)(nil)
	_ ports.ResourceSupply   = stubSupply{}
)
