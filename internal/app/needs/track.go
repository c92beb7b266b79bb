package needs

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

// Deps are the collaborators shared by every track in a world.
type Deps struct {
	Registry  *entity.Registry
	Scheduler ports.Scheduler
	Notifier  ports.Notifier
	Modifiers ports.ValueModifiers
	Random    ports.Random
	Metrics   ports.SimMetrics
	Logger    *slog.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = ports.NopNotifier{}
	}
	if d.Modifiers == nil {
		d.Modifiers = ports.IdentityModifiers{}
	}
	if d.Random == nil {
		d.Random = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if d.Metrics == nil {
		d.Metrics = ports.NopMetrics{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Track is one need of one entity. All methods run on the simulation
// goroutine.
type Track struct {
	deps     Deps
	entity   entity.ID
	iid      entity.IID
	profile  survival.Profile
	template survival.NeedTemplate
	supply   survival.Supply

	decayRate   float64
	consumeRate float64
	starveRate  float64

	decayTimer   ports.TimerID
	consumeTimer ports.TimerID
	starveTimer  ports.TimerID
	forageTimer  ports.TimerID
}

func New(deps Deps, ent entity.ID, kind survival.Kind, tpl survival.NeedTemplate) (*Track, error) {
	profile, ok := survival.ProfileFor(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", survival.ErrUnknownKind, kind)
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	if deps.Registry == nil || deps.Scheduler == nil {
		return nil, fmt.Errorf("need track %s: registry and scheduler are required", kind)
	}
	return &Track{
		deps:     deps.withDefaults(),
		entity:   ent,
		iid:      ports.NeedIID(kind),
		profile:  profile,
		template: tpl,
		supply:   survival.NewSupply(tpl.Max),
	}, nil
}

// Attach creates a track, registers it on ent and starts its timers.
// The timers are cancelled when ent is destroyed.
func Attach(deps Deps, ent entity.ID, kind survival.Kind, tpl survival.NeedTemplate) (*Track, error) {
	t, err := New(deps, ent, kind, tpl)
	if err != nil {
		return nil, err
	}
	if !deps.Registry.Attach(ent, t.iid, t) {
		return nil, fmt.Errorf("attach %s to entity %s: %w", t.iid, ent, ports.ErrNotFound)
	}
	deps.Registry.OnDestroy(ent, t.Destroy)
	t.Init()
	return t, nil
}

func (t *Track) Init() {
	t.readRates()
	t.ensureDecay()
	t.ensureConsumption()
	t.ensureStarve()
	t.ensureForage()
}

func (t *Track) Kind() survival.Kind   { return t.profile.Kind }
func (t *Track) Entity() entity.ID     { return t.entity }
func (t *Track) GetSupply() float64    { return t.supply.Current }
func (t *Track) GetMaxSupply() float64 { return t.supply.Max }
func (t *Track) IsNeedy() bool         { return t.supply.IsNeedy() }

// Mirage returns a frozen copy for observers that must not see live values.
func (t *Track) Mirage() survival.Mirage {
	return survival.NewMirage(t.profile.Kind, t.supply)
}

func (t *Track) SetSupply(value float64) survival.Change {
	t.hide()
	ch := t.supply.Set(value)
	t.changed(ch)
	return ch
}

func (t *Track) Reduce(amount float64) float64 {
	if amount <= 0 || t.supply.IsDepleted() {
		return 0
	}
	t.hide()
	old := t.supply.Current
	delta := t.supply.Reduce(amount)
	t.changed(survival.Change{Old: old, New: t.supply.Current})
	return delta
}

func (t *Track) Increase(amount float64) survival.Change {
	if !t.supply.IsNeedy() || amount <= 0 {
		return survival.Change{Old: t.supply.Current, New: t.supply.Current}
	}
	t.hide()
	ch := t.supply.Increase(amount)
	t.changed(ch)
	return ch
}

func (t *Track) ExecuteDecay() {
	if t.supply.IsDepleted() {
		return
	}
	t.Reduce(survival.DecayStep)
}

func (t *Track) ExecuteConsumption() {
	if !t.supply.IsNeedy() {
		return
	}
	gatherer, ok := entity.Query[ports.ResourceGatherer](t.deps.Registry, t.entity, ports.IIDResourceGatherer)
	if !ok {
		return
	}
	if survival.CarriedAmount(gatherer.CarryingStatus(), t.profile.ResourceType) <= 0 {
		return
	}
	gatherer.AdjustCarried(t.profile.ResourceType, -survival.ConsumptionStep)
	t.Increase(survival.ConsumptionStep)
	t.deps.Metrics.RecordConsumption(t.profile.Kind)

	for _, fb := range t.profile.Feedback {
		sibling, ok := entity.Query[*Track](t.deps.Registry, t.entity, ports.NeedIID(fb.Kind))
		if !ok {
			continue
		}
		sibling.Increase(fb.Amount)
	}
}

func (t *Track) HandleStarve() {
	if !t.supply.IsDepleted() {
		return
	}
	damage := survival.StarvePenalty(t.deps.Random.Float64())
	if damage <= 0 {
		return
	}
	health, ok := entity.Query[ports.Health](t.deps.Registry, t.entity, ports.IIDHealth)
	if !ok {
		return
	}
	health.Reduce(damage)
	t.deps.Metrics.RecordStarvation(t.profile.Kind, damage)
	t.deps.Logger.Debug("starvation damage", "entity", t.entity, "kind", t.profile.Kind, "damage", damage)
	t.post(survival.EventStarvationDamage, map[string]any{
		"kind":   t.profile.Kind,
		"damage": damage,
	})
}

// LookForResource sends the entity after the nearest matching resource when
// the kind's forage trigger fires.
func (t *Track) LookForResource() {
	if !t.supply.IsNeedy() {
		return
	}
	roll := 0.0
	if t.profile.Forage == survival.ForageRandom {
		roll = t.deps.Random.Float64()
	}
	if !t.profile.ShouldForage(t.supply, roll) {
		return
	}
	ai, ok := entity.Query[ports.UnitAI](t.deps.Registry, t.entity, ports.IIDUnitAI)
	if !ok {
		return
	}
	pos, ok := entity.Query[ports.Position](t.deps.Registry, t.entity, ports.IIDPosition)
	if !ok {
		return
	}
	center, ok := pos.Position()
	if !ok {
		return
	}
	radius := 0.0
	if vision, ok := entity.Query[ports.Vision](t.deps.Registry, t.entity, ports.IIDVision); ok {
		radius = vision.Range()
	}

	want := t.profile.ResourceType
	target, found := ai.FindNearbyResource(center, radius, func(_ entity.ID, rs ports.ResourceSupply) bool {
		return rs.GenericType() == want && rs.CurrentAmount() > 0
	})
	if !found {
		return
	}
	if !ai.PerformGather(target, ports.GatherOrder{Force: true, PushFront: true}) {
		return
	}
	t.deps.Metrics.RecordForage("need:" + string(t.profile.Kind))
	t.post(survival.EventForageOrdered, map[string]any{
		"kind":   t.profile.Kind,
		"type":   want,
		"target": target,
	})
}

// RecalculateValues re-reads modified rates. Only the consumption timer
// follows its rate; the other timers keep the period they started with.
func (t *Track) RecalculateValues() {
	t.readRates()
	if t.consumeRate <= 0 {
		t.cancel(&t.consumeTimer)
		return
	}
	t.ensureConsumption()
}

func (t *Track) Destroy() {
	t.cancel(&t.decayTimer)
	t.cancel(&t.consumeTimer)
	t.cancel(&t.starveTimer)
	t.cancel(&t.forageTimer)
}

func (t *Track) readRates() {
	prefix := string(t.iid) + "/"
	m := t.deps.Modifiers
	t.decayRate = m.Apply(prefix+"DecayRate", t.template.DecayRate, t.entity)
	t.consumeRate = m.Apply(prefix+"ConsumeRate", t.template.ConsumeRate, t.entity)
	t.starveRate = m.Apply(prefix+"StarveEffect", t.template.StarveEffect, t.entity)
}

func (t *Track) ensureDecay() {
	t.ensure(&t.decayTimer, "ExecuteDecay", t.profile.DecayConstant, t.decayRate, t.ExecuteDecay)
}

func (t *Track) ensureConsumption() {
	t.ensure(&t.consumeTimer, "ExecuteConsumption", t.profile.ConsumeConstant, t.consumeRate, t.ExecuteConsumption)
}

func (t *Track) ensureStarve() {
	t.ensure(&t.starveTimer, "HandleStarve", t.profile.StarveConstant, t.starveRate, t.HandleStarve)
}

func (t *Track) ensureForage() {
	if t.forageTimer != 0 {
		return
	}
	t.forageTimer = t.deps.Scheduler.SetInterval(t.key("LookForResource"), survival.ForageCheckInterval, survival.ForageCheckInterval,
		func(time.Duration) { t.LookForResource() })
}

func (t *Track) ensure(slot *ports.TimerID, method string, constant, rate float64, fn func()) {
	if *slot != 0 {
		return
	}
	period, ok := survival.Period(constant, rate)
	if !ok {
		return
	}
	*slot = t.deps.Scheduler.SetInterval(t.key(method), period, period, func(time.Duration) { fn() })
}

func (t *Track) cancel(slot *ports.TimerID) {
	if *slot == 0 {
		return
	}
	t.deps.Scheduler.CancelTimer(*slot)
	*slot = 0
}

func (t *Track) key(method string) ports.TimerKey {
	return ports.TimerKey{Entity: t.entity, IID: t.iid, Method: method}
}

func (t *Track) hide() {
	if fog, ok := entity.Query[ports.Fogging](t.deps.Registry, t.entity, ports.IIDFogging); ok {
		fog.Activate()
	}
}

func (t *Track) changed(ch survival.Change) {
	if ch.Old == ch.New {
		return
	}
	t.post(survival.EventSuppliesChanged, map[string]any{
		"kind": t.profile.Kind,
		"from": ch.Old,
		"to":   ch.New,
	})
}

func (t *Track) post(eventType string, payload map[string]any) {
	t.deps.Notifier.Post(survival.DomainEvent{
		Type:       eventType,
		Entity:     t.entity,
		OccurredAt: t.deps.Now(),
		Payload:    payload,
	})
}
