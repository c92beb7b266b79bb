package builder

import (
	"fmt"
	"log/slog"
	"time"

	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

type Deps struct {
	Registry  *entity.Registry
	Scheduler ports.Scheduler
	Ranges    ports.RangeManager
	Players   ports.Players
	Catalog   ports.TemplateCatalog
	Notifier  ports.Notifier
	Modifiers ports.ValueModifiers
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

// Builder turns carried resources into construction or repair progress.
// target is set exactly while timer is active.
type Builder struct {
	deps     Deps
	entity   entity.ID
	template survival.BuilderTemplate

	target   entity.ID
	caller   entity.IID
	timer    ports.TimerID
	targeted entity.ID
}

func New(deps Deps, ent entity.ID, tpl survival.BuilderTemplate) (*Builder, error) {
	if deps.Registry == nil || deps.Scheduler == nil {
		return nil, fmt.Errorf("builder: registry and scheduler are required")
	}
	if tpl.Rate <= 0 {
		return nil, fmt.Errorf("%w: builder rate must be positive", survival.ErrInvalidTemplate)
	}
	return &Builder{deps: deps.withDefaults(), entity: ent, template: tpl}, nil
}

// Attach registers a builder on ent and stops it when ent is destroyed.
func Attach(deps Deps, ent entity.ID, tpl survival.BuilderTemplate) (*Builder, error) {
	b, err := New(deps, ent, tpl)
	if err != nil {
		return nil, err
	}
	if !deps.Registry.Attach(ent, ports.IIDBuilder, b) {
		return nil, fmt.Errorf("attach builder to entity %s: %w", ent, ports.ErrNotFound)
	}
	deps.Registry.OnDestroy(ent, func() { b.StopRepairing(survival.ReasonNone) })
	return b, nil
}

func (b *Builder) Entity() entity.ID { return b.entity }

// Target returns the entity currently being worked, if any.
func (b *Builder) Target() (entity.ID, bool) {
	return b.target, b.target != entity.Invalid
}

// Targeted is the last target passed to StartRepairing, kept across failures.
func (b *Builder) Targeted() entity.ID { return b.targeted }

func (b *Builder) Rate() float64 {
	return b.deps.Modifiers.Apply("Builder/Rate", b.template.Rate, b.entity)
}

func (b *Builder) Range() survival.Range {
	size := 0.0
	if obs, ok := entity.Query[ports.Obstruction](b.deps.Registry, b.entity, ports.IIDObstruction); ok {
		size = obs.Size()
	}
	return survival.BuildRange(size)
}

// EntitiesList returns the templates this builder may place foundations for.
func (b *Builder) EntitiesList() []string {
	if b.deps.Players == nil {
		return []string{}
	}
	own, ok := entity.Query[ports.Ownership](b.deps.Registry, b.entity, ports.IIDOwnership)
	if !ok {
		return []string{}
	}
	native := ""
	if id, ok := entity.Query[ports.Identity](b.deps.Registry, b.entity, ports.IIDIdentity); ok {
		native = id.Civ()
	}
	var exists func(string) bool
	if b.deps.Catalog != nil {
		exists = b.deps.Catalog.TemplateExists
	}
	player := own.Owner()
	return survival.ExpandEntities(b.template.Entities, b.deps.Players.Civ(player), native,
		b.deps.Players.DisabledTemplates(player), exists)
}

func (b *Builder) CanRepair(target entity.ID) bool {
	if target == entity.Invalid {
		return false
	}
	eligible := false
	if f, ok := entity.Query[ports.Foundation](b.deps.Registry, target, ports.IIDFoundation); ok && !f.IsComplete() {
		eligible = true
	}
	if r, ok := entity.Query[ports.Repairable](b.deps.Registry, target, ports.IIDRepairable); ok && r.IsRepairable() {
		eligible = true
	}
	if !eligible || b.deps.Players == nil {
		return false
	}
	own, ok := entity.Query[ports.Ownership](b.deps.Registry, b.entity, ports.IIDOwnership)
	if !ok {
		return false
	}
	theirs, ok := entity.Query[ports.Ownership](b.deps.Registry, target, ports.IIDOwnership)
	if !ok {
		return false
	}
	return b.deps.Players.IsAlly(own.Owner(), theirs.Owner())
}

// StartRepairing begins periodic work on target. caller is the capability
// on this entity notified when work stops for a reason.
func (b *Builder) StartRepairing(target entity.ID, caller entity.IID) bool {
	b.targeted = target
	if b.target != entity.Invalid {
		b.StopRepairing(survival.ReasonNone)
	}
	if !b.CanRepair(target) {
		return false
	}

	if list, ok := entity.Query[ports.BuilderList](b.deps.Registry, target, ports.IIDBuilderList); ok {
		list.AddBuilder(b.entity)
	}
	b.animate(survival.AnimationBuild)
	b.target = target
	b.caller = caller
	key := ports.TimerKey{Entity: b.entity, IID: ports.IIDBuilder, Method: "PerformBuilding"}
	b.timer = b.deps.Scheduler.SetInterval(key, survival.BuildInterval, survival.BuildInterval, b.PerformBuilding)
	b.post(survival.EventRepairStarted, map[string]any{"target": target})
	return true
}

func (b *Builder) StopRepairing(reason survival.StopReason) {
	if b.target == entity.Invalid {
		return
	}
	b.deps.Scheduler.CancelTimer(b.timer)
	b.timer = 0
	target := b.target
	if list, ok := entity.Query[ports.BuilderList](b.deps.Registry, target, ports.IIDBuilderList); ok {
		list.RemoveBuilder(b.entity)
	}
	b.target = entity.Invalid
	b.animate(survival.AnimationIdle)

	// the notified capability may start again and replace caller
	caller := b.caller
	b.caller = ""

	b.deps.Metrics.RecordBuilderStop(reason)
	b.post(survival.EventRepairStopped, map[string]any{"target": target, "reason": reason})
	if reason != survival.ReasonNone {
		b.deps.Logger.Debug("builder stopped", "entity", b.entity, "target", target, "reason", reason)
	}
	if reason == survival.ReasonNone || caller == "" {
		return
	}
	if mp, ok := entity.Query[ports.MessageProcessor](b.deps.Registry, b.entity, caller); ok {
		mp.ProcessMessage(reason)
	}
}

// PerformBuilding is one work tick.
func (b *Builder) PerformBuilding(time.Duration) {
	target := b.target
	if !b.CanRepair(target) {
		b.StopRepairing(survival.ReasonTargetInvalidated)
		return
	}
	if !b.inRange(target) {
		b.StopRepairing(survival.ReasonOutOfRange)
		return
	}

	reg := b.deps.Registry
	foundation, isFoundation := entity.Query[ports.Foundation](reg, target, ports.IIDFoundation)
	dominant, _ := survival.DominantType(b.targetCosts(target, foundation, isFoundation))

	gatherer, hasGatherer := entity.Query[ports.ResourceGatherer](reg, b.entity, ports.IIDResourceGatherer)
	var carried survival.ResourceAmount
	if hasGatherer {
		carried, _ = survival.LastCarried(gatherer.CarryingStatus())
	}

	rate := b.Rate()
	var maxwork float64
	if isFoundation {
		needed := 0.0
		if carried.Type != "" {
			needed = foundation.NeededResourceCount(carried.Type)
		}
		maxwork = survival.FoundationMaxWork(rate, carried.Amount, needed, foundation.ResourceRatio())
	} else {
		maxwork = survival.RepairMaxWork(rate, carried.Type, dominant)
	}

	if maxwork <= 0 {
		b.StopRepairing(survival.ReasonNone)
		b.forage(target, foundation, isFoundation, dominant)
		return
	}

	if isFoundation {
		fromLedger, credited := survival.FoundationConsumption(maxwork, foundation.ResourceRatio(), foundation.BuildMultiplier())
		gatherer.AdjustCarried(carried.Type, -fromLedger)
		foundation.ReduceNeededResourceCount(carried.Type, credited)
	} else {
		gatherer.AdjustCarried(carried.Type, -survival.RepairCarryCost)
	}

	if ai, ok := entity.Query[ports.UnitAI](reg, b.entity, ports.IIDUnitAI); ok {
		ai.FaceTowardsTarget(target)
	}
	b.deps.Metrics.RecordBuildTick(maxwork)
	b.post(survival.EventBuildProgress, map[string]any{
		"target": target,
		"type":   carried.Type,
		"work":   maxwork,
	})
	if isFoundation {
		foundation.Build(b.entity, maxwork)
		return
	}
	if r, ok := entity.Query[ports.Repairable](reg, target, ports.IIDRepairable); ok {
		r.Repair(b.entity, rate)
	}
}

func (b *Builder) inRange(target entity.ID) bool {
	if b.deps.Ranges == nil {
		return true
	}
	r := b.Range()
	return b.deps.Ranges.IsInTargetRange(b.entity, target, r.Min, r.Max)
}

func (b *Builder) targetCosts(target entity.ID, foundation ports.Foundation, isFoundation bool) []survival.ResourceAmount {
	if cost, ok := entity.Query[ports.Cost](b.deps.Registry, target, ports.IIDCost); ok {
		return cost.ResourceCosts()
	}
	if isFoundation {
		return foundation.ResourceCosts()
	}
	return nil
}

// forage tries exactly one resource type and never falls through to the next.
func (b *Builder) forage(target entity.ID, foundation ports.Foundation, isFoundation bool, dominant string) {
	var outstanding []survival.ResourceAmount
	if isFoundation {
		for _, c := range foundation.ResourceCosts() {
			outstanding = append(outstanding, survival.ResourceAmount{Type: c.Type, Amount: foundation.NeededResourceCount(c.Type)})
		}
	}
	want, ok := survival.ForageCandidate(outstanding, isFoundation, dominant)
	if !ok {
		return
	}

	reg := b.deps.Registry
	ai, ok := entity.Query[ports.UnitAI](reg, b.entity, ports.IIDUnitAI)
	if !ok {
		return
	}
	pos, ok := entity.Query[ports.Position](reg, b.entity, ports.IIDPosition)
	if !ok {
		return
	}
	center, ok := pos.Position()
	if !ok {
		return
	}
	radius := 0.0
	if vision, ok := entity.Query[ports.Vision](reg, b.entity, ports.IIDVision); ok {
		radius = vision.Range()
	}
	source, found := ai.FindNearbyResource(center, radius, func(_ entity.ID, rs ports.ResourceSupply) bool {
		return rs.GenericType() == want && rs.CurrentAmount() > 0
	})
	if !found {
		return
	}
	if ai.PerformGather(source, ports.GatherOrder{Force: true, PushFront: true}) {
		b.deps.Metrics.RecordForage("builder")
		b.post(survival.EventForageOrdered, map[string]any{
			"type":   want,
			"target": source,
			"for":    target,
		})
	}
}

func (b *Builder) animate(name string) {
	if v, ok := entity.Query[ports.Visual](b.deps.Registry, b.entity, ports.IIDVisual); ok {
		v.SelectAnimation(name, false, 1.0)
	}
}

func (b *Builder) post(eventType string, payload map[string]any) {
	b.deps.Notifier.Post(survival.DomainEvent{
		Type:       eventType,
		Entity:     b.entity,
		OccurredAt: b.deps.Now(),
		Payload:    payload,
	})
}
