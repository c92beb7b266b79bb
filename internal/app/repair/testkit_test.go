package repair

import (
	"context"
	"testing"
	"time"

	"outpost/internal/app/builder"
	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

type stubScheduler struct {
	next   ports.TimerID
	active map[ports.TimerID]bool
}

func newStubScheduler() *stubScheduler {
	return &stubScheduler{active: make(map[ports.TimerID]bool)}
}

func (s *stubScheduler) SetInterval(_ ports.TimerKey, _, _ time.Duration, _ func(time.Duration)) ports.TimerID {
	s.next++
	s.active[s.next] = true
	return s.next
}

func (s *stubScheduler) SetTimeout(key ports.TimerKey, d time.Duration, fn func(time.Duration)) ports.TimerID {
	return s.SetInterval(key, d, 0, fn)
}

func (s *stubScheduler) CancelTimer(id ports.TimerID) { delete(s.active, id) }

type sameTeam struct{}

func (sameTeam) IsAlly(player, other int) bool         { return player == other }
func (sameTeam) Civ(int) string                        { return "athen" }
func (sameTeam) DisabledTemplates(int) map[string]bool { return nil }

type owner int

func (o owner) Owner() int { return int(o) }

type foundation struct {
	complete bool
}

func (f *foundation) IsComplete() bool                          { return f.complete }
func (f *foundation) ResourceCosts() []survival.ResourceAmount  { return nil }
func (f *foundation) NeededResourceCount(string) float64        { return 0 }
func (f *foundation) ReduceNeededResourceCount(string, float64) {}
func (f *foundation) ResourceRatio() float64                    { return 1 }
func (f *foundation) BuildMultiplier() float64                  { return 1 }
func (f *foundation) Build(entity.ID, float64)                  {}

type recordingSerializer struct {
	calls int
}

func (s *recordingSerializer) Exec(_ context.Context, fn func()) error {
	s.calls++
	fn()
	return nil
}

type fixture struct {
	reg     *entity.Registry
	sched   *stubScheduler
	ser     *recordingSerializer
	uc      UseCase
	actor   entity.ID
	builder *builder.Builder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := entity.NewRegistry()
	sched := newStubScheduler()
	actor := reg.Create()
	reg.Attach(actor, ports.IIDOwnership, owner(1))
	b, err := builder.Attach(builder.Deps{Registry: reg, Scheduler: sched, Players: sameTeam{}}, actor, survival.BuilderTemplate{Rate: 1})
	if err != nil {
		t.Fatalf("attach builder: %v", err)
	}
	ser := &recordingSerializer{}
	return &fixture{
		reg:     reg,
		sched:   sched,
		ser:     ser,
		uc:      UseCase{Registry: reg, Serializer: ser},
		actor:   actor,
		builder: b,
	}
}

func (f *fixture) site(player int, complete bool) entity.ID {
	id := f.reg.Create()
	f.reg.Attach(id, ports.IIDOwnership, owner(player))
	f.reg.Attach(id, ports.IIDFoundation, &foundation{complete: complete})
	return id
}
