package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	memrepo "outpost/internal/adapter/repo/memory"
	"outpost/internal/adapter/runtime"
	"outpost/internal/adapter/world/memory"
	"outpost/internal/app/builder"
	"outpost/internal/app/needs"
	"outpost/internal/app/observe"
	"outpost/internal/app/ports"
	"outpost/internal/app/repair"
	"outpost/internal/app/snapshot"
	"outpost/internal/app/status"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
	"outpost/internal/domain/world"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route/param"
)

type handlerFixture struct {
	h       Handler
	loop    *runtime.Loop
	unit    memory.Unit
	site    entity.ID
	enemy   entity.ID
	bare    entity.ID
	builder *builder.Builder
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	reg := entity.NewRegistry()
	w := memory.NewWorld(reg)
	loop := runtime.NewLoop(runtime.NewScheduler(), runtime.Config{})
	sched := loop.Scheduler()

	unit := w.SpawnUnit(memory.UnitSpec{Player: 1, At: world.Point{}, Hitpoints: 100, Vision: 10, Capacity: 10})
	for _, kind := range survival.Kinds() {
		if _, err := needs.Attach(needs.Deps{Registry: reg, Scheduler: sched}, unit.ID, kind, survival.DefaultNeedTemplate()); err != nil {
			t.Fatalf("attach %s: %v", kind, err)
		}
	}
	players := memory.Players{1: {Civ: "athen"}, 2: {Civ: "spart"}}
	b, err := builder.Attach(builder.Deps{
		Registry:  reg,
		Scheduler: sched,
		Ranges:    memory.Ranges{Registry: reg},
		Players:   players,
	}, unit.ID, survival.BuilderTemplate{Rate: 1})
	if err != nil {
		t.Fatalf("attach builder: %v", err)
	}
	costs := []survival.ResourceAmount{{Type: "wood", Amount: 50}}
	site, _ := w.SpawnFoundation(1, world.Point{X: 1}, costs, 1, 10)
	enemy, _ := w.SpawnFoundation(2, world.Point{X: 1, Z: 1}, costs, 1, 10)
	if _, err := w.SpawnResource(world.ResourceNode{GenericType: "water", Amount: 50, MaxAmount: 50, Position: world.Point{X: 4, Z: 3}}); err != nil {
		t.Fatalf("spawn spring: %v", err)
	}
	if _, err := w.SpawnResource(world.ResourceNode{GenericType: "stone", Amount: 50, MaxAmount: 50, Position: world.Point{X: 40}}); err != nil {
		t.Fatalf("spawn quarry: %v", err)
	}

	store := memrepo.NewStore()
	events := memrepo.NewEventRepo(store)
	if err := events.Append(context.Background(), []survival.DomainEvent{
		{Type: survival.EventSuppliesChanged, Entity: unit.ID, OccurredAt: time.Unix(100, 0), Payload: map[string]any{"kind": "water", "from": 100.0, "to": 99.0}},
	}); err != nil {
		t.Fatalf("seed events: %v", err)
	}

	return &handlerFixture{
		h: Handler{
			ObserveUC: observe.UseCase{Registry: reg, Serializer: loop},
			StatusUC:  status.UseCase{Registry: reg, Serializer: loop},
			RepairUC:  repair.UseCase{Registry: reg, Serializer: loop},
			SnapshotUC: snapshot.UseCase{
				Registry:   reg,
				Serializer: loop,
				Snapshots:  memrepo.NewSnapshotRepo(store),
				Events:     events,
				TxManager:  memrepo.NewTxManager(store),
			},
		},
		loop:    loop,
		unit:    unit,
		site:    site,
		enemy:   enemy,
		bare:    reg.Create(),
		builder: b,
	}
}

func entityCtx(id entity.ID) *app.RequestContext {
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: id.String()}}
	return ctx
}

func decodeBody(t *testing.T, ctx *app.RequestContext) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return body
}

func errorCode(t *testing.T, ctx *app.RequestContext) any {
	t.Helper()
	e, _ := decodeBody(t, ctx)["error"].(map[string]any)
	return e["code"]
}

func TestStatus_OK(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := entityCtx(f.unit.ID)

	f.h.status(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	body := decodeBody(t, ctx)
	needList, _ := body["needs"].([]any)
	if len(needList) != 3 {
		t.Fatalf("expected 3 needs in %s", ctx.Response.Body())
	}
	first, _ := needList[0].(map[string]any)
	if first["kind"] != "meat" || first["supply"] != 100.0 {
		t.Fatalf("unexpected first need %v", first)
	}
	if _, ok := body["builder"]; !ok {
		t.Fatalf("expected builder view in %s", ctx.Response.Body())
	}
}

func TestStatus_InvalidEntityParam(t *testing.T) {
	f := newHandlerFixture(t)
	for _, raw := range []string{"", "0", "abc", "-1"} {
		ctx := &app.RequestContext{}
		ctx.Params = param.Params{{Key: "id", Value: raw}}

		f.h.status(context.Background(), ctx)

		if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
			t.Fatalf("%q: status mismatch: got=%d want=%d", raw, got, want)
		}
		if got := errorCode(t, ctx); got != "invalid_entity_id" {
			t.Fatalf("%q: unexpected code %v", raw, got)
		}
	}
}

func TestStatus_UnknownEntity(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := entityCtx(999)

	f.h.status(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestObserve_ListsNearbyResources(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := entityCtx(f.unit.ID)

	f.h.observe(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	body := decodeBody(t, ctx)
	if body["radius"] != 10.0 {
		t.Fatalf("expected vision radius 10, got %v", body["radius"])
	}
	resources, _ := body["resources"].([]any)
	if len(resources) != 1 || asMap(resources[0])["generic_type"] != "water" {
		t.Fatalf("expected the spring only, got %s", ctx.Response.Body())
	}
}

func TestObserve_NoPosition(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := entityCtx(f.bare)

	f.h.observe(context.Background(), ctx)

	if got := errorCode(t, ctx); got != "no_position" {
		t.Fatalf("unexpected code %v", got)
	}
}

func TestStartRepair_OK(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := entityCtx(f.unit.ID)
	ctx.Request.SetBody([]byte(`{"target":` + f.site.String() + `}`))

	f.h.startRepair(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	if target, ok := f.builder.Target(); !ok || target != f.site {
		t.Fatalf("expected builder on %v, got %v", f.site, target)
	}
	if f.unit.Visual.Animation != survival.AnimationBuild {
		t.Fatalf("expected build animation, got %q", f.unit.Visual.Animation)
	}
}

func TestStartRepair_EnemyRejected(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := entityCtx(f.unit.ID)
	ctx.Request.SetBody([]byte(`{"target":` + f.enemy.String() + `}`))

	f.h.startRepair(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusConflict; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got := errorCode(t, ctx); got != "repair_rejected" {
		t.Fatalf("unexpected code %v", got)
	}
}

func TestStartRepair_InvalidJSON(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := entityCtx(f.unit.ID)
	ctx.Request.SetBody([]byte(`{"target":`))

	f.h.startRepair(context.Background(), ctx)

	if got := errorCode(t, ctx); got != "invalid_json" {
		t.Fatalf("unexpected code %v", got)
	}
}

func TestStopRepair_AfterLoopStopped(t *testing.T) {
	f := newHandlerFixture(t)
	f.loop.Stop()
	ctx := entityCtx(f.unit.ID)

	f.h.stopRepair(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusServiceUnavailable; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestCaptureAndListSnapshots(t *testing.T) {
	f := newHandlerFixture(t)
	capture := entityCtx(f.unit.ID)
	f.h.captureSnapshot(context.Background(), capture)
	if got, want := capture.Response.StatusCode(), consts.StatusCreated; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}

	list := entityCtx(f.unit.ID)
	list.Request.SetRequestURI("/api/entities/1/snapshots?limit=2")
	f.h.snapshotHistory(context.Background(), list)
	if got, want := list.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	rows, _ := decodeBody(t, list)["snapshots"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected 2 snapshots with limit, got %d", len(rows))
	}
}

func TestEvents_LatestSupplies(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := entityCtx(f.unit.ID)

	f.h.events(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	latest, _ := decodeBody(t, ctx)["latest_supplies"].(map[string]any)
	if latest["water"] != 99.0 {
		t.Fatalf("unexpected latest supplies %v", latest)
	}
}

func TestKPI_NotConfigured(t *testing.T) {
	ctx := &app.RequestContext{}
	Handler{}.kpi(context.Background(), ctx)
	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestKPI_Func(t *testing.T) {
	ctx := &app.RequestContext{}
	h := Handler{KPI: KPIFunc(func() any { return map[string]int{"ticks": 3} })}
	h.kpi(context.Background(), ctx)
	if got := decodeBody(t, ctx)["ticks"]; got != 3.0 {
		t.Fatalf("unexpected kpi body %s", ctx.Response.Body())
	}
}

func TestWriteError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{err: repair.ErrNotBuilder, status: consts.StatusUnprocessableEntity, code: "not_a_builder"},
		{err: status.ErrInvalidRequest, status: consts.StatusBadRequest, code: "bad_request"},
		{err: snapshot.ErrInvalidRequest, status: consts.StatusBadRequest, code: "bad_request"},
		{err: ports.ErrConflict, status: consts.StatusConflict, code: "conflict"},
		{err: context.DeadlineExceeded, status: consts.StatusServiceUnavailable, code: "timeout"},
		{err: errors.New("boom"), status: consts.StatusInternalServerError, code: "internal_error"},
	}
	for _, tc := range cases {
		ctx := &app.RequestContext{}
		writeError(ctx, tc.err)
		if got := ctx.Response.StatusCode(); got != tc.status {
			t.Fatalf("%v: status mismatch: got=%d want=%d", tc.err, got, tc.status)
		}
		if got := errorCode(t, ctx); got != tc.code {
			t.Fatalf("%v: code mismatch: got=%v want=%s", tc.err, got, tc.code)
		}
	}
}
