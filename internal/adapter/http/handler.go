package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"outpost/internal/adapter/runtime"
	"outpost/internal/app/observe"
	"outpost/internal/app/ports"
	"outpost/internal/app/repair"
	"outpost/internal/app/snapshot"
	"outpost/internal/app/status"
	"outpost/internal/domain/entity"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Handler struct {
	ObserveUC  observe.UseCase
	StatusUC   status.UseCase
	RepairUC   repair.UseCase
	SnapshotUC snapshot.UseCase
	KPI        kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())
	s.GET("/healthz", h.healthz)

	entities := s.Group("/api/entities/:id")
	entities.GET("/status", h.status)
	entities.GET("/observe", h.observe)
	entities.POST("/repair", h.startRepair)
	entities.POST("/repair/stop", h.stopRepair)
	entities.POST("/snapshots", h.captureSnapshot)
	entities.GET("/snapshots", h.snapshotHistory)
	entities.GET("/events", h.events)

	s.GET("/ops/kpi", h.kpi)
}

type repairRequest struct {
	Target uint32 `json:"target"`
	Caller string `json:"caller,omitempty"`
}

var ErrInvalidEntityID = errors.New("invalid entity id")

func (h Handler) healthz(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	id, err := entityParam(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}

	resp, err := h.StatusUC.Execute(c, status.Request{Entity: id})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) observe(c context.Context, ctx *app.RequestContext) {
	id, err := entityParam(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	radius, _ := strconv.ParseFloat(string(ctx.Query("radius")), 64)

	resp, err := h.ObserveUC.Execute(c, observe.Request{Entity: id, Radius: radius})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) startRepair(c context.Context, ctx *app.RequestContext) {
	id, err := entityParam(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}

	var body repairRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.RepairUC.Start(c, repair.StartRequest{
		Entity: id,
		Target: entity.ID(body.Target),
		Caller: entity.IID(strings.TrimSpace(body.Caller)),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) stopRepair(c context.Context, ctx *app.RequestContext) {
	id, err := entityParam(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}

	resp, err := h.RepairUC.Stop(c, repair.StopRequest{Entity: id})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) captureSnapshot(c context.Context, ctx *app.RequestContext) {
	id, err := entityParam(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}

	resp, err := h.SnapshotUC.Capture(c, snapshot.CaptureRequest{Entity: id})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) snapshotHistory(c context.Context, ctx *app.RequestContext) {
	id, err := entityParam(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))

	resp, err := h.SnapshotUC.History(c, snapshot.HistoryRequest{Entity: id, Limit: limit})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) events(c context.Context, ctx *app.RequestContext) {
	id, err := entityParam(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	occurredFrom, _ := strconv.ParseInt(string(ctx.Query("occurred_from")), 10, 64)
	occurredTo, _ := strconv.ParseInt(string(ctx.Query("occurred_to")), 10, 64)

	resp, err := h.SnapshotUC.ListEvents(c, snapshot.EventsRequest{
		Entity:       id,
		Limit:        limit,
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

// KPIFunc adapts a plain function to the kpi provider.
type KPIFunc func() any

func (f KPIFunc) SnapshotAny() any { return f() }

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func entityParam(ctx *app.RequestContext) (entity.ID, error) {
	raw := strings.TrimSpace(ctx.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return entity.Invalid, ErrInvalidEntityID
	}
	return entity.ID(id), nil
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ErrInvalidEntityID):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_entity_id", err.Error())
	case errors.Is(err, repair.ErrRejected):
		writeErrorBody(ctx, consts.StatusConflict, "repair_rejected", err.Error())
	case errors.Is(err, observe.ErrNoPosition):
		writeErrorBody(ctx, consts.StatusUnprocessableEntity, "no_position", err.Error())
	case errors.Is(err, repair.ErrNotBuilder):
		writeErrorBody(ctx, consts.StatusUnprocessableEntity, "not_a_builder", err.Error())
	case errors.Is(err, runtime.ErrStopped):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "simulation_stopped", err.Error())
	case errors.Is(err, observe.ErrInvalidRequest),
		errors.Is(err, repair.ErrInvalidRequest),
		errors.Is(err, snapshot.ErrInvalidRequest),
		errors.Is(err, status.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "timeout", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
