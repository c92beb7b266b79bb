package repair

import (
	"context"
	"errors"
	"fmt"

	"outpost/internal/app/builder"
	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

var (
	ErrInvalidRequest = errors.New("invalid repair request")
	ErrNotBuilder     = errors.New("entity has no builder")
	ErrRejected       = errors.New("target cannot be repaired by this builder")
)

// UseCase issues repair orders to builders on the simulation goroutine.
type UseCase struct {
	Registry   *entity.Registry
	Serializer ports.Serializer
}

func (u UseCase) Start(ctx context.Context, req StartRequest) (StartResponse, error) {
	if req.Entity == entity.Invalid || req.Target == entity.Invalid || req.Entity == req.Target || u.Registry == nil {
		return StartResponse{}, ErrInvalidRequest
	}
	caller := req.Caller
	if caller == "" {
		caller = ports.IIDUnitAI
	}
	var (
		resp StartResponse
		err  error
	)
	run := func() {
		b, lookupErr := u.builderOf(req.Entity)
		if lookupErr != nil {
			err = lookupErr
			return
		}
		if !u.Registry.Exists(req.Target) {
			err = fmt.Errorf("target %s: %w", req.Target, ports.ErrNotFound)
			return
		}
		if !b.StartRepairing(req.Target, caller) {
			err = fmt.Errorf("%w: entity %s target %s", ErrRejected, req.Entity, req.Target)
			return
		}
		resp = StartResponse{Entity: req.Entity, Target: req.Target, Range: b.Range()}
	}
	if execErr := u.exec(ctx, run); execErr != nil {
		return StartResponse{}, execErr
	}
	if err != nil {
		return StartResponse{}, err
	}
	return resp, nil
}

// Stop halts the builder without notifying its caller.
func (u UseCase) Stop(ctx context.Context, req StopRequest) (StopResponse, error) {
	if req.Entity == entity.Invalid || u.Registry == nil {
		return StopResponse{}, ErrInvalidRequest
	}
	var (
		resp StopResponse
		err  error
	)
	run := func() {
		b, lookupErr := u.builderOf(req.Entity)
		if lookupErr != nil {
			err = lookupErr
			return
		}
		target, active := b.Target()
		b.StopRepairing(survival.ReasonNone)
		resp = StopResponse{Entity: req.Entity, WasActive: active, LastTarget: target}
	}
	if execErr := u.exec(ctx, run); execErr != nil {
		return StopResponse{}, execErr
	}
	if err != nil {
		return StopResponse{}, err
	}
	return resp, nil
}

func (u UseCase) builderOf(ent entity.ID) (*builder.Builder, error) {
	if !u.Registry.Exists(ent) {
		return nil, fmt.Errorf("entity %s: %w", ent, ports.ErrNotFound)
	}
	b, ok := entity.Query[*builder.Builder](u.Registry, ent, ports.IIDBuilder)
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", ent, ErrNotBuilder)
	}
	return b, nil
}

func (u UseCase) exec(ctx context.Context, fn func()) error {
	if u.Serializer == nil {
		fn()
		return nil
	}
	return u.Serializer.Exec(ctx, fn)
}
