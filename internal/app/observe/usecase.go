package observe

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
)

var (
	ErrInvalidRequest = errors.New("invalid observe request")
	ErrNoPosition     = errors.New("entity has no position")
)

// UseCase lists the resource supplies a forager on the entity could pick.
type UseCase struct {
	Registry   *entity.Registry
	Serializer ports.Serializer
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.Entity == entity.Invalid || req.Radius < 0 || u.Registry == nil {
		return Response{}, ErrInvalidRequest
	}
	var (
		resp Response
		err  error
	)
	run := func() { resp, err = u.observe(req) }
	if u.Serializer == nil {
		run()
	} else if execErr := u.Serializer.Exec(ctx, run); execErr != nil {
		return Response{}, execErr
	}
	return resp, err
}

func (u UseCase) observe(req Request) (Response, error) {
	if !u.Registry.Exists(req.Entity) {
		return Response{}, fmt.Errorf("entity %s: %w", req.Entity, ports.ErrNotFound)
	}
	pos, ok := entity.Query[ports.Position](u.Registry, req.Entity, ports.IIDPosition)
	if !ok {
		return Response{}, ErrNoPosition
	}
	center, ok := pos.Position()
	if !ok {
		return Response{}, ErrNoPosition
	}
	radius := req.Radius
	if radius == 0 {
		if v, ok := entity.Query[ports.Vision](u.Registry, req.Entity, ports.IIDVision); ok {
			radius = v.Range()
		}
	}

	resources := []ObservedResource{}
	for _, id := range u.Registry.Entities(ports.IIDResourceSupply) {
		supply, ok := entity.Query[ports.ResourceSupply](u.Registry, id, ports.IIDResourceSupply)
		if !ok || supply.CurrentAmount() <= 0 {
			continue
		}
		at, ok := entity.Query[ports.Position](u.Registry, id, ports.IIDPosition)
		if !ok {
			continue
		}
		p, ok := at.Position()
		if !ok || !p.Within(center, radius) {
			continue
		}
		resources = append(resources, ObservedResource{
			ID:          id,
			GenericType: supply.GenericType(),
			Amount:      supply.CurrentAmount(),
			Position:    p,
			Distance:    p.DistanceTo(center),
		})
	}
	sort.Slice(resources, func(i, j int) bool {
		if resources[i].Distance != resources[j].Distance {
			return resources[i].Distance < resources[j].Distance
		}
		return resources[i].ID < resources[j].ID
	})
	return Response{Entity: req.Entity, Center: center, Radius: radius, Resources: resources}, nil
}
