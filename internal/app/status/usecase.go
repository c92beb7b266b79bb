package status

import (
	"context"
	"errors"

	"outpost/internal/app/builder"
	"outpost/internal/app/needs"
	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

var ErrInvalidRequest = errors.New("invalid status request")

// UseCase reads a consistent view of one entity's needs and builder.
type UseCase struct {
	Registry   *entity.Registry
	Serializer ports.Serializer
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.Entity == entity.Invalid || u.Registry == nil {
		return Response{}, ErrInvalidRequest
	}
	var (
		resp  Response
		found bool
	)
	read := func() {
		if !u.Registry.Exists(req.Entity) {
			return
		}
		found = true
		resp = u.read(req.Entity)
	}
	if u.Serializer == nil {
		read()
	} else if err := u.Serializer.Exec(ctx, read); err != nil {
		return Response{}, err
	}
	if !found {
		return Response{}, ports.ErrNotFound
	}
	return resp, nil
}

func (u UseCase) read(ent entity.ID) Response {
	resp := Response{
		Entity:  ent,
		Needs:   []survival.Mirage{},
		Carried: []survival.ResourceAmount{},
	}
	for _, kind := range survival.Kinds() {
		if t, ok := entity.Query[*needs.Track](u.Registry, ent, ports.NeedIID(kind)); ok {
			resp.Needs = append(resp.Needs, t.Mirage())
		}
	}
	if g, ok := entity.Query[ports.ResourceGatherer](u.Registry, ent, ports.IIDResourceGatherer); ok {
		resp.Carried = append(resp.Carried, g.CarryingStatus()...)
	}
	if b, ok := entity.Query[*builder.Builder](u.Registry, ent, ports.IIDBuilder); ok {
		target, active := b.Target()
		resp.Builder = &BuilderView{
			Target:   target,
			Active:   active,
			Targeted: b.Targeted(),
			Rate:     b.Rate(),
			Range:    b.Range(),
			Entities: b.EntitiesList(),
		}
	}
	return resp
}
