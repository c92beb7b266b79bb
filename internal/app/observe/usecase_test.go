package observe

import (
	"context"
	"errors"
	"testing"

	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/world"
)

func TestUseCase_ListsVisibleSuppliesNearestFirst(t *testing.T) {
	reg := entity.NewRegistry()
	self := reg.Create()
	reg.Attach(self, ports.IIDPosition, fixedPosition{})
	reg.Attach(self, ports.IIDVision, vision(10))

	far := spawnSupply(reg, "water", 5, world.Point{X: 8})
	near := spawnSupply(reg, "meat", 3, world.Point{Z: 2})
	spawnSupply(reg, "wood", 0, world.Point{X: 1})
	spawnSupply(reg, "stone", 40, world.Point{X: 30})

	resp, err := UseCase{Registry: reg}.Execute(context.Background(), Request{Entity: self})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if resp.Radius != 10 {
		t.Fatalf("expected vision radius 10, got %v", resp.Radius)
	}
	if len(resp.Resources) != 2 {
		t.Fatalf("expected 2 visible supplies, got %+v", resp.Resources)
	}
	if resp.Resources[0].ID != near || resp.Resources[1].ID != far {
		t.Fatalf("expected nearest first, got %+v", resp.Resources)
	}
	if resp.Resources[0].Distance != 2 || resp.Resources[0].GenericType != "meat" {
		t.Fatalf("unexpected nearest resource %+v", resp.Resources[0])
	}
}

func TestUseCase_RadiusOverride(t *testing.T) {
	reg := entity.NewRegistry()
	self := reg.Create()
	reg.Attach(self, ports.IIDPosition, fixedPosition{})
	spawnSupply(reg, "stone", 40, world.Point{X: 30})

	resp, err := UseCase{Registry: reg}.Execute(context.Background(), Request{Entity: self, Radius: 50})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(resp.Resources) != 1 {
		t.Fatalf("expected stone within override radius, got %+v", resp.Resources)
	}
}

func TestUseCase_Errors(t *testing.T) {
	reg := entity.NewRegistry()
	blind := reg.Create()
	uc := UseCase{Registry: reg}

	if _, err := uc.Execute(context.Background(), Request{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), Request{Entity: 77}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), Request{Entity: blind}); !errors.Is(err, ErrNoPosition) {
		t.Fatalf("expected ErrNoPosition, got %v", err)
	}
}

type fixedPosition struct {
	at world.Point
}

func (p fixedPosition) Position() (world.Point, bool) { return p.at, true }

type vision float64

func (v vision) Range() float64 { return float64(v) }

type supply struct {
	kind   string
	amount float64
}

func (s *supply) GenericType() string    { return s.kind }
func (s *supply) CurrentAmount() float64 { return s.amount }
func (s *supply) Change(delta float64) float64 {
	s.amount += delta
	return delta
}

func spawnSupply(reg *entity.Registry, kind string, amount float64, at world.Point) entity.ID {
	id := reg.Create()
	reg.Attach(id, ports.IIDResourceSupply, &supply{kind: kind, amount: amount})
	reg.Attach(id, ports.IIDPosition, fixedPosition{at: at})
	return id
}
