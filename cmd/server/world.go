package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"outpost/internal/adapter/world/memory"
	"outpost/internal/adapter/world/seed"
	"outpost/internal/app/builder"
	"outpost/internal/app/needs"
	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
	"outpost/internal/domain/world"
)

const defaultBuildable = "structures/{civ}_house structures/{civ}_storehouse structures/{native}_field"

type demoConfig struct {
	Seed      int64
	Units     int
	Templates survival.Templates
	Scheduler ports.Scheduler
	Notifier  ports.Notifier
	Metrics   ports.SimMetrics
	Logger    *slog.Logger
}

type demoWorld struct {
	World      memory.World
	Units      []memory.Unit
	Resources  []entity.ID
	Foundation entity.ID
	Structure  entity.ID
	Dropsite   entity.ID
}

// buildDemoWorld seeds resources, a player base and a few workers. The
// first worker starts on the foundation.
func buildDemoWorld(reg *entity.Registry, cfg demoConfig) (demoWorld, error) {
	w := memory.NewWorld(reg)

	layout := seed.DefaultConfig()
	layout.Seed = cfg.Seed
	resources, err := seed.Populate(w, seed.Generate(layout))
	if err != nil {
		return demoWorld{}, fmt.Errorf("populate resources: %w", err)
	}

	players := memory.Players{
		1: {Civ: "athen", Allies: []int{2}},
		2: {Civ: "spart", Allies: []int{1}},
		3: {Civ: "pers"},
	}
	catalog := memory.Catalog{
		"structures/athen_house":      true,
		"structures/athen_storehouse": true,
		"structures/athen_field":      true,
		"structures/spart_field":      true,
	}
	modifiers := memory.Modifiers{}

	needDeps := needs.Deps{
		Registry:  reg,
		Scheduler: cfg.Scheduler,
		Notifier:  cfg.Notifier,
		Modifiers: modifiers,
		Random:    rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)>>1|1)),
		Metrics:   cfg.Metrics,
		Logger:    cfg.Logger,
	}
	builderDeps := builder.Deps{
		Registry:  reg,
		Scheduler: cfg.Scheduler,
		Ranges:    memory.Ranges{Registry: reg},
		Players:   players,
		Catalog:   catalog,
		Notifier:  cfg.Notifier,
		Modifiers: modifiers,
		Metrics:   cfg.Metrics,
		Logger:    cfg.Logger,
	}
	builderTpl := cfg.Templates.Builder
	if builderTpl.Entities == "" {
		builderTpl.Entities = defaultBuildable
	}

	dropsite, _ := w.SpawnDropsite(1, world.Point{}, "meat", "vegan", "water")
	foundation, _ := w.SpawnFoundation(1, world.Point{X: 3}, []survival.ResourceAmount{
		{Type: "wood", Amount: 99},
		{Type: "stone", Amount: 50},
	}, 1, 30)
	structure, s := w.SpawnStructure(1, world.Point{X: -3}, 500, 5, []survival.ResourceAmount{
		{Type: "stone", Amount: 200},
		{Type: "wood", Amount: 100},
	})
	s.Health.Reduce(120)

	units := make([]memory.Unit, 0, cfg.Units)
	for i := 0; i < cfg.Units; i++ {
		u := w.SpawnUnit(memory.UnitSpec{
			Player:      1,
			Civ:         "athen",
			At:          world.Point{X: 1, Z: float64(i)},
			Hitpoints:   100,
			Vision:      40,
			Obstruction: 1.5,
			Capacity:    20,
			Carrying:    []survival.ResourceAmount{{Type: "wood", Amount: 9}},
		})
		for _, kind := range survival.Kinds() {
			tpl, ok := cfg.Templates.Needs[kind]
			if !ok {
				continue
			}
			if _, err := needs.Attach(needDeps, u.ID, kind, tpl); err != nil {
				return demoWorld{}, fmt.Errorf("unit %s: %w", u.ID, err)
			}
		}
		if _, err := builder.Attach(builderDeps, u.ID, builderTpl); err != nil {
			return demoWorld{}, fmt.Errorf("unit %s: %w", u.ID, err)
		}
		units = append(units, u)
	}

	if len(units) > 0 {
		if b, ok := entity.Query[*builder.Builder](reg, units[0].ID, ports.IIDBuilder); ok {
			b.StartRepairing(foundation, ports.IIDUnitAI)
		}
	}

	return demoWorld{
		World:      w,
		Units:      units,
		Resources:  resources,
		Foundation: foundation,
		Structure:  structure,
		Dropsite:   dropsite,
	}, nil
}
