package inmemory

import (
	"sync"

	"outpost/internal/app/ports"
	"outpost/internal/domain/survival"
)

type Snapshot struct {
	ConsumedTotal    uint64             `json:"consumed_total"`
	StarvationTotal  uint64             `json:"starvation_total"`
	StarvationDamage float64            `json:"starvation_damage"`
	ForageTotal      uint64             `json:"forage_total"`
	BuildTicks       uint64             `json:"build_ticks"`
	BuildWork        float64            `json:"build_work"`
	ConsumedByKind   map[string]uint64  `json:"consumed_by_kind"`
	DamageByKind     map[string]float64 `json:"damage_by_kind"`
	ForageBySource   map[string]uint64  `json:"forage_by_source"`
	StopsByReason    map[string]uint64  `json:"stops_by_reason"`
}

type Recorder struct {
	mu         sync.Mutex
	consumed   map[string]uint64
	starved    uint64
	damage     map[string]float64
	forage     map[string]uint64
	buildTicks uint64
	buildWork  float64
	stops      map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		consumed: map[string]uint64{},
		damage:   map[string]float64{},
		forage:   map[string]uint64{},
		stops:    map[string]uint64{},
	}
}

func (r *Recorder) RecordConsumption(kind survival.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumed[string(kind)]++
}

func (r *Recorder) RecordStarvation(kind survival.Kind, damage float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starved++
	r.damage[string(kind)] += damage
}

func (r *Recorder) RecordForage(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forage[source]++
}

func (r *Recorder) RecordBuildTick(work float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buildTicks++
	r.buildWork += work
}

func (r *Recorder) RecordBuilderStop(reason survival.StopReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := string(reason)
	if key == "" {
		key = "none"
	}
	r.stops[key]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		StarvationTotal: r.starved,
		BuildTicks:      r.buildTicks,
		BuildWork:       r.buildWork,
		ConsumedByKind:  make(map[string]uint64, len(r.consumed)),
		DamageByKind:    make(map[string]float64, len(r.damage)),
		ForageBySource:  make(map[string]uint64, len(r.forage)),
		StopsByReason:   make(map[string]uint64, len(r.stops)),
	}
	for k, v := range r.consumed {
		out.ConsumedByKind[k] = v
		out.ConsumedTotal += v
	}
	for k, v := range r.damage {
		out.DamageByKind[k] = v
		out.StarvationDamage += v
	}
	for k, v := range r.forage {
		out.ForageBySource[k] = v
		out.ForageTotal += v
	}
	for k, v := range r.stops {
		out.StopsByReason[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}

var _ ports.SimMetrics = (*Recorder)(nil)
