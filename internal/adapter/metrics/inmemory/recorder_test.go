package inmemory

import (
	"testing"

	"outpost/internal/domain/survival"
)

func TestRecorderSnapshot(t *testing.T) {
	r := NewRecorder()
	r.RecordConsumption(survival.KindMeat)
	r.RecordConsumption(survival.KindMeat)
	r.RecordConsumption(survival.KindWater)
	r.RecordStarvation(survival.KindVegan, 2)
	r.RecordStarvation(survival.KindVegan, 1)
	r.RecordForage("builder")
	r.RecordBuildTick(0.5)
	r.RecordBuildTick(1)
	r.RecordBuilderStop(survival.ReasonOutOfRange)
	r.RecordBuilderStop(survival.ReasonNone)

	s := r.Snapshot()
	if s.ConsumedTotal != 3 {
		t.Fatalf("expected consumed 3, got %d", s.ConsumedTotal)
	}
	if s.ConsumedByKind["meat"] != 2 {
		t.Fatalf("expected meat consumed 2, got %d", s.ConsumedByKind["meat"])
	}
	if s.StarvationTotal != 2 || s.StarvationDamage != 3 {
		t.Fatalf("expected 2 starvation hits for 3 damage, got %d/%v", s.StarvationTotal, s.StarvationDamage)
	}
	if s.ForageTotal != 1 {
		t.Fatalf("expected forage 1, got %d", s.ForageTotal)
	}
	if s.BuildTicks != 2 || s.BuildWork != 1.5 {
		t.Fatalf("expected 2 build ticks for 1.5 work, got %d/%v", s.BuildTicks, s.BuildWork)
	}
	if s.StopsByReason["OutOfRange"] != 1 || s.StopsByReason["none"] != 1 {
		t.Fatalf("unexpected stops %v", s.StopsByReason)
	}
}

func TestRecorderSnapshotIsCopy(t *testing.T) {
	r := NewRecorder()
	r.RecordForage("need:meat")
	s := r.Snapshot()
	s.ForageBySource["need:meat"] = 99
	if r.Snapshot().ForageBySource["need:meat"] != 1 {
		t.Fatalf("snapshot must not alias recorder state")
	}
}
