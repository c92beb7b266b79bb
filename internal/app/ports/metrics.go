package ports

import "outpost/internal/domain/survival"

type SimMetrics interface {
	RecordConsumption(kind survival.Kind)
	RecordStarvation(kind survival.Kind, damage float64)
	RecordForage(source string)
	RecordBuildTick(work float64)
	RecordBuilderStop(reason survival.StopReason)
}

type NopMetrics struct{}

func (NopMetrics) RecordConsumption(survival.Kind)         {}
func (NopMetrics) RecordStarvation(survival.Kind, float64) {}
func (NopMetrics) RecordForage(string)                     {}
func (NopMetrics) RecordBuildTick(float64)                 {}
func (NopMetrics) RecordBuilderStop(survival.StopReason)   {}
