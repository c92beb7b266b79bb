package survival

import "time"

const (
	ForageCheckInterval = 1000 * time.Millisecond
	BuildInterval       = 1000 * time.Millisecond

	BaseBuildRange = 2.0

	DecayStep       = 1.0
	ConsumptionStep = 1.0
	RepairCarryCost = 1.0

	StarvePenaltyMax = 2

	RandomForageFraction = 0.5
	FixedForageFraction  = 0.1

	periodUnit = time.Millisecond
)

const (
	AnimationIdle  = "idle"
	AnimationBuild = "build"
)
