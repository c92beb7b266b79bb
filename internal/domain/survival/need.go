package survival

import (
	"encoding/json"
	"math"
	"time"
)

type Kind string

const (
	KindMeat  Kind = "meat"
	KindVegan Kind = "vegan"
	KindWater Kind = "water"
)

type ForagePolicy int

const (
	// ForageRandom fires when supply < random(0, max*RandomForageFraction).
	ForageRandom ForagePolicy = iota
	// ForageThreshold fires whenever supply < max*FixedForageFraction.
	ForageThreshold
)

type Feedback struct {
	Kind   Kind
	Amount float64
}

// Profile holds everything that differs between need kinds.
type Profile struct {
	Kind            Kind
	ResourceType    string
	DecayConstant   float64
	ConsumeConstant float64
	StarveConstant  float64
	Forage          ForagePolicy
	Feedback        []Feedback
}

var kindOrder = []Kind{KindMeat, KindVegan, KindWater}

var profiles = map[Kind]Profile{
	KindMeat: {
		Kind:            KindMeat,
		ResourceType:    "meat",
		DecayConstant:   100000,
		ConsumeConstant: 10000,
		StarveConstant:  10000,
		Forage:          ForageRandom,
		Feedback: []Feedback{
			{Kind: KindVegan, Amount: 0.75},
			{Kind: KindWater, Amount: 0.75},
		},
	},
	KindVegan: {
		Kind:            KindVegan,
		ResourceType:    "vegan",
		DecayConstant:   600000,
		ConsumeConstant: 60000,
		StarveConstant:  60000,
		Forage:          ForageRandom,
		Feedback: []Feedback{
			{Kind: KindMeat, Amount: 0.5},
			{Kind: KindWater, Amount: 0.75},
		},
	},
	KindWater: {
		Kind:            KindWater,
		ResourceType:    "water",
		DecayConstant:   100000,
		ConsumeConstant: 60000,
		StarveConstant:  60000,
		Forage:          ForageThreshold,
	},
}

func Kinds() []Kind {
	out := make([]Kind, len(kindOrder))
	copy(out, kindOrder)
	return out
}

func ProfileFor(k Kind) (Profile, bool) {
	p, ok := profiles[k]
	if !ok {
		return Profile{}, false
	}
	p.Feedback = append([]Feedback(nil), p.Feedback...)
	return p, true
}

// Period converts a per-kind constant and a rate into a timer period.
// Non-positive rates have no period.
func Period(constant, rate float64) (time.Duration, bool) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, false
	}
	ms := math.Round(constant / rate)
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * periodUnit, true
}

// ShouldForage evaluates the kind's forage trigger. roll is uniform in [0,1)
// and is ignored by ForageThreshold.
func (p Profile) ShouldForage(s Supply, roll float64) bool {
	switch p.Forage {
	case ForageThreshold:
		return s.Current < s.Max*FixedForageFraction
	default:
		return s.Current < roll*s.Max*RandomForageFraction
	}
}

// Supply is a level clamped to [0, Max].
type Supply struct {
	Max     float64
	Current float64
}

func NewSupply(max float64) Supply {
	if max < 0 || math.IsNaN(max) {
		max = 0
	}
	return Supply{Max: max, Current: max}
}

func (s Supply) IsNeedy() bool {
	return s.Current < s.Max
}

func (s Supply) IsDepleted() bool {
	return s.Current == 0
}

func (s *Supply) Set(v float64) Change {
	old := s.Current
	s.Current = math.Max(0, math.Min(s.Max, v))
	return Change{Old: old, New: s.Current}
}

// Reduce subtracts amount, floored at 0, and returns the signed change.
func (s *Supply) Reduce(amount float64) float64 {
	if amount <= 0 || s.Current == 0 {
		return 0
	}
	old := s.Current
	if amount >= s.Current {
		s.Current = 0
		return -old
	}
	s.Current -= amount
	return s.Current - old
}

// Increase raises the level up to Max; a satisfied supply is left unchanged.
func (s *Supply) Increase(amount float64) Change {
	if !s.IsNeedy() || amount <= 0 {
		return Change{Old: s.Current, New: s.Current}
	}
	old := s.Current
	s.Current = math.Min(s.Current+amount, s.Max)
	return Change{Old: old, New: s.Current}
}

// StarvePenalty maps a uniform roll in [0,1) to an integer health loss,
// uniform over [0, StarvePenaltyMax].
func StarvePenalty(roll float64) float64 {
	if roll < 0 || math.IsNaN(roll) {
		roll = 0
	}
	n := math.Floor(roll * (StarvePenaltyMax + 1))
	return math.Min(n, StarvePenaltyMax)
}

// Mirage is a frozen view of a need track.
type Mirage struct {
	kind      Kind
	maxSupply float64
	supply    float64
	needy     bool
}

func NewMirage(kind Kind, s Supply) Mirage {
	return Mirage{kind: kind, maxSupply: s.Max, supply: s.Current, needy: s.IsNeedy()}
}

func (m Mirage) Kind() Kind            { return m.kind }
func (m Mirage) GetMaxSupply() float64 { return m.maxSupply }
func (m Mirage) GetSupply() float64    { return m.supply }
func (m Mirage) IsNeedy() bool         { return m.needy }

type mirageJSON struct {
	Kind      Kind    `json:"kind"`
	Supply    float64 `json:"supply"`
	MaxSupply float64 `json:"max_supply"`
	Needy     bool    `json:"needy"`
}

func (m Mirage) MarshalJSON() ([]byte, error) {
	return json.Marshal(mirageJSON{Kind: m.kind, Supply: m.supply, MaxSupply: m.maxSupply, Needy: m.needy})
}
