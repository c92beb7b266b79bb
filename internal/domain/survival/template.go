package survival

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

var ErrInvalidTemplate = errors.New("invalid template")

type NeedTemplate struct {
	Max          float64 `json:"max" jsonschema:"minimum=0,description=Maximum supplies"`
	DecayRate    float64 `json:"decay_rate" jsonschema:"minimum=0,description=Supplies drained per decay period"`
	ConsumeRate  float64 `json:"consume_rate" jsonschema:"minimum=0,description=Consumption rate while carrying the resource"`
	StarveEffect float64 `json:"starve_effect" jsonschema:"minimum=0,description=Health penalty rate while out of supplies"`
}

type BuilderTemplate struct {
	Rate     float64 `json:"rate" jsonschema:"description=Construction speed multiplier (1.0 is normal speed)"`
	Entities string  `json:"entities,omitempty" jsonschema:"description=Space separated buildable templates; {civ} and {native} are substituted"`
}

type Templates struct {
	Needs   map[Kind]NeedTemplate `json:"needs"`
	Builder BuilderTemplate       `json:"builder"`
}

func DefaultNeedTemplate() NeedTemplate {
	return NeedTemplate{Max: 100, DecayRate: 1, ConsumeRate: 6, StarveEffect: 6}
}

func DefaultTemplates() Templates {
	needs := make(map[Kind]NeedTemplate, len(kindOrder))
	for _, k := range kindOrder {
		needs[k] = DefaultNeedTemplate()
	}
	return Templates{
		Needs:   needs,
		Builder: BuilderTemplate{Rate: 1.0},
	}
}

func (t NeedTemplate) Validate() error {
	for name, v := range map[string]float64{
		"max":           t.Max,
		"decay_rate":    t.DecayRate,
		"consume_rate":  t.ConsumeRate,
		"starve_effect": t.StarveEffect,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidTemplate, name)
		}
	}
	return nil
}

func (t Templates) Validate() error {
	for k, n := range t.Needs {
		if _, ok := profiles[k]; !ok {
			_, err := ParseKind(string(k))
			return fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
		}
		if err := n.Validate(); err != nil {
			return fmt.Errorf("need %s: %w", k, err)
		}
	}
	if t.Builder.Rate <= 0 || math.IsNaN(t.Builder.Rate) {
		return fmt.Errorf("%w: builder rate must be positive", ErrInvalidTemplate)
	}
	return nil
}

// ParseTemplates decodes a templates document on top of the defaults.
func ParseTemplates(data []byte) (Templates, error) {
	out := DefaultTemplates()
	var raw struct {
		Needs   map[string]NeedTemplate `json:"needs"`
		Builder *BuilderTemplate        `json:"builder"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Templates{}, fmt.Errorf("decode templates: %w", err)
	}
	for name, n := range raw.Needs {
		k, err := ParseKind(name)
		if err != nil {
			return Templates{}, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
		}
		out.Needs[k] = n
	}
	if raw.Builder != nil {
		out.Builder = *raw.Builder
	}
	if err := out.Validate(); err != nil {
		return Templates{}, err
	}
	return out, nil
}

var tokenSplit = regexp.MustCompile(`\s+`)

// ExpandEntities resolves a builder's buildable template tokens.
func ExpandEntities(tokens, ownerCiv, nativeCiv string, disabled map[string]bool, exists func(string) bool) []string {
	tokens = strings.TrimSpace(tokens)
	if tokens == "" {
		return []string{}
	}
	if nativeCiv != "" {
		tokens = strings.ReplaceAll(tokens, "{native}", nativeCiv)
	}
	tokens = strings.ReplaceAll(tokens, "{civ}", ownerCiv)

	out := make([]string, 0)
	for _, name := range tokenSplit.Split(tokens, -1) {
		if name == "" || disabled[name] {
			continue
		}
		if exists != nil && !exists(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}
