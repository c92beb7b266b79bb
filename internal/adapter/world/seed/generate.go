package seed

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"outpost/internal/adapter/world/memory"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/world"
)

// Layer places nodes of one type wherever its noise exceeds Threshold.
// Noise samples lie in [0,1].
type Layer struct {
	GenericType string
	Threshold   float64
	MaxAmount   float64
}

type Config struct {
	Seed    int64
	Extent  int
	Spacing float64
	Layers  []Layer
}

func DefaultConfig() Config {
	return Config{
		Seed:    0,
		Extent:  12,
		Spacing: 8,
		Layers: []Layer{
			{GenericType: "meat", Threshold: 0.62, MaxAmount: 100},
			{GenericType: "vegan", Threshold: 0.58, MaxAmount: 200},
			{GenericType: "water", Threshold: 0.64, MaxAmount: 1000},
			{GenericType: "wood", Threshold: 0.55, MaxAmount: 200},
			{GenericType: "stone", Threshold: 0.66, MaxAmount: 500},
		},
	}
}

// Generate samples one noise field per layer on a square grid centered on
// the origin. The same seed always yields the same nodes.
func Generate(cfg Config) []world.ResourceNode {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	if cfg.Spacing <= 0 {
		cfg.Spacing = 1
	}

	out := make([]world.ResourceNode, 0)
	for i, layer := range cfg.Layers {
		noise := opensimplex.NewNormalized(seed + int64(i))
		for gx := -cfg.Extent; gx <= cfg.Extent; gx++ {
			for gz := -cfg.Extent; gz <= cfg.Extent; gz++ {
				v := octaveNoise(noise, float64(gx), float64(gz), 3, 0.15, 0.5)
				if v <= layer.Threshold {
					continue
				}
				// scale amount by how far above the threshold the sample is
				span := math.Max(1-layer.Threshold, 1e-9)
				amount := math.Round(layer.MaxAmount * math.Min(1, (v-layer.Threshold)/span+0.25))
				out = append(out, world.ResourceNode{
					GenericType: layer.GenericType,
					Amount:      amount,
					MaxAmount:   layer.MaxAmount,
					Position:    world.Point{X: float64(gx) * cfg.Spacing, Z: float64(gz) * cfg.Spacing},
				})
			}
		}
	}
	return out
}

// Populate spawns every node into w.
func Populate(w memory.World, nodes []world.ResourceNode) ([]entity.ID, error) {
	ids := make([]entity.ID, 0, len(nodes))
	for _, n := range nodes {
		id, err := w.SpawnResource(n)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
