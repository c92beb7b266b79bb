package world

import "math"

type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Z: p.Z - o.Z}
}

func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Z)
}

func (p Point) DistanceTo(o Point) float64 {
	return p.Sub(o).Length()
}

// Within reports whether o lies inside the closed disc of radius r around p.
func (p Point) Within(o Point, r float64) bool {
	if r < 0 {
		return false
	}
	return p.DistanceTo(o) <= r
}
