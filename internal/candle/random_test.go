package candle

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func TestNumber_Bounds(t *testing.T) {
	tests := []struct {
		name     string
		draw     float64
		min, max float64
		want     float64
	}{
		{"lower edge", 0, 50, 200, 50},
		{"midpoint", 0.5, 50, 200, 125},
		{"rounded", 0.3333, 0, 10, 3.33},
		{"reversed bounds", 0.25, 10, 2, 4},
		{"zero width", 0.9, 7, 7, 7},
		{"negative range", 0.5, -0.5, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Number(fixedSource(tt.draw), tt.min, tt.max); got != tt.want {
				t.Errorf("Number() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeeded_Deterministic(t *testing.T) {
	a := Seeded(42)
	b := Seeded(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %v != %v", i, x, y)
		}
	}
}

// Property test: Number stays inside the (ordered) bounds and has at most 2 decimals.
func TestProperty_NumberInRange(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("Number in [min,max] with 2 decimals", prop.ForAll(
		func(seed uint64, a, b float64) bool {
			lo, hi := math.Min(a, b), math.Max(a, b)
			v := Number(Seeded(seed), a, b)
			// rounding may move the value by half a cent past the bound
			if v < Round2(lo)-0.005 || v > Round2(hi)+0.005 {
				return false
			}
			return math.Abs(v*100-math.Round(v*100)) < 1e-6
		},
		gen.UInt64(),
		gen.Float64Range(-500, 500),
		gen.Float64Range(-500, 500),
	))

	properties.TestingRun(t)
}
