package pattern

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"example.com/candle-predict/internal/candle"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

// scriptedSource replays vals in a loop.
type scriptedSource struct {
	vals []float64
	i    int
}

func (s *scriptedSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func TestGenerateDoji_Midpoint(t *testing.T) {
	cs := generateDoji(fixedSource(0.5))
	if len(cs) != 1 {
		t.Fatalf("len = %d, want 1", len(cs))
	}
	c := cs[0]
	if c.Open != 125 || c.Close != 125 {
		t.Errorf("open/close = %v/%v, want 125/125", c.Open, c.Close)
	}
	if c.High-c.Open != c.Open-c.Low {
		t.Errorf("wicks not symmetric: %+v", c)
	}
	if c.High != 135 || c.Low != 115 {
		t.Errorf("high/low = %v/%v, want 135/115", c.High, c.Low)
	}
}

func TestGenerateShootingStar_LowerWick(t *testing.T) {
	c := generateShootingStar(fixedSource(0.5))[0]
	if c.Open != 125 || c.Close != 123 || c.High != 140 {
		t.Errorf("candle = %+v, want open 125 close 123 high 140", c)
	}
	if c.Low != 122.5 {
		t.Errorf("low = %v, want 122.5 (half a point below the close)", c.Low)
	}

	for seed := uint64(1); seed <= 50; seed++ {
		c := generateShootingStar(candle.Seeded(seed))[0]
		if w := c.LowerShadow(); w < 0 || w > 1+1e-9 {
			t.Errorf("seed %d: lower shadow %v outside [0,1]", seed, w)
		}
	}
}

func TestGenerators_Sizes(t *testing.T) {
	src := candle.Seeded(7)
	for _, def := range Default().All() {
		t.Run(string(def.ID), func(t *testing.T) {
			cs := def.Generate(src)
			if len(cs) != Size(def.ID) {
				t.Errorf("len = %d, want %d", len(cs), Size(def.ID))
			}
			if int(def.Difficulty) != len(cs) {
				t.Errorf("difficulty %d does not match %d candles", def.Difficulty, len(cs))
			}
		})
	}
}

func TestGenerators_EdgeDraws(t *testing.T) {
	// The extremes of the source must still produce the structure.
	for _, draw := range []float64{0, 0.999999} {
		for _, def := range Default().All() {
			cs := def.Generate(fixedSource(draw))
			if !Matches(def.ID, cs) {
				t.Errorf("%s with draw %v: shape not matched: %+v", def.ID, draw, cs)
			}
		}
	}
}

func TestGenerateThreeWhiteSoldiers_Chained(t *testing.T) {
	cs := generateThreeWhiteSoldiers(candle.Seeded(3))
	for i := 1; i < len(cs); i++ {
		if cs[i].Open != cs[i-1].Close {
			t.Errorf("candle %d opens at %v, previous close %v", i, cs[i].Open, cs[i-1].Close)
		}
	}
}

// Property test: every generator yields valid candles with its catalog structure.
func TestProperty_GeneratorShapes(t *testing.T) {
	properties := gopter.NewProperties(nil)

	for _, def := range Default().All() {
		def := def
		properties.Property(string(def.ID)+" is valid and structural", prop.ForAll(
			func(seed uint64) bool {
				cs := def.Generate(candle.Seeded(seed))
				for _, c := range cs {
					if !c.IsValid() {
						return false
					}
					if (c.Direction() == candle.Up) != (c.Close >= c.Open) {
						return false
					}
				}
				return Matches(def.ID, cs)
			},
			gen.UInt64(),
		))
	}

	properties.TestingRun(t)
}

// Property test: engulfing, harami, piercing and dark cloud keep their strict relations.
func TestProperty_TwoCandleRelations(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("engulfing second body strictly contains the first", prop.ForAll(
		func(seed uint64) bool {
			src := candle.Seeded(seed)
			for _, cs := range [][]candle.Candle{generateBullishEngulfing(src), generateBearishEngulfing(src)} {
				if !(cs[1].BodyLow() < cs[0].BodyLow() && cs[1].BodyHigh() > cs[0].BodyHigh()) {
					return false
				}
			}
			return true
		},
		gen.UInt64(),
	))

	properties.Property("harami second body strictly inside the first", prop.ForAll(
		func(seed uint64) bool {
			src := candle.Seeded(seed)
			for _, cs := range [][]candle.Candle{generateBullishHarami(src), generateBearishHarami(src)} {
				if !(cs[1].BodyLow() > cs[0].BodyLow() && cs[1].BodyHigh() < cs[0].BodyHigh()) {
					return false
				}
			}
			return true
		},
		gen.UInt64(),
	))

	properties.Property("piercing closes past the midpoint inside the body", prop.ForAll(
		func(seed uint64) bool {
			cs := generatePiercingLine(candle.Seeded(seed))
			mid := (cs[0].Open + cs[0].Close) / 2
			return cs[1].Open < cs[0].Close && cs[1].Close > mid && cs[1].Close < cs[0].Open
		},
		gen.UInt64(),
	))

	properties.Property("dark cloud closes past the midpoint inside the body", prop.ForAll(
		func(seed uint64) bool {
			cs := generateDarkCloudCover(candle.Seeded(seed))
			mid := (cs[0].Open + cs[0].Close) / 2
			return cs[1].Open > cs[0].Close && cs[1].Close < mid && cs[1].Close > cs[0].Open
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
