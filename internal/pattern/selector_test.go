package pattern

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"example.com/candle-predict/internal/candle"
)

func TestSelector_Branches(t *testing.T) {
	tests := []struct {
		name    string
		ceiling Difficulty
		draws   []float64
		want    PatternType
	}{
		{"engulfing", Hard, []float64{0.01, 0}, PatternBullishEngulfing},
		{"engulfing second", Hard, []float64{0.01, 0.99}, PatternBearishEngulfing},
		{"easy", Hard, []float64{0.10, 0}, PatternDoji},
		{"medium skips engulfing", Hard, []float64{0.50, 0}, PatternBullishHarami},
		{"hard", Hard, []float64{0.90, 0}, PatternMorningStar},
		{"ceiling 1 ignores engulfing draw", Easy, []float64{0.01, 0}, PatternDoji},
		{"ceiling 2 hard draw falls back", Medium, []float64{0.90, 0}, PatternDoji},
		{"ceiling 2 last fallback", Medium, []float64{0.90, 0.99}, PatternSpinningTop},
		{"clamped high ceiling", 9, []float64{0.90, 0}, PatternMorningStar},
		{"clamped low ceiling", -1, []float64{0.90, 0}, PatternDoji},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelector(nil, &scriptedSource{vals: tt.draws}, zerolog.Nop())
			if got := s.Select(tt.ceiling).ID; got != tt.want {
				t.Errorf("Select(%d) = %s, want %s", tt.ceiling, got, tt.want)
			}
		})
	}
}

func TestSelector_OnlyEngulfing(t *testing.T) {
	c := NewCatalog([]Definition{
		{ID: PatternBullishEngulfing, Difficulty: Medium},
		{ID: PatternBearishEngulfing, Difficulty: Medium},
	})
	s := NewSelector(c, &scriptedSource{vals: []float64{0.7}}, zerolog.Nop())
	if got := s.Select(Medium).ID; got != PatternBearishEngulfing {
		t.Errorf("Select() = %s, want bearishEngulfing", got)
	}
}

func TestSelector_EmptyCatalog(t *testing.T) {
	s := NewSelector(NewCatalog(nil), candle.Seeded(1), zerolog.Nop())
	if got := s.Select(Hard); got.ID != "" {
		t.Errorf("Select() = %s, want zero definition", got.ID)
	}
}

func TestSelector_Distribution(t *testing.T) {
	const draws = 10000
	s := NewSelector(nil, candle.Seeded(20240601), zerolog.Nop())

	var engulfing, easy, medium, hard int
	for i := 0; i < draws; i++ {
		d := s.Select(Hard)
		switch {
		case isEngulfing(d.ID):
			engulfing++
		case d.Difficulty == Easy:
			easy++
		case d.Difficulty == Medium:
			medium++
		default:
			hard++
		}
	}

	tests := []struct {
		name  string
		count int
		want  float64
	}{
		{"engulfing", engulfing, 0.05},
		{"easy", easy, 0.35},
		{"medium", medium, 0.35},
		{"hard", hard, 0.25},
	}
	for _, tt := range tests {
		got := float64(tt.count) / draws
		if math.Abs(got-tt.want) > 0.025 {
			t.Errorf("%s share = %.3f, want %.2f ± 0.025", tt.name, got, tt.want)
		}
	}
}

// Property test: Select never exceeds the ceiling and a ceiling of 1 never yields engulfing.
func TestProperty_SelectRespectsCeiling(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("Select(c).Difficulty <= c", prop.ForAll(
		func(seed uint64, c int) bool {
			s := NewSelector(nil, candle.Seeded(seed), zerolog.Nop())
			d := s.Select(Difficulty(c))
			return d.Difficulty <= Difficulty(c).Clamp()
		},
		gen.UInt64(),
		gen.IntRange(-2, 6),
	))

	properties.Property("Select(1) is an easy non-engulfing pattern", prop.ForAll(
		func(seed uint64) bool {
			s := NewSelector(nil, candle.Seeded(seed), zerolog.Nop())
			d := s.Select(Easy)
			return d.Difficulty == Easy && !isEngulfing(d.ID)
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
