package chart

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"example.com/candle-predict/internal/candle"
	"example.com/candle-predict/internal/pattern"
)

func newTestBuilder(seed uint64) *Builder {
	return NewBuilder(candle.Seeded(seed), Options{}, zerolog.Nop())
}

func assertValid(t *testing.T, cs []candle.Candle) {
	t.Helper()
	for i, c := range cs {
		if !c.IsValid() {
			t.Errorf("candle %d invalid: %+v", i, c)
		}
	}
}

func TestNewBuilder_Defaults(t *testing.T) {
	b := NewBuilder(nil, Options{MinLength: -3, FallbackStart: -1}, zerolog.Nop())
	if b.MinLength() != DefaultMinLength {
		t.Errorf("MinLength() = %d, want %d", b.MinLength(), DefaultMinLength)
	}
	if b.fallbackStart != DefaultFallbackStart {
		t.Errorf("fallbackStart = %v, want %v", b.fallbackStart, DefaultFallbackStart)
	}
	if b.src == nil {
		t.Error("nil source not replaced")
	}
}

func TestBuilder_Round_EveryPattern(t *testing.T) {
	b := newTestBuilder(11)
	for _, def := range pattern.Default().All() {
		t.Run(string(def.ID), func(t *testing.T) {
			ch := b.Round(def)
			if len(ch.Candles) < DefaultMinLength {
				t.Fatalf("len = %d, want >= %d", len(ch.Candles), DefaultMinLength)
			}
			if ch.Fallback {
				t.Error("unexpected fallback")
			}
			assertValid(t, ch.Candles)

			if ch.PatternStart != 0 || ch.PatternEnd != pattern.Size(def.ID) {
				t.Errorf("pattern span = [%d,%d)", ch.PatternStart, ch.PatternEnd)
			}
			if !pattern.Matches(def.ID, ch.Pattern()) {
				t.Errorf("pattern span does not match %s", def.ID)
			}
			for i := ch.PatternEnd; i < len(ch.Candles); i++ {
				if ch.Candles[i].Open != ch.Candles[i-1].Close {
					t.Errorf("padding candle %d not chained", i)
				}
			}
		})
	}
}

func TestBuilder_Round_Faults(t *testing.T) {
	tests := []struct {
		name string
		gen  pattern.Generator
	}{
		{"panic", func(candle.Source) []candle.Candle { panic("boom") }},
		{"empty", func(candle.Source) []candle.Candle { return nil }},
		{"nan", func(candle.Source) []candle.Candle {
			return []candle.Candle{{Open: math.NaN(), High: 1, Low: 0, Close: 1}}
		}},
		{"inf", func(candle.Source) []candle.Candle {
			return []candle.Candle{candle.New(1, math.Inf(1), 0, 1)}
		}},
		{"nil generator", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := pattern.Definition{ID: "broken", Expected: candle.Up, Difficulty: pattern.Easy, Generate: tt.gen}
			ch := newTestBuilder(5).Round(def)
			if !ch.Fallback {
				t.Error("expected fallback chart")
			}
			if len(ch.Candles) != DefaultMinLength {
				t.Fatalf("len = %d, want %d", len(ch.Candles), DefaultMinLength)
			}
			if ch.Candles[0].Open != DefaultFallbackStart {
				t.Errorf("first open = %v, want %v", ch.Candles[0].Open, DefaultFallbackStart)
			}
			assertValid(t, ch.Candles)
		})
	}
}

func TestBuilder_Pad(t *testing.T) {
	b := newTestBuilder(1)
	in := []candle.Candle{candle.New(100, 104, 98, 102)}

	out := b.Pad(in)
	if len(out) != DefaultMinLength {
		t.Fatalf("len = %d, want %d", len(out), DefaultMinLength)
	}
	if len(in) != 1 || in[0] != out[0] {
		t.Error("input modified or not kept as prefix")
	}
	if out[1].Open != 102 {
		t.Errorf("walk starts at %v, want 102", out[1].Open)
	}
	for i := 1; i < len(out); i++ {
		step := out[i].Close - out[i].Open
		if step < -walkStep-1e-9 || step > walkStep+1e-9 {
			t.Errorf("step %d = %v out of range", i, step)
		}
	}

	long := b.Walk(50, 20)
	if got := b.Pad(long); len(got) != 20 {
		t.Errorf("Pad on a long chart changed length to %d", len(got))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		in        candle.Candle
		high, low float64
	}{
		{"valid kept", candle.New(100, 110, 90, 105), 110, 90},
		{"flat widened", candle.Candle{Open: 100, High: 100, Low: 100, Close: 100}, 105, 95},
		{"inverted repaired", candle.Candle{Open: 100, High: 90, Low: 110, Close: 105}, 105, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate([]candle.Candle{tt.in})[0]
			if got.High != tt.high || got.Low != tt.low {
				t.Errorf("high/low = %v/%v, want %v/%v", got.High, got.Low, tt.high, tt.low)
			}
			if !got.IsValid() {
				t.Errorf("Validate produced invalid candle %+v", got)
			}
		})
	}
}

func TestNewBuilder_MinLengthFloor(t *testing.T) {
	for _, n := range []int{0, 3, 14} {
		if b := NewBuilder(nil, Options{MinLength: n}, zerolog.Nop()); b.MinLength() != DefaultMinLength {
			t.Errorf("MinLength %d: got %d, want %d", n, b.MinLength(), DefaultMinLength)
		}
	}
}

func TestBuilder_Fallback(t *testing.T) {
	b := NewBuilder(candle.Seeded(9), Options{MinLength: 20, FallbackStart: 250}, zerolog.Nop())
	cs := b.Fallback()
	if len(cs) != 20 {
		t.Fatalf("len = %d, want 20", len(cs))
	}
	if cs[0].Open != 250 {
		t.Errorf("first open = %v, want 250", cs[0].Open)
	}
	assertValid(t, cs)
}

// Property test: any catalog pattern with any seed yields at least 15 valid candles.
func TestProperty_RoundCandlesValid(t *testing.T) {
	properties := gopter.NewProperties(nil)
	defs := pattern.Default().All()

	properties.Property("RoundCandles valid and long enough", prop.ForAll(
		func(seed uint64, idx int) bool {
			cs := newTestBuilder(seed).RoundCandles(defs[idx])
			if len(cs) < DefaultMinLength {
				return false
			}
			for _, c := range cs {
				if !c.IsValid() {
					return false
				}
			}
			return true
		},
		gen.UInt64(),
		gen.IntRange(0, len(defs)-1),
	))

	properties.TestingRun(t)
}
