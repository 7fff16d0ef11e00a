// Package chart turns a pattern definition into the candle sequence a player sees.
package chart

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"example.com/candle-predict/internal/candle"
	"example.com/candle-predict/internal/pattern"
)

const (
	// DefaultMinLength is the minimum number of candles in a round chart.
	DefaultMinLength = 15
	// DefaultFallbackStart is the first open of the fallback walk.
	DefaultFallbackStart = 100.0
	// DefaultContextLength is the number of context candles when none is requested.
	DefaultContextLength = 5
	// MaxContextLength bounds the context prefix of a chart.
	MaxContextLength = 100

	walkStep     = 5.0 // close = open + U[-walkStep, walkStep]
	padWick      = 3.0 // padding wicks U[0, padWick]
	contextWickL = 1.0 // context wicks U[contextWickL, contextWickH]
	contextWickH = 3.0
	flatWiden    = 5.0
)

var (
	errNoGenerator = errors.New("pattern has no generator")
	errEmpty       = errors.New("generator returned no candles")
	errNonFinite   = errors.New("generator returned non-finite prices")
)

// Chart is a candle sequence with the span occupied by the pattern.
type Chart struct {
	Candles      []candle.Candle `json:"candles"`
	PatternStart int             `json:"pattern_start"`
	PatternEnd   int             `json:"pattern_end"` // exclusive
	Fallback     bool            `json:"fallback"`
}

// Pattern returns the candles of the pattern span.
func (c Chart) Pattern() []candle.Candle {
	if c.PatternStart < 0 || c.PatternEnd > len(c.Candles) || c.PatternStart >= c.PatternEnd {
		return nil
	}
	return c.Candles[c.PatternStart:c.PatternEnd]
}

// UpToPattern returns the candles from the start of the chart to the end of the pattern.
func (c Chart) UpToPattern() []candle.Candle {
	end := min(c.PatternEnd, len(c.Candles))
	if end <= 0 {
		return nil
	}
	return c.Candles[:end]
}

// Options configures a Builder.
type Options struct {
	MinLength     int
	FallbackStart float64
}

// Builder assembles round and context charts. It never fails: broken generator output is
// replaced by a random walk.
type Builder struct {
	src           candle.Source
	minLength     int
	fallbackStart float64
	logger        zerolog.Logger
}

// NewBuilder creates a chart builder. Invalid options fall back to the defaults.
func NewBuilder(src candle.Source, opts Options, logger zerolog.Logger) *Builder {
	logger = logger.With().Str("component", "chart").Logger()

	if src == nil {
		src = candle.Global()
	}
	if opts.MinLength < DefaultMinLength {
		if opts.MinLength != 0 {
			logger.Warn().Int("min_length", opts.MinLength).Int("default", DefaultMinLength).Msg("invalid chart min length, using default")
		}
		opts.MinLength = DefaultMinLength
	}
	if opts.FallbackStart <= 0 {
		opts.FallbackStart = DefaultFallbackStart
	}

	return &Builder{
		src:           src,
		minLength:     opts.MinLength,
		fallbackStart: opts.FallbackStart,
		logger:        logger,
	}
}

// MinLength returns the minimum round chart length.
func (b *Builder) MinLength() int {
	return b.minLength
}

// generate runs the pattern generator and rejects panics, empty and non-finite output.
func (b *Builder) generate(def pattern.Definition) (cs []candle.Candle, err error) {
	if def.Generate == nil {
		return nil, errNoGenerator
	}
	defer func() {
		if r := recover(); r != nil {
			cs = nil
			err = fmt.Errorf("generator panicked: %v", r)
		}
	}()

	cs = def.Generate(b.src)
	if len(cs) == 0 {
		return nil, errEmpty
	}
	for _, c := range cs {
		if !c.IsFinite() {
			return nil, errNonFinite
		}
	}
	return cs, nil
}

// Round builds the chart for a round: the pattern first, padded to the minimum length with a
// random walk, every candle validated. On generator failure it returns the fallback walk.
func (b *Builder) Round(def pattern.Definition) Chart {
	cs, err := b.generate(def)
	if err != nil {
		b.logger.Warn().Err(err).Str("pattern", string(def.ID)).Msg("pattern generation failed, using fallback chart")
		return Chart{
			Candles:    b.Fallback(),
			PatternEnd: b.minLength,
			Fallback:   true,
		}
	}

	n := len(cs)
	return Chart{
		Candles:    Validate(b.Pad(cs)),
		PatternEnd: n,
	}
}

// RoundCandles returns the candles of Round.
func (b *Builder) RoundCandles(def pattern.Definition) []candle.Candle {
	return b.Round(def).Candles
}

// Pad appends random-walk candles until cs reaches the minimum length. The walk starts at the
// last close. cs is not modified.
func (b *Builder) Pad(cs []candle.Candle) []candle.Candle {
	out := make([]candle.Candle, len(cs), max(len(cs), b.minLength))
	copy(out, cs)
	if len(out) >= b.minLength {
		return out
	}

	start := b.fallbackStart
	if len(out) > 0 {
		start = out[len(out)-1].Close
	}
	return append(out, b.Walk(start, b.minLength-len(out))...)
}

// Walk returns n chained candles starting at start: each open is the previous close,
// close = open + U[-5,5] and wicks U[0,3].
func (b *Builder) Walk(start float64, n int) []candle.Candle {
	return b.walk(start, n, 0, padWick)
}

func (b *Builder) walk(start float64, n int, wickMin, wickMax float64) []candle.Candle {
	if n <= 0 {
		return nil
	}
	out := make([]candle.Candle, 0, n)
	price := start
	for i := 0; i < n; i++ {
		open := price
		close := open + candle.Number(b.src, -walkStep, walkStep)
		high := max(open, close) + candle.Number(b.src, wickMin, wickMax)
		low := min(open, close) - candle.Number(b.src, wickMin, wickMax)
		out = append(out, candle.New(open, high, low, close))
		price = close
	}
	return out
}

// Fallback returns a validated random walk of the minimum length starting at the fallback start.
func (b *Builder) Fallback() []candle.Candle {
	return Validate(b.Walk(b.fallbackStart, b.minLength))
}

// Validate repairs every candle: high and low enclose the body and a zero range is widened by 5
// on each side. A new slice is returned.
func Validate(cs []candle.Candle) []candle.Candle {
	out := make([]candle.Candle, len(cs))
	for i, c := range cs {
		c = candle.New(c.Open, c.High, c.Low, c.Close)
		if c.High == c.Low {
			c.High += flatWiden
			c.Low -= flatWiden
		}
		out[i] = c
	}
	return out
}
