package chart

import (
	"example.com/candle-predict/internal/candle"
	"example.com/candle-predict/internal/pattern"
)

// Context builds n random-walk candles followed by the pattern. The walk is chained into the
// pattern: its last close equals the first pattern open. n <= 0 yields the pattern alone and n
// is capped at MaxContextLength.
func (b *Builder) Context(def pattern.Definition, n int) Chart {
	n = min(n, MaxContextLength)
	cs, err := b.generate(def)
	if err != nil {
		b.logger.Warn().Err(err).Str("pattern", string(def.ID)).Msg("pattern generation failed, using fallback chart")
		return Chart{
			Candles:    b.Fallback(),
			PatternEnd: b.minLength,
			Fallback:   true,
		}
	}
	cs = Validate(cs)

	if n <= 0 {
		return Chart{Candles: cs, PatternEnd: len(cs)}
	}

	out := make([]candle.Candle, 0, n+len(cs))
	out = append(out, b.ContextWalk(cs[0].Open, n)...)
	out = append(out, cs...)
	return Chart{
		Candles:      out,
		PatternStart: n,
		PatternEnd:   n + len(cs),
	}
}

// WithContext returns the candles of Context.
func (b *Builder) WithContext(def pattern.Definition, n int) []candle.Candle {
	return b.Context(def, n).Candles
}

// ContextWalk returns n chained candles whose last close is end. Steps are U[-5,5] and wicks
// U[1,3]. The walk is built backwards from end so the join is exact.
func (b *Builder) ContextWalk(end float64, n int) []candle.Candle {
	if n <= 0 {
		return nil
	}
	out := make([]candle.Candle, n)
	price := end
	for i := n - 1; i >= 0; i-- {
		close := price
		open := close - candle.Number(b.src, -walkStep, walkStep)
		high := max(open, close) + candle.Number(b.src, contextWickL, contextWickH)
		low := min(open, close) - candle.Number(b.src, contextWickL, contextWickH)
		out[i] = candle.New(open, high, low, close)
		price = open
	}
	return Validate(out)
}
