package pattern

import (
	"github.com/rs/zerolog"

	"example.com/candle-predict/internal/candle"
)

// Selection weights over a single draw r in [0,1).
const (
	engulfingCutoff = 0.05
	easyCutoff      = 0.40
	mediumCutoff    = 0.75
)

// EngulfingIDs are the patterns held to a 5% share of the draws.
var EngulfingIDs = []PatternType{PatternBullishEngulfing, PatternBearishEngulfing}

func isEngulfing(id PatternType) bool {
	for _, e := range EngulfingIDs {
		if id == e {
			return true
		}
	}
	return false
}

// Selector picks a pattern for a round with difficulty-tiered weights.
type Selector struct {
	catalog *Catalog
	src     candle.Source
	logger  zerolog.Logger
}

// NewSelector creates a selector. nil catalog and source fall back to the defaults.
func NewSelector(catalog *Catalog, src candle.Source, logger zerolog.Logger) *Selector {
	if catalog == nil {
		catalog = Default()
	}
	if src == nil {
		src = candle.Global()
	}
	return &Selector{
		catalog: catalog,
		src:     src,
		logger:  logger.With().Str("component", "selector").Logger(),
	}
}

// Catalog returns the catalog the selector draws from.
func (s *Selector) Catalog() *Catalog {
	return s.catalog
}

// Select draws one definition with Difficulty <= ceiling. Ceilings outside 1..3 are clamped.
// An empty catalog yields the zero Definition.
//
// Engulfing patterns take 5% of the draws, then easy, medium and hard non-engulfing patterns take
// 35%, 35% and 25%. A tier with no eligible pattern falls through to the next, and a uniform pick
// over every non-engulfing pattern closes the cascade.
func (s *Selector) Select(ceiling Difficulty) Definition {
	ceiling = ceiling.Clamp()
	available := s.catalog.ByDifficulty(ceiling)

	var engulfing, rest []Definition
	for _, d := range available {
		if isEngulfing(d.ID) {
			engulfing = append(engulfing, d)
		} else {
			rest = append(rest, d)
		}
	}

	if len(available) == 0 {
		s.logger.Warn().Int("ceiling", int(ceiling)).Msg("no pattern available")
		return Definition{}
	}
	if len(rest) == 0 {
		return s.pick(available, "fallback")
	}

	var tiers [Hard + 1][]Definition
	for _, d := range rest {
		tier := d.Difficulty.Clamp()
		tiers[tier] = append(tiers[tier], d)
	}

	r := s.src.Float64()
	switch {
	case r < engulfingCutoff && len(engulfing) > 0:
		return s.pick(engulfing, "engulfing")
	case r < easyCutoff && len(tiers[Easy]) > 0:
		return s.pick(tiers[Easy], "easy")
	case r < mediumCutoff && len(tiers[Medium]) > 0:
		return s.pick(tiers[Medium], "medium")
	case len(tiers[Hard]) > 0:
		return s.pick(tiers[Hard], "hard")
	}
	return s.pick(rest, "fallback")
}

func (s *Selector) pick(defs []Definition, branch string) Definition {
	i := int(s.src.Float64() * float64(len(defs)))
	if i >= len(defs) {
		i = len(defs) - 1
	}
	d := defs[i]
	s.logger.Debug().
		Str("branch", branch).
		Str("pattern", string(d.ID)).
		Msg("selected pattern")
	return d
}
