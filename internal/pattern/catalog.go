package pattern

import (
	"sync"

	"example.com/candle-predict/internal/candle"
)

// Catalog is an ordered, read-only list of pattern definitions.
type Catalog struct {
	defs  []Definition
	index map[PatternType]int
}

// NewCatalog builds a catalog from defs. Later duplicates of an id are ignored.
func NewCatalog(defs []Definition) *Catalog {
	c := &Catalog{index: make(map[PatternType]int, len(defs))}
	for _, d := range defs {
		if _, dup := c.index[d.ID]; dup {
			continue
		}
		c.index[d.ID] = len(c.defs)
		c.defs = append(c.defs, d)
	}
	return c
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog of 14 patterns.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = NewCatalog(builtin())
	})
	return defaultCatalog
}

// All returns a copy of every definition in catalog order.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// ByDifficulty returns the definitions with Difficulty <= max, in catalog order.
func (c *Catalog) ByDifficulty(max Difficulty) []Definition {
	var out []Definition
	for _, d := range c.defs {
		if d.Difficulty <= max {
			out = append(out, d)
		}
	}
	return out
}

// Lookup finds a definition by id.
func (c *Catalog) Lookup(id PatternType) (Definition, bool) {
	i, ok := c.index[id]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// Infos returns the presentation view of defs.
func Infos(defs []Definition) []Info {
	out := make([]Info, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Info())
	}
	return out
}

func builtin() []Definition {
	return []Definition{
		{
			ID:          PatternDoji,
			Name:        "Doji",
			Description: "Open and close prices are very close, showing market indecision",
			Expected:    candle.Up,
			Difficulty:  Easy,
			Generate:    generateDoji,
		},
		{
			ID:          PatternHammer,
			Name:        "Hammer",
			Description: "Small body with a long lower shadow, typically a bullish reversal signal",
			Expected:    candle.Up,
			Difficulty:  Easy,
			Generate:    generateHammer,
		},
		{
			ID:          PatternShootingStar,
			Name:        "Shooting Star",
			Description: "Small body with a long upper shadow, typically a bearish reversal signal",
			Expected:    candle.Down,
			Difficulty:  Easy,
			Generate:    generateShootingStar,
		},
		{
			ID:          PatternBullishEngulfing,
			Name:        "Bullish Engulfing",
			Description: "A bullish candle that completely engulfs the previous bearish candle",
			Expected:    candle.Up,
			Difficulty:  Medium,
			Generate:    generateBullishEngulfing,
		},
		{
			ID:          PatternBearishEngulfing,
			Name:        "Bearish Engulfing",
			Description: "A bearish candle that completely engulfs the previous bullish candle",
			Expected:    candle.Down,
			Difficulty:  Medium,
			Generate:    generateBearishEngulfing,
		},
		{
			ID:          PatternMorningStar,
			Name:        "Morning Star",
			Description: "A three-candle pattern indicating a potential bullish reversal",
			Expected:    candle.Up,
			Difficulty:  Hard,
			Generate:    generateMorningStar,
		},
		{
			ID:          PatternEveningStar,
			Name:        "Evening Star",
			Description: "A three-candle pattern indicating a potential bearish reversal",
			Expected:    candle.Down,
			Difficulty:  Hard,
			Generate:    generateEveningStar,
		},
		{
			ID:          PatternThreeWhiteSoldiers,
			Name:        "Three White Soldiers",
			Description: "Three consecutive bullish candles, each closing higher than the previous, indicating strong buying pressure",
			Expected:    candle.Up,
			Difficulty:  Hard,
			Generate:    generateThreeWhiteSoldiers,
		},
		{
			ID:          PatternThreeBlackCrows,
			Name:        "Three Black Crows",
			Description: "Three consecutive bearish candles, each closing lower than the previous, indicating strong selling pressure",
			Expected:    candle.Down,
			Difficulty:  Hard,
			Generate:    generateThreeBlackCrows,
		},
		{
			ID:          PatternBullishHarami,
			Name:        "Bullish Harami",
			Description: "A small bullish candle contained within the body of a previous larger bearish candle, indicating a potential reversal",
			Expected:    candle.Up,
			Difficulty:  Medium,
			Generate:    generateBullishHarami,
		},
		{
			ID:          PatternBearishHarami,
			Name:        "Bearish Harami",
			Description: "A small bearish candle contained within the body of a previous larger bullish candle, indicating a potential reversal",
			Expected:    candle.Down,
			Difficulty:  Medium,
			Generate:    generateBearishHarami,
		},
		{
			ID:          PatternPiercingLine,
			Name:        "Piercing Line",
			Description: "A bullish candle that closes above the midpoint of the previous bearish candle, indicating a potential reversal",
			Expected:    candle.Up,
			Difficulty:  Medium,
			Generate:    generatePiercingLine,
		},
		{
			ID:          PatternDarkCloudCover,
			Name:        "Dark Cloud Cover",
			Description: "A bearish candle that closes below the midpoint of the previous bullish candle, indicating a potential reversal",
			Expected:    candle.Down,
			Difficulty:  Medium,
			Generate:    generateDarkCloudCover,
		},
		{
			ID:          PatternSpinningTop,
			Name:        "Spinning Top",
			Description: "A candle with a small body and long upper and lower shadows, indicating indecision in the market",
			Expected:    candle.Up,
			Difficulty:  Easy,
			Generate:    generateSpinningTop,
		},
	}
}
