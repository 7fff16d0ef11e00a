// Package pattern holds the candlestick pattern catalog, the generators that synthesize each
// pattern and the weighted selector that picks one for a round.
package pattern

import "example.com/candle-predict/internal/candle"

// PatternType is the unique catalog key of a pattern.
type PatternType string

const (
	// Single-candle patterns
	PatternDoji         PatternType = "doji"
	PatternHammer       PatternType = "hammer"
	PatternShootingStar PatternType = "shootingStar"
	PatternSpinningTop  PatternType = "spinningTop"

	// Two-candle patterns
	PatternBullishEngulfing PatternType = "bullishEngulfing"
	PatternBearishEngulfing PatternType = "bearishEngulfing"
	PatternBullishHarami    PatternType = "bullishHarami"
	PatternBearishHarami    PatternType = "bearishHarami"
	PatternPiercingLine     PatternType = "piercingLine"
	PatternDarkCloudCover   PatternType = "darkCloudCover"

	// Three-candle patterns
	PatternMorningStar        PatternType = "morningstar"
	PatternEveningStar        PatternType = "eveningstar"
	PatternThreeWhiteSoldiers PatternType = "threeWhiteSoldiers"
	PatternThreeBlackCrows    PatternType = "threeBlackCrows"
)

// Difficulty is the recognition tier of a pattern.
type Difficulty int

const (
	Easy   Difficulty = 1
	Medium Difficulty = 2
	Hard   Difficulty = 3
)

// Clamp forces d into the Easy..Hard range.
func (d Difficulty) Clamp() Difficulty {
	switch {
	case d < Easy:
		return Easy
	case d > Hard:
		return Hard
	default:
		return d
	}
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

// Generator synthesizes a fresh candle sequence for one pattern.
type Generator func(src candle.Source) []candle.Candle

// Definition is one catalog entry.
type Definition struct {
	ID          PatternType
	Name        string
	Description string
	Expected    candle.Direction // the correct answer for a round showing this pattern
	Difficulty  Difficulty
	Generate    Generator
}

// Info is the presentation view of a Definition.
type Info struct {
	ID          PatternType      `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Expected    candle.Direction `json:"expected_direction"`
	Difficulty  Difficulty       `json:"difficulty"`

	// HighEfficiency marks patterns with a published efficiency rank of A or B.
	HighEfficiency bool `json:"high_efficiency,omitempty"`
}

// Info returns the metadata of d without its generator.
func (d Definition) Info() Info {
	return Info{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Expected:    d.Expected,
		Difficulty:  d.Difficulty,

		HighEfficiency: IsHighEfficiency(d.ID),
	}
}

// Direction is the bias reported by the recognizer.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)
