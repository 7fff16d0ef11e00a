package pattern

import (
	talibcdl "github.com/iwat/talib-cdl-go"

	"example.com/candle-predict/internal/candle"
)

// Patterns only the talib detector reports. They never appear in the catalog.
const (
	PatternDojiStar        PatternType = "dojiStar"
	PatternThreeInside     PatternType = "threeInside"
	PatternThreeOutside    PatternType = "threeOutside"
	PatternBeltHold        PatternType = "beltHold"
	PatternClosingMarubozu PatternType = "closingMarubozu"
)

// Detection is one pattern recognized at the end of a candle window.
type Detection struct {
	Type       PatternType `json:"type"`
	Direction  Direction   `json:"direction"`
	Confidence int         `json:"confidence"`
	Source     string      `json:"source"` // "talib" or "custom"
}

// Recognizer checks generated candles against the catalog shapes and runs the classic
// talib candlestick functions over a window.
type Recognizer struct {
	// StarPenetration is the talib penetration factor for the star patterns.
	StarPenetration float64
}

// NewRecognizer creates a recognizer with the default star penetration of 0.3.
func NewRecognizer() *Recognizer {
	return &Recognizer{StarPenetration: 0.3}
}

// Check reports whether candles start with the structure def describes.
func (r *Recognizer) Check(def Definition, candles []candle.Candle) bool {
	return Matches(def.ID, candles)
}

// toSeries converts candles to the talib-cdl-go input, oldest first.
func toSeries(candles []candle.Candle) talibcdl.SimpleSeries {
	n := len(candles)
	series := talibcdl.SimpleSeries{
		Opens:  make([]float64, n),
		Highs:  make([]float64, n),
		Lows:   make([]float64, n),
		Closes: make([]float64, n),
	}
	for i, c := range candles {
		series.Opens[i] = c.Open
		series.Highs[i] = c.High
		series.Lows[i] = c.Low
		series.Closes[i] = c.Close
	}
	return series
}

// Detect lists the patterns that complete on the last candle of the window. Pass the candles
// before the pattern too: the talib functions compare against them.
func (r *Recognizer) Detect(candles []candle.Candle) []Detection {
	if len(candles) == 0 {
		return nil
	}

	var found []Detection
	found = append(found, r.detectTalib(candles)...)
	found = append(found, detectShapes(candles)...)
	return found
}

// detectShapes runs every catalog shape against the tail of the window.
func detectShapes(candles []candle.Candle) []Detection {
	var found []Detection
	for _, def := range Default().All() {
		size := Size(def.ID)
		if len(candles) < size {
			continue
		}
		if !Matches(def.ID, candles[len(candles)-size:]) {
			continue
		}
		dir := DirectionBullish
		if def.Expected == candle.Down {
			dir = DirectionBearish
		}
		if def.ID == PatternDoji || def.ID == PatternSpinningTop {
			dir = DirectionNeutral
		}
		found = append(found, Detection{Type: def.ID, Direction: dir, Confidence: 70, Source: "custom"})
	}
	return found
}

type talibFunc struct {
	id  PatternType
	run func(talibcdl.SimpleSeries) []int
	dir Direction // empty: signed by the talib result
}

func (r *Recognizer) talibFuncs() []talibFunc {
	pen := r.StarPenetration
	return []talibFunc{
		{PatternDoji, func(s talibcdl.SimpleSeries) []int { return talibcdl.Doji(s) }, DirectionNeutral},
		{PatternDojiStar, func(s talibcdl.SimpleSeries) []int { return talibcdl.DojiStar(s) }, ""},
		{PatternEveningStar, func(s talibcdl.SimpleSeries) []int { return talibcdl.EveningStar(s, pen) }, DirectionBearish},
		{PatternPiercingLine, func(s talibcdl.SimpleSeries) []int { return talibcdl.Piercing(s) }, DirectionBullish},
		{PatternThreeWhiteSoldiers, func(s talibcdl.SimpleSeries) []int { return talibcdl.ThreeWhiteSoldiers(s) }, DirectionBullish},
		{PatternThreeBlackCrows, func(s talibcdl.SimpleSeries) []int { return talibcdl.ThreeBlackCrows(s) }, DirectionBearish},
		{PatternThreeInside, func(s talibcdl.SimpleSeries) []int { return talibcdl.ThreeInside(s) }, ""},
		{PatternThreeOutside, func(s talibcdl.SimpleSeries) []int { return talibcdl.ThreeOutside(s) }, ""},
		{PatternBeltHold, func(s talibcdl.SimpleSeries) []int { return talibcdl.BeltHold(s) }, ""},
		{PatternClosingMarubozu, func(s talibcdl.SimpleSeries) []int { return talibcdl.ClosingMarubozu(s) }, ""},
	}
}

// TalibLookback is the shortest window every talib function evaluates. The talib averages
// look 10 candles back and three black crows needs 3 more before its own candles.
const TalibLookback = 14

// withHistory prefixes windows shorter than TalibLookback with dojis at the first open. Each
// doji spans the mean range of the window so the talib averages stay on the window's scale.
func withHistory(candles []candle.Candle) []candle.Candle {
	missing := TalibLookback - len(candles)
	if missing <= 0 {
		return candles
	}
	span := 0.0
	for _, c := range candles {
		span += c.High - c.Low
	}
	span /= float64(len(candles))
	if span <= 0 {
		span = 1
	}

	p := candles[0].Open
	out := make([]candle.Candle, 0, TalibLookback)
	for range missing {
		out = append(out, candle.New(p, p+span/2, p-span/2, p))
	}
	return append(out, candles...)
}

// detectTalib runs the talib functions over the window padded to TalibLookback.
func (r *Recognizer) detectTalib(candles []candle.Candle) []Detection {
	candles = withHistory(candles)
	series := toSeries(candles)
	lastIdx := len(candles) - 1
	var found []Detection

	for _, f := range r.talibFuncs() {
		results := f.run(series)
		if len(results) <= lastIdx || results[lastIdx] == 0 {
			continue
		}
		dir := f.dir
		if dir == "" {
			dir = DirectionBullish
			if results[lastIdx] < 0 {
				dir = DirectionBearish
			}
		}
		found = append(found, Detection{
			Type:       f.id,
			Direction:  dir,
			Confidence: absInt(results[lastIdx]),
			Source:     "talib",
		})
	}
	return found
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
