package pattern

import "example.com/candle-predict/internal/candle"

// eps absorbs float noise from sums of cent-rounded prices.
const eps = 1e-6

// shape is the structural test of one catalog pattern over exactly size candles.
type shape struct {
	size  int
	match func(cs []candle.Candle) bool
}

var shapes = map[PatternType]shape{
	PatternDoji:               {1, isDojiShape},
	PatternHammer:             {1, isHammerShape},
	PatternShootingStar:       {1, isShootingStarShape},
	PatternSpinningTop:        {1, isSpinningTopShape},
	PatternBullishEngulfing:   {2, isBullishEngulfing},
	PatternBearishEngulfing:   {2, isBearishEngulfing},
	PatternBullishHarami:      {2, isBullishHarami},
	PatternBearishHarami:      {2, isBearishHarami},
	PatternPiercingLine:       {2, isPiercingLine},
	PatternDarkCloudCover:     {2, isDarkCloudCover},
	PatternMorningStar:        {3, isMorningStar},
	PatternEveningStar:        {3, isEveningStar},
	PatternThreeWhiteSoldiers: {3, isThreeWhiteSoldiers},
	PatternThreeBlackCrows:    {3, isThreeBlackCrows},
}

// Size returns how many candles the pattern spans, or 0 for unknown ids.
func Size(id PatternType) int {
	return shapes[id].size
}

// Matches reports whether the leading candles of cs form the pattern id.
func Matches(id PatternType, cs []candle.Candle) bool {
	s, ok := shapes[id]
	if !ok || len(cs) < s.size {
		return false
	}
	return s.match(cs[:s.size])
}

// isDoji checks for a very small body. Zero-range candles never count.
func isDoji(c candle.Candle) bool {
	if c.Range() == 0 {
		return false
	}
	return c.Body()/c.Range() < 0.1
}

func isDojiShape(cs []candle.Candle) bool {
	return isDoji(cs[0])
}

// Lower shadow at least twice the body, upper shadow no longer than the body.
func isHammerShape(cs []candle.Candle) bool {
	c := cs[0]
	body := c.Body()
	if body == 0 || !c.IsBullish() {
		return false
	}
	return c.LowerShadow() >= body*2-eps && c.UpperShadow() <= body+eps
}

func isShootingStarShape(cs []candle.Candle) bool {
	c := cs[0]
	body := c.Body()
	if body == 0 || !c.IsBearish() {
		return false
	}
	return c.UpperShadow() >= body*2-eps && c.LowerShadow() <= body+eps
}

// Small real body with both shadows longer than it.
func isSpinningTopShape(cs []candle.Candle) bool {
	c := cs[0]
	body := c.Body()
	if body == 0 || c.Range() == 0 {
		return false
	}
	return body <= c.Range()*0.3 && c.UpperShadow() >= body && c.LowerShadow() >= body
}

// bodyInside reports strict containment of inner's body in outer's body.
func bodyInside(inner, outer candle.Candle) bool {
	return inner.BodyLow() > outer.BodyLow() && inner.BodyHigh() < outer.BodyHigh()
}

func isBullishEngulfing(cs []candle.Candle) bool {
	prev, curr := cs[0], cs[1]
	return prev.IsBearish() && curr.IsBullish() && bodyInside(prev, curr)
}

func isBearishEngulfing(cs []candle.Candle) bool {
	prev, curr := cs[0], cs[1]
	return prev.IsBullish() && curr.IsBearish() && bodyInside(prev, curr)
}

func isBullishHarami(cs []candle.Candle) bool {
	prev, curr := cs[0], cs[1]
	return prev.IsBearish() && curr.IsBullish() && bodyInside(curr, prev)
}

func isBearishHarami(cs []candle.Candle) bool {
	prev, curr := cs[0], cs[1]
	return prev.IsBullish() && curr.IsBearish() && bodyInside(curr, prev)
}

// Opens below the prior close and closes above the prior body midpoint, still inside the body.
func isPiercingLine(cs []candle.Candle) bool {
	prev, curr := cs[0], cs[1]
	if !prev.IsBearish() || !curr.IsBullish() {
		return false
	}
	mid := (prev.Open + prev.Close) / 2
	return curr.Open < prev.Close && curr.Close > mid && curr.Close < prev.Open
}

func isDarkCloudCover(cs []candle.Candle) bool {
	prev, curr := cs[0], cs[1]
	if !prev.IsBullish() || !curr.IsBearish() {
		return false
	}
	mid := (prev.Open + prev.Close) / 2
	return curr.Open > prev.Close && curr.Close < mid && curr.Close > prev.Open
}

// Large bearish candle, a star at most half its body, then a bullish close above the star.
func isMorningStar(cs []candle.Candle) bool {
	first, star, third := cs[0], cs[1], cs[2]
	if !first.IsBearish() || !third.IsBullish() {
		return false
	}
	if star.Body() > first.Body()*0.5+eps {
		return false
	}
	return third.Close > star.BodyHigh()
}

func isEveningStar(cs []candle.Candle) bool {
	first, star, third := cs[0], cs[1], cs[2]
	if !first.IsBullish() || !third.IsBearish() {
		return false
	}
	if star.Body() > first.Body()*0.5+eps {
		return false
	}
	return third.Close < star.BodyLow()
}

// Each candle bullish, opening inside the previous body and closing higher.
func isThreeWhiteSoldiers(cs []candle.Candle) bool {
	for i, c := range cs {
		if !c.IsBullish() {
			return false
		}
		if i == 0 {
			continue
		}
		prev := cs[i-1]
		if c.Close <= prev.Close || c.Open < prev.BodyLow()-eps || c.Open > prev.BodyHigh()+eps {
			return false
		}
	}
	return true
}

func isThreeBlackCrows(cs []candle.Candle) bool {
	for i, c := range cs {
		if !c.IsBearish() {
			return false
		}
		if i == 0 {
			continue
		}
		prev := cs[i-1]
		if c.Close >= prev.Close || c.Open < prev.BodyLow()-eps || c.Open > prev.BodyHigh()+eps {
			return false
		}
	}
	return true
}
