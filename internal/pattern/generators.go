package pattern

import "example.com/candle-predict/internal/candle"

// Every generator builds its candles through candle.New and draws prices through candle.Number,
// so the results are always valid and rounded to cents. Structural relations (containment,
// penetration past the midpoint) hold by construction.

func generateDoji(src candle.Source) []candle.Candle {
	base := candle.Number(src, 50, 200)
	shadow := candle.Number(src, 5, 15)

	return []candle.Candle{
		candle.New(base, base+shadow, base-shadow, base+candle.Number(src, -0.5, 0.5)),
	}
}

func generateHammer(src candle.Source) []candle.Candle {
	base := candle.Number(src, 50, 200)
	body := candle.Number(src, 1, 3)
	lowerShadow := candle.Number(src, 10, 20)
	upperShadow := candle.Number(src, 0, 1)

	return []candle.Candle{
		candle.New(base, base+body+upperShadow, base-lowerShadow, base+body),
	}
}

// generateShootingStar measures the lower shadow from the close, so every star keeps a wick
// of U[0,1] below its body.
func generateShootingStar(src candle.Source) []candle.Candle {
	base := candle.Number(src, 50, 200)
	body := candle.Number(src, 1, 3)
	upperShadow := candle.Number(src, 10, 20)
	lowerShadow := candle.Number(src, 0, 1)

	return []candle.Candle{
		candle.New(base, base+upperShadow, base-lowerShadow-body, base-body),
	}
}

func generateSpinningTop(src candle.Source) []candle.Candle {
	base := candle.Number(src, 50, 200)
	body := candle.Number(src, 1, 2)
	upperShadow := candle.Number(src, 5, 10)
	lowerShadow := candle.Number(src, 5, 10)

	return []candle.Candle{
		candle.New(base, base+body+upperShadow, base-lowerShadow, base+body),
	}
}

func generateBullishEngulfing(src candle.Source) []candle.Candle {
	base := candle.Number(src, 50, 200)
	first := candle.Number(src, 3, 7)
	second := candle.Number(src, first+2, first+8)

	return []candle.Candle{
		candle.New(base+first, base+first+candle.Number(src, 1, 3), base-candle.Number(src, 1, 3), base),
		candle.New(base-1, base+second+candle.Number(src, 1, 3), base-candle.Number(src, 1, 3)-1, base+second),
	}
}

func generateBearishEngulfing(src candle.Source) []candle.Candle {
	base := candle.Number(src, 50, 200)
	first := candle.Number(src, 3, 7)
	second := candle.Number(src, first+2, first+8)

	return []candle.Candle{
		candle.New(base, base+candle.Number(src, 1, 3), base-candle.Number(src, 1, 3), base+first),
		candle.New(base+first+1, base+first+candle.Number(src, 1, 3)+1, base-candle.Number(src, 1, 3)-second, base-second),
	}
}

func generateBullishHarami(src candle.Source) []candle.Candle {
	base := candle.Number(src, 60, 180)
	first := candle.Number(src, 10, 15)
	second := candle.Number(src, 2, 4)
	open := base + first/3

	return []candle.Candle{
		candle.New(base+first, base+first+candle.Number(src, 1, 3), base-candle.Number(src, 1, 3), base),
		candle.New(open, open+candle.Number(src, 0, 1), open-candle.Number(src, 0, 1), open+second),
	}
}

func generateBearishHarami(src candle.Source) []candle.Candle {
	base := candle.Number(src, 60, 180)
	first := candle.Number(src, 10, 15)
	second := candle.Number(src, 2, 4)
	open := base + 2*first/3

	return []candle.Candle{
		candle.New(base, base+candle.Number(src, 1, 3), base-candle.Number(src, 1, 3), base+first),
		candle.New(open, open+candle.Number(src, 0, 1), open-candle.Number(src, 0, 1), open-second),
	}
}

func generatePiercingLine(src candle.Source) []candle.Candle {
	base := candle.Number(src, 60, 180)
	first := candle.Number(src, 8, 12)
	second := candle.Number(src, first/2+1, first-1)

	return []candle.Candle{
		candle.New(base+first, base+first+candle.Number(src, 1, 3), base-candle.Number(src, 1, 3), base),
		candle.New(base-candle.Number(src, 1, 3), base+second+candle.Number(src, 1, 3), base-candle.Number(src, 3, 6), base+second),
	}
}

func generateDarkCloudCover(src candle.Source) []candle.Candle {
	base := candle.Number(src, 60, 180)
	first := candle.Number(src, 8, 12)
	second := candle.Number(src, first/2+1, first-1)

	return []candle.Candle{
		candle.New(base, base+candle.Number(src, 1, 3), base-candle.Number(src, 1, 3), base+first),
		candle.New(
			base+first+candle.Number(src, 1, 3),
			base+first+candle.Number(src, 3, 6),
			base+first-second-candle.Number(src, 1, 3),
			base+first-second,
		),
	}
}

func generateMorningStar(src candle.Source) []candle.Candle {
	base := candle.Number(src, 50, 200)
	first := candle.Number(src, 8, 15)
	third := candle.Number(src, 5, 12)

	return []candle.Candle{
		candle.New(base+first, base+first+candle.Number(src, 1, 3), base+candle.Number(src, 0, 2), base),
		candle.New(base-candle.Number(src, 1, 3), base+candle.Number(src, 1, 3), base-candle.Number(src, 1, 3), base-candle.Number(src, -1, 1)),
		candle.New(base, base+third+candle.Number(src, 1, 3), base-candle.Number(src, 0, 2), base+third),
	}
}

func generateEveningStar(src candle.Source) []candle.Candle {
	base := candle.Number(src, 50, 200)
	first := candle.Number(src, 8, 15)
	third := candle.Number(src, 5, 12)
	top := base + first

	return []candle.Candle{
		candle.New(base, top+candle.Number(src, 1, 3), base-candle.Number(src, 0, 2), top),
		candle.New(top+candle.Number(src, 1, 3), top+candle.Number(src, 3, 5), top+candle.Number(src, 0, 2), top+candle.Number(src, 0, 2)),
		candle.New(top, top+candle.Number(src, 0, 2), base-third-candle.Number(src, 0, 2), base-third),
	}
}

// generateThreeWhiteSoldiers chains three bullish candles, each opening at the previous close.
func generateThreeWhiteSoldiers(src candle.Source) []candle.Candle {
	price := candle.Number(src, 50, 180)
	candles := make([]candle.Candle, 0, 3)

	for i := 0; i < 3; i++ {
		body := candle.Number(src, 5, 10)
		open := price
		close := open + body
		candles = append(candles, candle.New(open, close+candle.Number(src, 0, 2), open-candle.Number(src, 0, 2), close))
		price = close
	}
	return candles
}

// generateThreeBlackCrows chains three bearish candles, each opening at the previous close.
func generateThreeBlackCrows(src candle.Source) []candle.Candle {
	price := candle.Number(src, 80, 200)
	candles := make([]candle.Candle, 0, 3)

	for i := 0; i < 3; i++ {
		body := candle.Number(src, 5, 10)
		open := price
		close := open - body
		candles = append(candles, candle.New(open, open+candle.Number(src, 0, 2), close-candle.Number(src, 0, 2), close))
		price = close
	}
	return candles
}
