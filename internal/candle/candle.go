// Package candle provides the OHLC candle value used by the pattern generators and chart builders.
package candle

import (
	"encoding/json"
	"math"
)

// Direction is the up/down tag of a candle or a price move.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Valid reports whether d is Up or Down.
func (d Direction) Valid() bool {
	return d == Up || d == Down
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Up {
		return Down
	}
	return Up
}

// Candle is a single immutable OHLC price unit.
// Build it with New so that High and Low always bound the body.
type Candle struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// New returns a candle whose high and low are widened to cover open and close.
// Any finite input produces a valid candle.
func New(open, high, low, close float64) Candle {
	return Candle{
		Open:  open,
		High:  math.Max(high, math.Max(open, close)),
		Low:   math.Min(low, math.Min(open, close)),
		Close: close,
	}
}

// Direction is Up when the candle closed at or above its open.
func (c Candle) Direction() Direction {
	if c.Close >= c.Open {
		return Up
	}
	return Down
}

// Color is the display color of the candle: "green" for up, "red" for down.
func (c Candle) Color() string {
	if c.Direction() == Up {
		return "green"
	}
	return "red"
}

// Body returns the absolute size of the candle body (|Close - Open|).
func (c Candle) Body() float64 {
	return math.Abs(c.Close - c.Open)
}

// BodyHigh returns the top of the body.
func (c Candle) BodyHigh() float64 {
	return math.Max(c.Open, c.Close)
}

// BodyLow returns the bottom of the body.
func (c Candle) BodyLow() float64 {
	return math.Min(c.Open, c.Close)
}

// Midpoint returns the middle of the body.
func (c Candle) Midpoint() float64 {
	return (c.Open + c.Close) / 2
}

// UpperShadow returns the length of the upper shadow.
func (c Candle) UpperShadow() float64 {
	return c.High - c.BodyHigh()
}

// LowerShadow returns the length of the lower shadow.
func (c Candle) LowerShadow() float64 {
	return c.BodyLow() - c.Low
}

// IsBullish returns true if the candle is bullish (Close > Open).
func (c Candle) IsBullish() bool {
	return c.Close > c.Open
}

// IsBearish returns true if the candle is bearish (Close < Open).
func (c Candle) IsBearish() bool {
	return c.Close < c.Open
}

// Range returns the total range of the candle (High - Low).
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// IsFinite reports whether all four prices are finite numbers.
func (c Candle) IsFinite() bool {
	for _, v := range [...]float64{c.Open, c.High, c.Low, c.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IsValid reports whether the high/low bounds hold and the range is non-zero.
func (c Candle) IsValid() bool {
	return c.IsFinite() &&
		c.High >= c.BodyHigh() &&
		c.Low <= c.BodyLow() &&
		c.High != c.Low
}

type wireCandle struct {
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Direction Direction `json:"direction"`
	Color     string    `json:"color"`
}

// MarshalJSON includes the derived direction and color.
func (c Candle) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCandle{
		Open:      c.Open,
		High:      c.High,
		Low:       c.Low,
		Close:     c.Close,
		Direction: c.Direction(),
		Color:     c.Color(),
	})
}

// UnmarshalJSON reads the four prices and ignores the derived fields.
func (c *Candle) UnmarshalJSON(data []byte) error {
	var w wireCandle
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = New(w.Open, w.High, w.Low, w.Close)
	return nil
}
