// Package game runs prediction rounds for a player: it owns score, streak, difficulty, the
// sound flag and the high score.
package game

import (
	"errors"
	"time"

	"example.com/candle-predict/internal/candle"
	"example.com/candle-predict/internal/chart"
	"example.com/candle-predict/internal/pattern"
	"example.com/candle-predict/internal/profile"
)

var (
	ErrNoRound          = errors.New("no round in progress")
	ErrRoundMismatch    = errors.New("round is not the current round")
	ErrAlreadyResolved  = errors.New("round already resolved")
	ErrInvalidDirection = errors.New("direction must be up or down")
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidPlayer    = profile.ErrInvalidPlayer
)

// Scoring.
const (
	PointsCorrect = 10
	PointsWrong   = -5
)

// DifficultyForStreak maps a streak to the selection ceiling. Beginners start at medium.
func DifficultyForStreak(streak int) pattern.Difficulty {
	switch {
	case streak >= 10:
		return pattern.Hard
	case streak >= 5:
		return pattern.Medium
	default:
		return pattern.Medium
	}
}

// Round is one chart shown to the player and, once resolved, the answer given.
type Round struct {
	ID         string
	Definition pattern.Info
	Chart      chart.Chart
	CreatedAt  time.Time

	Prediction candle.Direction
	Correct    bool
	Points     int
	ResolvedAt time.Time
}

// Resolved reports whether a prediction was recorded.
func (r *Round) Resolved() bool {
	return !r.ResolvedAt.IsZero()
}

// RoundView is the player-facing form of a Round. The pattern is only revealed once resolved.
type RoundView struct {
	ID           string          `json:"id"`
	Candles      []candle.Candle `json:"candles"`
	PatternStart int             `json:"pattern_start"`
	PatternEnd   int             `json:"pattern_end"`
	Difficulty   int             `json:"difficulty"`
	CreatedAt    time.Time       `json:"created_at"`
	Resolved     bool            `json:"resolved"`
	Pattern      *pattern.Info   `json:"pattern,omitempty"`
	Prediction   string          `json:"prediction,omitempty"`
	Correct      *bool           `json:"correct,omitempty"`
}

// View returns the player-facing copy of r.
func (r *Round) View() RoundView {
	candles := make([]candle.Candle, len(r.Chart.Candles))
	copy(candles, r.Chart.Candles)

	v := RoundView{
		ID:           r.ID,
		Candles:      candles,
		PatternStart: r.Chart.PatternStart,
		PatternEnd:   r.Chart.PatternEnd,
		Difficulty:   int(r.Definition.Difficulty),
		CreatedAt:    r.CreatedAt,
		Resolved:     r.Resolved(),
	}
	if v.Resolved {
		info := r.Definition
		correct := r.Correct
		v.Pattern = &info
		v.Prediction = string(r.Prediction)
		v.Correct = &correct
	}
	return v
}

// Outcome is the feedback for one prediction.
type Outcome struct {
	RoundID      string                `json:"round_id"`
	Correct      bool                  `json:"correct"`
	Points       int                   `json:"points"`
	Prediction   candle.Direction      `json:"prediction"`
	Expected     candle.Direction      `json:"expected"`
	Pattern      pattern.Info          `json:"pattern"`
	Score        int                   `json:"score"`
	Streak       int                   `json:"streak"`
	Difficulty   pattern.Difficulty    `json:"difficulty"`
	HighScore    int                   `json:"high_score"`
	NewHighScore bool                  `json:"new_high_score"`
	Detections   []pattern.Detection   `json:"detections,omitempty"`
	Stats        *pattern.PatternStats `json:"stats,omitempty"`
}

// Snapshot is the full session state.
type Snapshot struct {
	ID           string             `json:"id"`
	Player       string             `json:"player"`
	Score        int                `json:"score"`
	Streak       int                `json:"streak"`
	Difficulty   pattern.Difficulty `json:"difficulty"`
	HighScore    int                `json:"high_score"`
	SoundEnabled bool               `json:"sound_enabled"`
	Round        *RoundView         `json:"round,omitempty"`
}
