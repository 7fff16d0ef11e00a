// Package recorder keeps long-lived round results for per-pattern analytics.
package recorder

import (
	"context"
	"time"
)

// Result is one resolved round.
type Result struct {
	RoundID    string
	SessionID  string
	Player     string
	Pattern    string
	Difficulty int
	Expected   string
	Prediction string
	Correct    bool
	Points     int
	Score      int
	ResolvedAt time.Time
}

// Accuracy aggregates the results of one pattern.
type Accuracy struct {
	Pattern  string  `json:"pattern"`
	Rounds   int     `json:"rounds"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"` // Correct / Rounds, 0 when no rounds
}

// Recorder persists round results.
type Recorder interface {
	RecordRound(ctx context.Context, r Result) error
	PatternAccuracy(ctx context.Context) ([]Accuracy, error)
	// Prune deletes results resolved before the cutoff and returns how many were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
	Close() error
}
