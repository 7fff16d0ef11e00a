package recorder

import (
	"context"
	"time"
)

// NoopRecorder discards everything. Used when no database is configured.
type NoopRecorder struct{}

func (NoopRecorder) RecordRound(context.Context, Result) error { return nil }

func (NoopRecorder) PatternAccuracy(context.Context) ([]Accuracy, error) { return nil, nil }

func (NoopRecorder) Prune(context.Context, time.Time) (int64, error) { return 0, nil }

func (NoopRecorder) Close() error { return nil }
