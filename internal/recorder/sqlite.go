package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists round results to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the stats endpoint read while rounds are written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{
		db:     db,
		logger: logger.With().Str("component", "recorder").Logger(),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			round_id    TEXT NOT NULL UNIQUE,
			session_id  TEXT,
			player      TEXT,
			pattern     TEXT NOT NULL,
			difficulty  INTEGER,
			expected    TEXT,
			prediction  TEXT,
			correct     INTEGER NOT NULL,
			points      INTEGER,
			score       INTEGER,
			resolved_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_pattern ON rounds(pattern)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_ts ON rounds(resolved_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRound(ctx context.Context, res Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	resolved := res.ResolvedAt
	if resolved.IsZero() {
		resolved = time.Now()
	}
	correct := 0
	if res.Correct {
		correct = 1
	}

	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO rounds
		(round_id, session_id, player, pattern, difficulty, expected, prediction,
		 correct, points, score, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RoundID, res.SessionID, res.Player, res.Pattern, res.Difficulty,
		res.Expected, res.Prediction, correct, res.Points, res.Score, resolved.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

// PatternAccuracy returns per-pattern totals ordered by pattern id.
func (r *SQLiteRecorder) PatternAccuracy(ctx context.Context) ([]Accuracy, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT pattern, COUNT(*), SUM(correct)
		FROM rounds GROUP BY pattern ORDER BY pattern`)
	if err != nil {
		return nil, fmt.Errorf("query accuracy: %w", err)
	}
	defer rows.Close()

	var out []Accuracy
	for rows.Next() {
		var a Accuracy
		if err := rows.Scan(&a.Pattern, &a.Rounds, &a.Correct); err != nil {
			return nil, fmt.Errorf("scan accuracy: %w", err)
		}
		if a.Rounds > 0 {
			a.Accuracy = float64(a.Correct) / float64(a.Rounds)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Prune(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM rounds WHERE resolved_at < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune rounds: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
