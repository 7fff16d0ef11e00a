package game

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"example.com/candle-predict/internal/candle"
	"example.com/candle-predict/internal/pattern"
)

// Entry is one resolved round as kept in history.
type Entry struct {
	RoundID     string              `json:"round_id"`
	SessionID   string              `json:"session_id"`
	Player      string              `json:"player"`
	Pattern     pattern.PatternType `json:"pattern"`
	PatternName string              `json:"pattern_name"`
	Difficulty  pattern.Difficulty  `json:"difficulty"`
	Expected    candle.Direction    `json:"expected"`
	Prediction  candle.Direction    `json:"prediction"`
	Correct     bool                `json:"correct"`
	Points      int                 `json:"points"`
	Score       int                 `json:"score"`
	Streak      int                 `json:"streak"`
	ResolvedAt  time.Time           `json:"resolved_at"`
}

// History stores resolved rounds.
// Storage strategy: memory-first, optional persistence via a JSONL file.
type History struct {
	mu          sync.RWMutex
	entries     []Entry
	maxSize     int
	filePath    string // Empty means memory-only mode
	persistMode bool
	file        *os.File
	fileLines   int // lines in the file, drives compaction
	logger      zerolog.Logger
}

// DefaultHistoryMax is the default maximum number of rounds to keep.
const DefaultHistoryMax = 1000

// NewHistory creates a history store.
// filePath: empty string for memory-only mode, non-empty to enable persistence.
func NewHistory(filePath string, maxSize int, logger zerolog.Logger) (*History, error) {
	logger = logger.With().Str("component", "history").Logger()

	if maxSize <= 0 {
		logger.Warn().Int("max", maxSize).Int("default", DefaultHistoryMax).Msg("invalid history max, using default")
		maxSize = DefaultHistoryMax
	}

	h := &History{
		entries:     make([]Entry, 0, maxSize),
		maxSize:     maxSize,
		filePath:    filePath,
		persistMode: filePath != "",
		logger:      logger,
	}

	if h.persistMode {
		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			return nil, err
		}

		if err := h.load(); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", filePath).Msg("history load failed")
		}

		f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		h.file = f
	}

	return h, nil
}

// load reads existing entries from file, skipping malformed lines.
func (h *History) load() error {
	f, err := os.Open(h.filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var entries []Entry
	lines := 0

	for scanner.Scan() {
		lines++
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}

	if len(entries) > h.maxSize {
		entries = entries[len(entries)-h.maxSize:]
	}

	h.entries = entries
	h.fileLines = lines
	return scanner.Err()
}

// Add appends an entry. With persistence enabled the line is written synchronously.
func (h *History) Add(e Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, e)
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[len(h.entries)-h.maxSize:]
	}

	if h.persistMode && h.file != nil {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := h.file.Write(append(data, '\n')); err != nil {
			return err
		}
		h.fileLines++

		// checked every 100 lines; the file may grow to twice the memory window
		if h.fileLines%100 == 0 && h.fileLines > h.maxSize*2 {
			oldLines := h.fileLines
			if err := h.compact(); err != nil {
				h.logger.Warn().Err(err).Msg("history compact failed")
			} else {
				h.logger.Info().Int("from", oldLines).Int("to", h.fileLines).Msg("history compacted")
			}
		}
	}

	return nil
}

// Recent returns up to limit entries, newest first. limit <= 0 returns everything.
func (h *History) Recent(limit int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 || limit > len(h.entries) {
		limit = len(h.entries)
	}

	start := len(h.entries) - limit
	result := make([]Entry, limit)
	copy(result, h.entries[start:])

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// QueryOptions filters History.Query.
type QueryOptions struct {
	Player  string
	Pattern pattern.PatternType
	Correct *bool
	Limit   int
	Since   time.Time
}

// Query returns matching entries, newest first.
func (h *History) Query(opts QueryOptions) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var result []Entry
	for i := len(h.entries) - 1; i >= 0; i-- {
		e := h.entries[i]

		if opts.Player != "" && e.Player != opts.Player {
			continue
		}
		if opts.Pattern != "" && e.Pattern != opts.Pattern {
			continue
		}
		if opts.Correct != nil && e.Correct != *opts.Correct {
			continue
		}
		if !opts.Since.IsZero() && e.ResolvedAt.Before(opts.Since) {
			continue
		}

		result = append(result, e)
		if opts.Limit > 0 && len(result) >= opts.Limit {
			break
		}
	}
	return result
}

// IsPersistent returns whether persistence is enabled.
func (h *History) IsPersistent() bool {
	return h.persistMode
}

// Count returns the number of entries in memory.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Close closes the history file if open.
func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file != nil {
		err := h.file.Close()
		h.file = nil
		return err
	}
	return nil
}

// compact rewrites the file with only the in-memory entries. Caller holds h.mu.
func (h *History) compact() error {
	if !h.persistMode || h.filePath == "" {
		return nil
	}

	oldFile := h.file
	h.file = nil

	tmp := h.filePath + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		h.file = oldFile
		return err
	}

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	for _, e := range h.entries {
		if err := enc.Encode(e); err != nil {
			bw.Flush()
			f.Close()
			os.Remove(tmp)
			h.file = oldFile
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		h.file = oldFile
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		h.file = oldFile
		return err
	}

	if oldFile != nil {
		oldFile.Close()
	}

	if err := os.Rename(tmp, h.filePath); err != nil {
		os.Remove(tmp)
		if reopened, openErr := os.OpenFile(h.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); openErr == nil {
			h.file = reopened
		}
		return err
	}

	reopened, err := os.OpenFile(h.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	h.file = reopened
	h.fileLines = len(h.entries)
	return nil
}
