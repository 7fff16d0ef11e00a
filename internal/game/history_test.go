package game

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"example.com/candle-predict/internal/candle"
	"example.com/candle-predict/internal/pattern"
)

func newEntry(id, player string, pt pattern.PatternType, correct bool, at time.Time) Entry {
	return Entry{
		RoundID:    id,
		Player:     player,
		Pattern:    pt,
		Expected:   candle.Up,
		Prediction: candle.Up,
		Correct:    correct,
		ResolvedAt: at,
	}
}

func TestHistory_MemoryOnly(t *testing.T) {
	h, err := NewHistory("", 100, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}
	if h.IsPersistent() {
		t.Error("Expected memory-only mode")
	}

	now := time.Now()
	h.Add(newEntry("r1", "alice", pattern.PatternHammer, true, now))
	h.Add(newEntry("r2", "bob", pattern.PatternDoji, false, now))

	if h.Count() != 2 {
		t.Errorf("Count = %d, want 2", h.Count())
	}
	recent := h.Recent(10)
	if len(recent) != 2 || recent[0].RoundID != "r2" {
		t.Errorf("Recent = %+v, want newest first", recent)
	}
	if got := h.Recent(1); len(got) != 1 || got[0].RoundID != "r2" {
		t.Errorf("Recent(1) = %+v", got)
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h, _ := NewHistory("", 3, zerolog.Nop())
	now := time.Now()
	for i := 0; i < 5; i++ {
		h.Add(newEntry(string(rune('a'+i)), "alice", pattern.PatternHammer, true, now))
	}
	if h.Count() != 3 {
		t.Errorf("Count = %d, want 3", h.Count())
	}
	if oldest := h.Recent(0)[2].RoundID; oldest != "c" {
		t.Errorf("oldest kept = %s, want c", oldest)
	}
}

func TestHistory_Query(t *testing.T) {
	h, _ := NewHistory("", 100, zerolog.Nop())
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	h.Add(newEntry("r1", "alice", pattern.PatternHammer, true, base))
	h.Add(newEntry("r2", "bob", pattern.PatternDoji, false, base.Add(time.Minute)))
	h.Add(newEntry("r3", "alice", pattern.PatternDoji, false, base.Add(2*time.Minute)))

	yes, no := true, false
	tests := []struct {
		name string
		opts QueryOptions
		want int
	}{
		{"all", QueryOptions{}, 3},
		{"player", QueryOptions{Player: "alice"}, 2},
		{"pattern", QueryOptions{Pattern: pattern.PatternDoji}, 2},
		{"correct", QueryOptions{Correct: &yes}, 1},
		{"wrong", QueryOptions{Correct: &no}, 2},
		{"since", QueryOptions{Since: base.Add(time.Minute)}, 2},
		{"limit", QueryOptions{Limit: 1}, 1},
		{"combined", QueryOptions{Player: "alice", Pattern: pattern.PatternDoji}, 1},
		{"no match", QueryOptions{Player: "carol"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Query(tt.opts); len(got) != tt.want {
				t.Errorf("Query(%+v) = %d entries, want %d", tt.opts, len(got), tt.want)
			}
		})
	}

	if got := h.Query(QueryOptions{Limit: 1}); got[0].RoundID != "r3" {
		t.Errorf("Query newest = %s, want r3", got[0].RoundID)
	}
}

func TestHistory_Persistence(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "nested", "history.jsonl")

	h1, err := NewHistory(filePath, 100, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}
	if !h1.IsPersistent() {
		t.Error("Expected persistent mode")
	}

	at := time.Now().Truncate(time.Second)
	orig := newEntry("r1", "alice", pattern.PatternMorningStar, true, at)
	orig.Points = PointsCorrect
	if err := h1.Add(orig); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	h1.Close()

	h2, err := NewHistory(filePath, 100, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHistory (reload) failed: %v", err)
	}
	defer h2.Close()

	if h2.Count() != 1 {
		t.Fatalf("Reloaded count = %d, want 1", h2.Count())
	}
	got := h2.Recent(1)[0]
	if got.RoundID != orig.RoundID || got.Pattern != orig.Pattern || got.Points != orig.Points || !got.ResolvedAt.Equal(at) {
		t.Errorf("Reloaded entry = %+v, want %+v", got, orig)
	}
}

func TestHistory_SkipsMalformedLines(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "history.jsonl")
	content := `{"round_id":"r1","pattern":"doji"}
not json
{"round_id":"r2","pattern":"hammer"}
`
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	h, err := NewHistory(filePath, 100, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}
	defer h.Close()

	if h.Count() != 2 {
		t.Errorf("Count = %d, want 2", h.Count())
	}
}

func TestHistory_FileCompaction(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "history.jsonl")
	maxSize := 10

	h, err := NewHistory(filePath, maxSize, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}

	// compaction runs at a multiple of 100 lines once past 2*maxSize
	base := time.Now().Truncate(time.Second)
	for i := 0; i < 100; i++ {
		e := newEntry("", "alice", pattern.PatternHammer, true, base.Add(time.Duration(i)*time.Minute))
		e.Score = i
		if err := h.Add(e); err != nil {
			t.Fatalf("Add failed at %d: %v", i, err)
		}
	}
	if h.Count() != maxSize {
		t.Errorf("Memory count = %d, want %d", h.Count(), maxSize)
	}
	h.Close()

	if lines := countLines(t, filePath); lines != maxSize {
		t.Errorf("file lines after compaction = %d, want %d", lines, maxSize)
	}

	h2, err := NewHistory(filePath, maxSize, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHistory (reload) failed: %v", err)
	}
	defer h2.Close()

	recent := h2.Recent(0)
	if len(recent) != maxSize {
		t.Fatalf("Reloaded count = %d, want %d", len(recent), maxSize)
	}
	if recent[0].Score != 99 || recent[maxSize-1].Score != 90 {
		t.Errorf("kept scores %d..%d, want 99..90", recent[0].Score, recent[maxSize-1].Score)
	}
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
	}
	return n
}

func TestNewHistory_InvalidMaxSize(t *testing.T) {
	for _, size := range []int{-10, 0} {
		h, err := NewHistory("", size, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewHistory(%d) failed: %v", size, err)
		}
		if h.maxSize != DefaultHistoryMax {
			t.Errorf("NewHistory(%d).maxSize = %d, want %d", size, h.maxSize, DefaultHistoryMax)
		}
	}
}

func TestProperty_HistoryPersistenceRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	patterns := pattern.Default().All()
	players := []string{"alice", "bob", "guest"}

	properties.Property("entries survive persistence round-trip", prop.ForAll(
		func(playerIdx, patternIdx, score int, correct bool) bool {
			filePath := filepath.Join(t.TempDir(), "history.jsonl")

			h1, err := NewHistory(filePath, 100, zerolog.Nop())
			if err != nil {
				return false
			}
			def := patterns[patternIdx%len(patterns)]
			orig := Entry{
				RoundID:     "r",
				Player:      players[playerIdx%len(players)],
				Pattern:     def.ID,
				PatternName: def.Name,
				Difficulty:  def.Difficulty,
				Expected:    def.Expected,
				Prediction:  def.Expected.Opposite(),
				Correct:     correct,
				Score:       score,
				ResolvedAt:  time.Now().Truncate(time.Second),
			}
			if err := h1.Add(orig); err != nil {
				h1.Close()
				return false
			}
			h1.Close()

			h2, err := NewHistory(filePath, 100, zerolog.Nop())
			if err != nil {
				return false
			}
			defer h2.Close()

			if h2.Count() != 1 {
				return false
			}
			got := h2.Recent(1)[0]
			return got.Player == orig.Player &&
				got.Pattern == orig.Pattern &&
				got.PatternName == orig.PatternName &&
				got.Difficulty == orig.Difficulty &&
				got.Expected == orig.Expected &&
				got.Prediction == orig.Prediction &&
				got.Correct == orig.Correct &&
				got.Score == orig.Score &&
				got.ResolvedAt.Equal(orig.ResolvedAt)
		},
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
		gen.IntRange(0, 10000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
