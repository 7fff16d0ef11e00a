package ranking

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPersistAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	now := time.Now().Truncate(time.Second)

	store := NewStore(tmpDir, 24*time.Hour, zerolog.Nop())
	store.Record("alice", 30, true, now)
	store.Record("bob", 20, false, now)
	store.Sample()

	if err := store.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	filePath := filepath.Join(tmpDir, "ranking", "leaderboard.json")
	if _, err := os.Stat(filePath); err != nil {
		t.Fatalf("leaderboard file not created: %v", err)
	}
	if _, err := os.Stat(filePath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}

	store2 := NewStore(tmpDir, 24*time.Hour, zerolog.Nop())
	if err := store2.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if store2.PlayerCount() != 2 || store2.Count() != 1 {
		t.Errorf("loaded players=%d snapshots=%d", store2.PlayerCount(), store2.Count())
	}
	p, _ := store2.Player("alice")
	if p.BestScore != 30 || p.Correct != 1 || !p.LastPlayed.Equal(now) {
		t.Errorf("alice = %+v", p)
	}
}

func TestLoad_DropsExpiredSnapshots(t *testing.T) {
	tmpDir := t.TempDir()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	store := NewStore(tmpDir, time.Hour, zerolog.Nop())
	store.now = func() time.Time { return now }
	store.Record("alice", 10, true, now)
	store.Sample()
	if err := store.Persist(); err != nil {
		t.Fatal(err)
	}

	later := now.Add(2 * time.Hour)
	store2 := NewStore(tmpDir, time.Hour, zerolog.Nop())
	store2.now = func() time.Time { return later }
	if err := store2.Load(); err != nil {
		t.Fatal(err)
	}
	if store2.Count() != 0 || store2.PlayerCount() != 1 {
		t.Errorf("snapshots=%d players=%d", store2.Count(), store2.PlayerCount())
	}
}

func TestPersist_NoDataDir(t *testing.T) {
	store := NewStore("", time.Hour, zerolog.Nop())
	store.Record("alice", 10, true, time.Now())
	if err := store.Persist(); err != nil {
		t.Errorf("Persist without data dir: %v", err)
	}
	if err := store.Load(); err != nil {
		t.Errorf("Load without data dir: %v", err)
	}
}

func TestLoad_MissingAndCorrupt(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir, time.Hour, zerolog.Nop())
	if err := store.Load(); err != nil {
		t.Errorf("missing file: %v", err)
	}

	dir := filepath.Join(tmpDir, "ranking")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "leaderboard.json"), []byte("{broken"), 0644)
	if err := store.Load(); err == nil {
		t.Error("expected error for corrupt file")
	}
}
