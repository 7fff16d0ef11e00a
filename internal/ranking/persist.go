package ranking

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	rankingSubDir   = "ranking"
	leaderboardFile = "leaderboard.json"
)

// persistedData is the structure for persisted ranking data.
type persistedData struct {
	Players   []*Player   `json:"players"`
	Snapshots []*Snapshot `json:"snapshots"`
	SavedAt   time.Time   `json:"saved_at"`
}

// Persist saves players and snapshots to disk.
func (s *Store) Persist() error {
	if s.dataDir == "" {
		return nil // No persistence configured
	}

	s.mu.RLock()
	data := persistedData{
		Players:   make([]*Player, 0, len(s.players)),
		Snapshots: make([]*Snapshot, len(s.snapshots)),
		SavedAt:   s.now(),
	}
	for _, p := range s.players {
		cp := *p
		data.Players = append(data.Players, &cp)
	}
	copy(data.Snapshots, s.snapshots)

	// marshal under the lock: Record mutates players in place
	jsonData, err := json.MarshalIndent(data, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Join(s.dataDir, rankingSubDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Write to temp file first, then rename for atomicity
	filePath := filepath.Join(dir, leaderboardFile)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, filePath)
}

// Load reads players and snapshots from disk. A missing file is not an error.
func (s *Store) Load() error {
	if s.dataDir == "" {
		return nil // No persistence configured
	}

	filePath := filepath.Join(s.dataDir, rankingSubDir, leaderboardFile)
	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No data file yet
		}
		return err
	}

	var data persistedData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.players = make(map[string]*Player, len(data.Players))
	for _, p := range data.Players {
		if p == nil || p.Name == "" {
			continue
		}
		s.players[p.Name] = p
	}
	s.snapshots = data.Snapshots
	s.cleanupLocked()

	s.logger.Info().Int("players", len(s.players)).Int("snapshots", len(s.snapshots)).Msg("leaderboard loaded")
	return nil
}
