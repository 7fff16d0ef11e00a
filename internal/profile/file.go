package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const profilesSubDir = "profiles"

// FileStore keeps one JSON record per player under <dataDir>/profiles.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates the profiles directory under dataDir.
func NewFileStore(dataDir string) (*FileStore, error) {
	dir := filepath.Join(dataDir, profilesSubDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create profiles dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(player string) string {
	return filepath.Join(s.dir, player+".json")
}

// Load returns the stored profile, or the default one when none exists yet.
func (s *FileStore) Load(_ context.Context, player string) (Profile, error) {
	if !ValidPlayer(player) {
		return Profile{}, ErrInvalidPlayer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(player)
}

// Save replaces the whole record.
func (s *FileStore) Save(_ context.Context, player string, p Profile) error {
	if !ValidPlayer(player) {
		return ErrInvalidPlayer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(player, p)
}

// RaiseHighScore stores score when it beats the stored high score.
func (s *FileStore) RaiseHighScore(_ context.Context, player string, score int) (int, error) {
	if !ValidPlayer(player) {
		return 0, ErrInvalidPlayer
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.readLocked(player)
	if err != nil {
		return 0, err
	}
	if score <= p.HighScore {
		return p.HighScore, nil
	}
	p.HighScore = score
	if err := s.writeLocked(player, p); err != nil {
		return 0, err
	}
	return score, nil
}

// SetSoundEnabled updates the sound flag only.
func (s *FileStore) SetSoundEnabled(_ context.Context, player string, enabled bool) error {
	if !ValidPlayer(player) {
		return ErrInvalidPlayer
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.readLocked(player)
	if err != nil {
		return err
	}
	p.SoundEnabled = enabled
	return s.writeLocked(player, p)
}

func (s *FileStore) readLocked(player string) (Profile, error) {
	data, err := os.ReadFile(s.path(player))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Profile{}, fmt.Errorf("read profile %s: %w", player, err)
	}

	var rec map[string]string
	if err := json.Unmarshal(data, &rec); err != nil {
		return Profile{}, fmt.Errorf("decode profile %s: %w", player, err)
	}
	return FromRecord(rec), nil
}

// writeLocked writes the record to a temp file first, then renames it into place.
func (s *FileStore) writeLocked(player string, p Profile) error {
	data, err := json.MarshalIndent(p.Record(), "", "  ")
	if err != nil {
		return err
	}
	filePath := s.path(player)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("write profile %s: %w", player, err)
	}
	return os.Rename(tempPath, filePath)
}
