// Package profile stores the per-player preferences that survive sessions: the high score and
// the sound flag.
package profile

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"sync"
)

// Record keys, shared by every backend.
const (
	KeyHighScore    = "candleGameHighScore"
	KeySoundEnabled = "candleGameSoundEnabled"
)

// ErrInvalidPlayer is returned for player names that are empty or not [A-Za-z0-9_-]{1,64}.
var ErrInvalidPlayer = errors.New("invalid player name")

var playerRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidPlayer reports whether name can key a profile.
func ValidPlayer(name string) bool {
	return playerRe.MatchString(name)
}

// Profile is what a player keeps between sessions.
type Profile struct {
	HighScore    int  `json:"high_score"`
	SoundEnabled bool `json:"sound_enabled"`
}

// Default is the profile of a player seen for the first time.
func Default() Profile {
	return Profile{SoundEnabled: true}
}

// Record encodes p as the two-entry string record.
func (p Profile) Record() map[string]string {
	return map[string]string{
		KeyHighScore:    strconv.Itoa(p.HighScore),
		KeySoundEnabled: strconv.FormatBool(p.SoundEnabled),
	}
}

// FromRecord decodes a record. Missing or malformed entries keep their defaults; the sound
// flag is on unless stored as something other than "true".
func FromRecord(rec map[string]string) Profile {
	p := Default()
	if v, ok := rec[KeyHighScore]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.HighScore = n
		}
	}
	if v, ok := rec[KeySoundEnabled]; ok {
		p.SoundEnabled = v == "true"
	}
	return p
}

// Store loads and saves profiles. Several sessions may share a player, so the updates touch a
// single field: RaiseHighScore keeps the larger of the stored and the given score and returns
// the stored result, SetSoundEnabled leaves the high score alone.
type Store interface {
	Load(ctx context.Context, player string) (Profile, error)
	Save(ctx context.Context, player string, p Profile) error
	RaiseHighScore(ctx context.Context, player string, score int) (int, error)
	SetSoundEnabled(ctx context.Context, player string, enabled bool) error
}

// MemoryStore keeps profiles in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]Profile)}
}

func (s *MemoryStore) Load(_ context.Context, player string) (Profile, error) {
	if !ValidPlayer(player) {
		return Profile{}, ErrInvalidPlayer
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(player), nil
}

func (s *MemoryStore) getLocked(player string) Profile {
	if p, ok := s.profiles[player]; ok {
		return p
	}
	return Default()
}

func (s *MemoryStore) Save(_ context.Context, player string, p Profile) error {
	if !ValidPlayer(player) {
		return ErrInvalidPlayer
	}
	s.mu.Lock()
	s.profiles[player] = p
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) RaiseHighScore(_ context.Context, player string, score int) (int, error) {
	if !ValidPlayer(player) {
		return 0, ErrInvalidPlayer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.getLocked(player)
	if score > p.HighScore {
		p.HighScore = score
		s.profiles[player] = p
	}
	return p.HighScore, nil
}

func (s *MemoryStore) SetSoundEnabled(_ context.Context, player string, enabled bool) error {
	if !ValidPlayer(player) {
		return ErrInvalidPlayer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.getLocked(player)
	p.SoundEnabled = enabled
	s.profiles[player] = p
	return nil
}
