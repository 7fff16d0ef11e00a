// Package sound decides which feedback cues a player hears. Playback itself happens in the
// browser; the service only hands cues to a Player.
package sound

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Effect names a feedback sound.
type Effect string

const (
	Click   Effect = "click"
	Correct Effect = "correct"
	Wrong   Effect = "wrong"
)

// Volume returns the playback volume of the effect.
func (e Effect) Volume() float64 {
	switch e {
	case Click:
		return 0.5
	case Correct, Wrong:
		return 0.7
	default:
		return 0
	}
}

// Asset returns the browser path of the effect's audio file.
func (e Effect) Asset() string {
	return "/sounds/" + string(e) + ".mp3"
}

// Cue is one request to play an effect.
type Cue struct {
	Effect Effect  `json:"effect"`
	Volume float64 `json:"volume"`
	Asset  string  `json:"asset"`
}

// NewCue builds the cue for e.
func NewCue(e Effect) Cue {
	return Cue{Effect: e, Volume: e.Volume(), Asset: e.Asset()}
}

// ErrDropped is returned by a player that could not accept a cue.
var ErrDropped = errors.New("sound cue dropped")

// Player delivers cues. Implementations must not block.
type Player interface {
	Play(Cue) error
}

// NopPlayer discards every cue.
type NopPlayer struct{}

func (NopPlayer) Play(Cue) error { return nil }

// ChannelPlayer hands cues to a buffered channel, dropping them when it is full.
type ChannelPlayer struct {
	ch chan Cue
}

// NewChannelPlayer creates a channel player with the given buffer size (minimum 1).
func NewChannelPlayer(buffer int) *ChannelPlayer {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelPlayer{ch: make(chan Cue, buffer)}
}

func (p *ChannelPlayer) Play(c Cue) error {
	select {
	case p.ch <- c:
		return nil
	default:
		return ErrDropped
	}
}

// C returns the channel cues are delivered on.
func (p *ChannelPlayer) C() <-chan Cue {
	return p.ch
}

// Service holds the sound-enabled flag of one player and plays cues while it is set.
type Service struct {
	mu      sync.RWMutex
	enabled bool
	player  Player
	logger  zerolog.Logger
}

// NewService creates an enabled service. A nil player discards cues.
func NewService(player Player, logger zerolog.Logger) *Service {
	if player == nil {
		player = NopPlayer{}
	}
	return &Service{
		enabled: true,
		player:  player,
		logger:  logger.With().Str("component", "sound").Logger(),
	}
}

// Init sets the flag from a stored preference.
func (s *Service) Init(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
	s.logger.Debug().Bool("enabled", enabled).Msg("sound initialized")
}

// Toggle flips the flag and returns the new value.
func (s *Service) Toggle() bool {
	s.mu.Lock()
	s.enabled = !s.enabled
	enabled := s.enabled
	s.mu.Unlock()
	s.logger.Debug().Bool("enabled", enabled).Msg("sound toggled")
	return enabled
}

// IsEnabled reports the flag.
func (s *Service) IsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SetPlayer swaps the player, e.g. when a WebSocket connection attaches. nil discards cues.
func (s *Service) SetPlayer(p Player) {
	if p == nil {
		p = NopPlayer{}
	}
	s.mu.Lock()
	s.player = p
	s.mu.Unlock()
}

// Play hands the effect to the player when sound is enabled. Player errors are logged.
func (s *Service) Play(e Effect) {
	s.mu.RLock()
	enabled, player := s.enabled, s.player
	s.mu.RUnlock()

	if !enabled {
		return
	}
	if err := player.Play(NewCue(e)); err != nil {
		s.logger.Warn().Err(err).Str("effect", string(e)).Msg("sound playback failed")
	}
}
