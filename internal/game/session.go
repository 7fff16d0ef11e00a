package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"example.com/candle-predict/internal/candle"
	"example.com/candle-predict/internal/chart"
	"example.com/candle-predict/internal/pattern"
	"example.com/candle-predict/internal/profile"
	"example.com/candle-predict/internal/ranking"
	"example.com/candle-predict/internal/recorder"
	"example.com/candle-predict/internal/sound"
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Selector   *pattern.Selector
	Builder    *chart.Builder
	Recognizer *pattern.Recognizer
	Profiles   profile.Store
	History    *History
	Recorder   recorder.Recorder
	Ranking    *ranking.Store
	Logger     zerolog.Logger
	Now        func() time.Time
}

// withDefaults fills nil collaborators with in-memory implementations.
func (d Deps) withDefaults() Deps {
	if d.Selector == nil {
		d.Selector = pattern.NewSelector(nil, nil, d.Logger)
	}
	if d.Builder == nil {
		d.Builder = chart.NewBuilder(nil, chart.Options{}, d.Logger)
	}
	if d.Recognizer == nil {
		d.Recognizer = pattern.NewRecognizer()
	}
	if d.Profiles == nil {
		d.Profiles = profile.NewMemoryStore()
	}
	if d.History == nil {
		d.History, _ = NewHistory("", DefaultHistoryMax, d.Logger)
	}
	if d.Recorder == nil {
		d.Recorder = recorder.NoopRecorder{}
	}
	if d.Ranking == nil {
		d.Ranking = ranking.NewStore("", 0, d.Logger)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Session is the game state of one player. It is safe for concurrent use.
type Session struct {
	mu   sync.Mutex
	id   string
	deps Deps

	player     string
	score      int
	streak     int
	difficulty pattern.Difficulty
	highScore  int
	current    *Round
	lastSeen   time.Time

	sound  *sound.Service
	logger zerolog.Logger
}

// NewSession creates a session for player, restoring the stored high score and sound flag.
// A profile that cannot be loaded is replaced by the default one.
func NewSession(ctx context.Context, player string, deps Deps) (*Session, error) {
	if !profile.ValidPlayer(player) {
		return nil, ErrInvalidPlayer
	}
	deps = deps.withDefaults()

	id := uuid.NewString()
	logger := deps.Logger.With().Str("component", "session").Str("session", id).Str("player", player).Logger()

	prof, err := deps.Profiles.Load(ctx, player)
	if err != nil {
		logger.Warn().Err(err).Msg("profile load failed, using defaults")
		prof = profile.Default()
	}

	s := &Session{
		id:         id,
		deps:       deps,
		player:     player,
		difficulty: DifficultyForStreak(0),
		highScore:  prof.HighScore,
		lastSeen:   deps.Now(),
		sound:      sound.NewService(nil, logger),
		logger:     logger,
	}
	s.sound.Init(prof.SoundEnabled)
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Player returns the player name.
func (s *Session) Player() string {
	return s.player
}

// Sound returns the session's sound service, e.g. to attach a player.
func (s *Session) Sound() *sound.Service {
	return s.sound
}

// LastSeen returns the time of the last interaction.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touchLocked() {
	s.lastSeen = s.deps.Now()
}

// NextRound selects a pattern at the current difficulty, builds its chart and makes it the
// current round. An unresolved previous round is discarded.
func (s *Session) NextRound(ctx context.Context) (RoundView, error) {
	if err := ctx.Err(); err != nil {
		return RoundView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	def := s.deps.Selector.Select(s.difficulty)
	ch := s.deps.Builder.Round(def)

	r := &Round{
		ID:         uuid.NewString(),
		Definition: def.Info(),
		Chart:      ch,
		CreatedAt:  s.deps.Now(),
	}
	s.current = r

	s.logger.Debug().
		Str("round", r.ID).
		Str("pattern", string(def.ID)).
		Int("difficulty", int(s.difficulty)).
		Bool("fallback", ch.Fallback).
		Msg("round started")
	return r.View(), nil
}

// Predict resolves the current round. roundID may be empty to target the current round.
func (s *Session) Predict(ctx context.Context, roundID string, dir candle.Direction) (Outcome, error) {
	if !dir.Valid() {
		return Outcome{}, ErrInvalidDirection
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	s.mu.Lock()
	s.touchLocked()

	r := s.current
	switch {
	case r == nil:
		s.mu.Unlock()
		return Outcome{}, ErrNoRound
	case roundID != "" && roundID != r.ID:
		s.mu.Unlock()
		return Outcome{}, ErrRoundMismatch
	case r.Resolved():
		s.mu.Unlock()
		return Outcome{}, ErrAlreadyResolved
	}

	s.sound.Play(sound.Click)

	correct := dir == r.Definition.Expected
	points := PointsWrong
	if correct {
		points = PointsCorrect
		s.streak++
	} else {
		s.streak = 0
	}
	s.score = max(0, s.score+points)
	s.difficulty = DifficultyForStreak(s.streak)

	newHigh := s.score > s.highScore
	if newHigh {
		s.highScore = s.score
	}

	r.Prediction = dir
	r.Correct = correct
	r.Points = points
	r.ResolvedAt = s.deps.Now()

	if correct {
		s.sound.Play(sound.Correct)
	} else {
		s.sound.Play(sound.Wrong)
	}

	out := Outcome{
		RoundID:      r.ID,
		Correct:      correct,
		Points:       points,
		Prediction:   dir,
		Expected:     r.Definition.Expected,
		Pattern:      r.Definition,
		Score:        s.score,
		Streak:       s.streak,
		Difficulty:   s.difficulty,
		HighScore:    s.highScore,
		NewHighScore: newHigh,
		Detections:   s.deps.Recognizer.Detect(r.Chart.UpToPattern()),
	}
	if st, ok := pattern.GetStats(r.Definition.ID); ok {
		out.Stats = &st
	}
	entry := s.entryLocked(r)
	s.mu.Unlock()

	if newHigh {
		// another session of the same player may already hold a higher score
		if stored := s.raiseHighScore(ctx, out.Score); stored > out.Score {
			out.HighScore = stored
			out.NewHighScore = false
		}
	}
	s.record(ctx, entry)

	s.logger.Debug().
		Str("round", out.RoundID).
		Bool("correct", correct).
		Int("score", out.Score).
		Int("streak", out.Streak).
		Msg("prediction resolved")
	return out, nil
}

func (s *Session) entryLocked(r *Round) Entry {
	return Entry{
		RoundID:     r.ID,
		SessionID:   s.id,
		Player:      s.player,
		Pattern:     r.Definition.ID,
		PatternName: r.Definition.Name,
		Difficulty:  r.Definition.Difficulty,
		Expected:    r.Definition.Expected,
		Prediction:  r.Prediction,
		Correct:     r.Correct,
		Points:      r.Points,
		Score:       s.score,
		Streak:      s.streak,
		ResolvedAt:  r.ResolvedAt,
	}
}

// record appends the round to history and the recorder. Failures are logged only.
func (s *Session) record(ctx context.Context, e Entry) {
	if err := s.deps.History.Add(e); err != nil {
		s.logger.Warn().Err(err).Str("round", e.RoundID).Msg("history append failed")
	}
	s.deps.Ranking.Record(e.Player, e.Score, e.Correct, e.ResolvedAt)
	err := s.deps.Recorder.RecordRound(ctx, recorder.Result{
		RoundID:    e.RoundID,
		SessionID:  e.SessionID,
		Player:     e.Player,
		Pattern:    string(e.Pattern),
		Difficulty: int(e.Difficulty),
		Expected:   string(e.Expected),
		Prediction: string(e.Prediction),
		Correct:    e.Correct,
		Points:     e.Points,
		Score:      e.Score,
		ResolvedAt: e.ResolvedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("round", e.RoundID).Msg("record round failed")
	}
}

// raiseHighScore persists score as the high score unless the store holds a larger one, and
// returns the stored value. On failure score is returned.
func (s *Session) raiseHighScore(ctx context.Context, score int) int {
	stored, err := s.deps.Profiles.RaiseHighScore(ctx, s.player, score)
	if err != nil {
		s.logger.Warn().Err(err).Msg("high score save failed")
		return score
	}
	if stored > score {
		s.mu.Lock()
		s.highScore = max(s.highScore, stored)
		s.mu.Unlock()
	}
	return stored
}

// ToggleSound flips the sound flag, persists it and returns the new value.
func (s *Session) ToggleSound(ctx context.Context) bool {
	s.mu.Lock()
	s.touchLocked()
	enabled := s.sound.Toggle()
	s.mu.Unlock()

	if err := s.deps.Profiles.SetSoundEnabled(ctx, s.player, enabled); err != nil {
		s.logger.Warn().Err(err).Msg("sound flag save failed")
	}
	return enabled
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:           s.id,
		Player:       s.player,
		Score:        s.score,
		Streak:       s.streak,
		Difficulty:   s.difficulty,
		HighScore:    s.highScore,
		SoundEnabled: s.sound.IsEnabled(),
	}
	if s.current != nil {
		v := s.current.View()
		snap.Round = &v
	}
	return snap
}
