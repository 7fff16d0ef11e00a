package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"example.com/candle-predict/internal/candle"
	"example.com/candle-predict/internal/chart"
	"example.com/candle-predict/internal/config"
	"example.com/candle-predict/internal/game"
	"example.com/candle-predict/internal/httpapi"
	"example.com/candle-predict/internal/logging"
	"example.com/candle-predict/internal/pattern"
	"example.com/candle-predict/internal/profile"
	"example.com/candle-predict/internal/ranking"
	"example.com/candle-predict/internal/recorder"
	"example.com/candle-predict/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "config.yaml", "")
	addr := flag.String("addr", "", "")
	dataDir := flag.String("data-dir", "", "")
	corsOrigins := flag.String("cors-origins", "", "")
	logLevel := flag.String("log-level", "", "")
	noRecorder := flag.Bool("no-recorder", false, "")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logging.New(logging.Config{})
		l.Fatal().Err(err).Msg("config load failed")
	}
	// flags override the file and environment
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dataDir != "" {
		cfg.Server.DataDir = *dataDir
	}
	if *corsOrigins != "" {
		cfg.Server.CORSOrigins = *corsOrigins
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("data_dir", cfg.Server.DataDir).
		Str("profile_backend", cfg.Profile.Backend).
		Int("min_candles", cfg.Game.MinCandles).
		Dur("session_ttl", cfg.Game.SessionTTL).
		Msg("config")

	src := candle.Global()
	if cfg.Game.Seed != 0 {
		src = candle.Seeded(cfg.Game.Seed)
		logger.Info().Uint64("seed", cfg.Game.Seed).Msg("deterministic candle source")
	}

	profiles, closeProfiles := openProfiles(ctx, cfg, logger)
	defer closeProfiles()

	history, err := game.NewHistory(dataPath(cfg, cfg.History.File), cfg.History.Max, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("history persistence init failed, continuing in memory")
		history, _ = game.NewHistory("", cfg.History.Max, logger)
	}
	defer history.Close()

	var rec recorder.Recorder = recorder.NoopRecorder{}
	if !*noRecorder {
		sqliteRec, err := recorder.NewSQLiteRecorder(dataPath(cfg, cfg.Database.SQLitePath), logger)
		if err != nil {
			logger.Warn().Err(err).Msg("sqlite recorder init failed, rounds will not be recorded")
		} else {
			rec = sqliteRec
		}
	}
	defer rec.Close()

	board := ranking.NewStore(cfg.Server.DataDir, 0, logger)
	if err := board.Load(); err != nil {
		logger.Warn().Err(err).Msg("leaderboard load failed, starting empty")
	}
	defer func() {
		if err := board.Persist(); err != nil {
			logger.Error().Err(err).Msg("leaderboard persist failed")
		}
	}()

	games := game.NewManager(game.Deps{
		Selector:   pattern.NewSelector(pattern.Default(), src, logger),
		Builder:    chart.NewBuilder(src, chart.Options{MinLength: cfg.Game.MinCandles}, logger),
		Recognizer: pattern.NewRecognizer(),
		Profiles:   profiles,
		History:    history,
		Recorder:   rec,
		Ranking:    board,
		Logger:     logger,
	}, cfg.Game.SessionTTL)

	sched := scheduler.NewScheduler(ctx, games, rec, logger)
	sched.Leaderboard = board
	if err := sched.RegisterAll(scheduler.Specs{
		Cleanup:   cfg.Schedule.CleanupCron,
		Prune:     cfg.Schedule.PruneCron,
		Ranking:   cfg.Schedule.RankingCron,
		Retention: cfg.Database.Retention,
	}); err != nil {
		logger.Fatal().Err(err).Msg("scheduler init failed")
	}
	sched.Start()
	defer sched.Stop()

	api := httpapi.New(games, httpapi.ParseAllowedOrigins(cfg.Server.CORSOrigins), logger)
	api.ContextLength = cfg.Game.ContextLength

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Str("addr", cfg.Server.Addr).Msg("http listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("http server error")
	}
}

// dataPath resolves relative paths against the data directory.
func dataPath(cfg *config.Config, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cfg.Server.DataDir, path)
}

// openProfiles returns the configured profile store. A Redis store that cannot be reached
// falls back to files.
func openProfiles(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (profile.Store, func()) {
	if cfg.Profile.Backend == config.BackendRedis {
		rs, err := profile.NewRedisStore(ctx, profile.RedisOptions{
			Addr:     cfg.Profile.RedisAddr,
			Password: cfg.Profile.RedisPassword,
			DB:       cfg.Profile.RedisDB,
		})
		if err == nil {
			logger.Info().Str("addr", cfg.Profile.RedisAddr).Msg("profiles stored in redis")
			return rs, func() { _ = rs.Close() }
		}
		logger.Warn().Err(err).Msg("redis unavailable, storing profiles on disk")
	}

	fs, err := profile.NewFileStore(cfg.Server.DataDir)
	if err != nil {
		logger.Warn().Err(err).Msg("profile directory unavailable, keeping profiles in memory")
		return profile.NewMemoryStore(), func() {}
	}
	return fs, func() {}
}
