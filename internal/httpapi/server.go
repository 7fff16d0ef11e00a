// Package httpapi exposes the game over HTTP and WebSocket.
package httpapi

import (
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"example.com/candle-predict/internal/candle"
	"example.com/candle-predict/internal/chart"
	"example.com/candle-predict/internal/game"
	"example.com/candle-predict/internal/pattern"
	"example.com/candle-predict/internal/ranking"
	"example.com/candle-predict/internal/recorder"
)

var startTime = time.Now()

// Version is set at build time.
var Version = "dev"

type Server struct {
	Games          *game.Manager
	History        *game.History
	Recorder       recorder.Recorder
	Leaderboard    *ranking.Store
	AllowedOrigins []string
	ContextLength  int

	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func New(games *game.Manager, allowedOrigins []string, logger zerolog.Logger) *Server {
	deps := games.Deps()
	s := &Server{
		Games:          games,
		History:        deps.History,
		Recorder:       deps.Recorder,
		Leaderboard:    deps.Ranking,
		AllowedOrigins: allowedOrigins,
		ContextLength:  chart.DefaultContextLength,
		logger:         logger.With().Str("component", "httpapi").Logger(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(cors.New(s.corsConfig()))

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	api.GET("/runtime", s.handleRuntime)
	api.GET("/patterns", s.handlePatterns)
	api.GET("/patterns/select", s.handleSelect)
	api.GET("/chart", s.handleChart)
	api.GET("/history", s.handleHistory)
	api.GET("/stats", s.handleStats)
	api.GET("/play", s.handlePlay)
	api.GET("/leaderboard", s.handleLeaderboard)
	api.GET("/leaderboard/movers", s.handleLeaderboardMovers)
	api.GET("/leaderboard/players/:player", s.handleLeaderboardPlayer)

	sessions := api.Group("/sessions")
	sessions.POST("", s.handleCreateSession)
	sessions.GET("/:id", s.handleGetSession)
	sessions.DELETE("/:id", s.handleDeleteSession)
	sessions.POST("/:id/rounds", s.handleNextRound)
	sessions.POST("/:id/rounds/:round/prediction", s.handlePredict)
	sessions.POST("/:id/sound", s.handleToggleSound)

	return router
}

func ParseAllowedOrigins(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return []string{"*"}
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func (s *Server) allowAll() bool {
	if len(s.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range s.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type"}
	if s.allowAll() {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.AllowedOrigins
	}
	return cfg
}

// checkOrigin applies the CORS origin list to WebSocket upgrades.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.allowAll() {
		return true
	}
	for _, o := range s.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

// errorResponse writes {"error": msg}.
func errorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{"error": message})
}

// statusFor maps game errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNoRound),
		errors.Is(err, game.ErrRoundMismatch),
		errors.Is(err, game.ErrAlreadyResolved):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidDirection),
		errors.Is(err, game.ErrInvalidPlayer):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	errorResponse(c, code, err.Error())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type RuntimeStats struct {
	Goroutines int     `json:"goroutines"`
	HeapMB     float64 `json:"heap_mb"`
	SysMB      float64 `json:"sys_mb"`
	NumGC      uint32  `json:"num_gc"`
	Uptime     string  `json:"uptime"`
	Version    string  `json:"version"`
	Sessions   int     `json:"sessions"`
	Rounds     int     `json:"rounds"`
	Players    int     `json:"players"`
}

// handleRuntime returns runtime statistics.
// GET /api/runtime
func (s *Server) handleRuntime(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := RuntimeStats{
		Goroutines: runtime.NumGoroutine(),
		HeapMB:     float64(m.HeapAlloc) / 1024 / 1024,
		SysMB:      float64(m.Sys) / 1024 / 1024,
		NumGC:      m.NumGC,
		Uptime:     time.Since(startTime).Round(time.Second).String(),
		Version:    Version,
		Sessions:   s.Games.Count(),
	}
	if s.History != nil {
		stats.Rounds = s.History.Count()
	}
	if s.Leaderboard != nil {
		stats.Players = s.Leaderboard.PlayerCount()
	}
	c.JSON(http.StatusOK, stats)
}

// parseDifficulty reads ?difficulty=, clamped to 1..3. ok is false when absent.
func parseDifficulty(c *gin.Context) (d pattern.Difficulty, ok bool, err error) {
	v := c.Query("difficulty")
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, errors.New("difficulty must be an integer")
	}
	return pattern.Difficulty(n).Clamp(), true, nil
}

// handlePatterns lists catalog metadata.
// GET /api/patterns?difficulty=2
func (s *Server) handlePatterns(c *gin.Context) {
	d, ok, err := parseDifficulty(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	catalog := s.Games.Deps().Selector.Catalog()
	defs := catalog.All()
	if ok {
		defs = catalog.ByDifficulty(d)
	}
	c.JSON(http.StatusOK, pattern.Infos(defs))
}

// handleSelect runs one weighted selection.
// GET /api/patterns/select?difficulty=2
func (s *Server) handleSelect(c *gin.Context) {
	d, ok, err := parseDifficulty(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		d = game.DifficultyForStreak(0)
	}
	def := s.Games.Deps().Selector.Select(d)
	if def.ID == "" {
		errorResponse(c, http.StatusServiceUnavailable, "no pattern available")
		return
	}
	c.JSON(http.StatusOK, def.Info())
}

type chartResponse struct {
	Pattern pattern.Info `json:"pattern"`
	chart.Chart
}

// handleChart builds candles for a pattern, random when none is named.
// GET /api/chart?pattern=hammer&context=5
func (s *Server) handleChart(c *gin.Context) {
	deps := s.Games.Deps()

	var def pattern.Definition
	if id := c.Query("pattern"); id != "" {
		var ok bool
		def, ok = deps.Selector.Catalog().Lookup(pattern.PatternType(id))
		if !ok {
			errorResponse(c, http.StatusNotFound, "unknown pattern: "+id)
			return
		}
	} else {
		def = deps.Selector.Select(pattern.Hard)
	}

	var ch chart.Chart
	if v, ok := c.GetQuery("context"); ok {
		n := s.ContextLength
		if v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 0 || parsed > chart.MaxContextLength {
				errorResponse(c, http.StatusBadRequest, "context must be an integer within 0.."+strconv.Itoa(chart.MaxContextLength))
				return
			}
			n = parsed
		}
		ch = deps.Builder.Context(def, n)
	} else {
		ch = deps.Builder.Round(def)
	}

	c.JSON(http.StatusOK, chartResponse{Pattern: def.Info(), Chart: ch})
}

type createSessionRequest struct {
	Player string `json:"player"`
}

// POST /api/sessions
func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	sess, err := s.Games.Create(c.Request.Context(), req.Player)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess.Snapshot())
}

func (s *Server) session(c *gin.Context) (*game.Session, bool) {
	sess, err := s.Games.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return sess, true
}

// GET /api/sessions/:id
func (s *Server) handleGetSession(c *gin.Context) {
	if sess, ok := s.session(c); ok {
		c.JSON(http.StatusOK, sess.Snapshot())
	}
}

// DELETE /api/sessions/:id
func (s *Server) handleDeleteSession(c *gin.Context) {
	if _, ok := s.session(c); ok {
		s.Games.Remove(c.Param("id"))
		c.Status(http.StatusNoContent)
	}
}

// POST /api/sessions/:id/rounds
func (s *Server) handleNextRound(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	round, err := sess.NextRound(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, round)
}

type predictRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// POST /api/sessions/:id/rounds/:round/prediction
func (s *Server) handlePredict(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "direction is required")
		return
	}
	out, err := sess.Predict(c.Request.Context(), c.Param("round"), candle.Direction(strings.ToLower(req.Direction)))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/sessions/:id/sound
func (s *Server) handleToggleSound(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"sound_enabled": sess.ToggleSound(c.Request.Context())})
}

// handleHistory returns resolved rounds, newest first.
// GET /api/history?player=alice&pattern=hammer&correct=true&limit=50
func (s *Server) handleHistory(c *gin.Context) {
	if s.History == nil {
		c.JSON(http.StatusOK, []game.Entry{})
		return
	}

	opts := game.QueryOptions{
		Player:  c.Query("player"),
		Pattern: pattern.PatternType(c.Query("pattern")),
		Limit:   100,
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = n
		}
	}
	if v := c.Query("correct"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "correct must be a boolean")
			return
		}
		opts.Correct = &b
	}

	res := s.History.Query(opts)
	if res == nil {
		res = []game.Entry{}
	}
	c.JSON(http.StatusOK, res)
}

// handleStats returns per-pattern accuracy from the recorder.
// GET /api/stats
func (s *Server) handleStats(c *gin.Context) {
	if s.Recorder == nil {
		c.JSON(http.StatusOK, []recorder.Accuracy{})
		return
	}
	acc, err := s.Recorder.PatternAccuracy(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if acc == nil {
		acc = []recorder.Accuracy{}
	}
	c.JSON(http.StatusOK, acc)
}
