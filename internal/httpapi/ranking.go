package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"example.com/candle-predict/internal/profile"
	"example.com/candle-predict/internal/ranking"
)

// parseCompareDuration parses the compare parameter.
// Supported values: 5m, 15m, 30m, 1h, 6h, 24h, 7d.
// Returns ok=false for unsupported non-empty values.
func parseCompareDuration(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, true // latest snapshot
	}
	switch s {
	case "5m":
		return 5 * time.Minute, true
	case "15m":
		return 15 * time.Minute, true
	case "30m":
		return 30 * time.Minute, true
	case "1h":
		return time.Hour, true
	case "6h":
		return 6 * time.Hour, true
	case "24h":
		return 24 * time.Hour, true
	case "7d":
		return 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

func queryLimit(c *gin.Context, def int) int {
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		return v
	}
	return def
}

// handleLeaderboard returns the live leaderboard.
// GET /api/leaderboard?compare=1h&limit=100
func (s *Server) handleLeaderboard(c *gin.Context) {
	compare, ok := parseCompareDuration(c.Query("compare"))
	if !ok {
		errorResponse(c, http.StatusBadRequest, "invalid compare parameter")
		return
	}
	c.JSON(http.StatusOK, s.Leaderboard.Current(ranking.CurrentOptions{
		Compare: compare,
		Limit:   queryLimit(c, 100),
	}))
}

// handleLeaderboardMovers lists players whose rank changed.
// GET /api/leaderboard/movers?direction=up&compare=24h&limit=20
func (s *Server) handleLeaderboardMovers(c *gin.Context) {
	direction := strings.ToLower(c.Query("direction"))
	if direction != ranking.DirectionUp && direction != ranking.DirectionDown {
		errorResponse(c, http.StatusBadRequest, "direction parameter required (up or down)")
		return
	}
	compare, ok := parseCompareDuration(c.Query("compare"))
	if !ok {
		errorResponse(c, http.StatusBadRequest, "invalid compare parameter")
		return
	}
	c.JSON(http.StatusOK, s.Leaderboard.Movers(ranking.MoversOptions{
		Direction: direction,
		Compare:   compare,
		Limit:     queryLimit(c, 20),
	}))
}

// handleLeaderboardPlayer returns one player's rank history.
// GET /api/leaderboard/players/:player
func (s *Server) handleLeaderboardPlayer(c *gin.Context) {
	player := strings.TrimSpace(c.Param("player"))
	if !profile.ValidPlayer(player) {
		errorResponse(c, http.StatusBadRequest, "invalid player name")
		return
	}
	c.JSON(http.StatusOK, s.Leaderboard.History(player))
}
