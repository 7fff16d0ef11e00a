package httpapi

import (
	"net/http"
	"testing"
	"time"

	"example.com/candle-predict/internal/pattern"
	"example.com/candle-predict/internal/ranking"
)

func TestParseCompareDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"", 0, true},
		{"5m", 5 * time.Minute, true},
		{" 1H ", time.Hour, true},
		{"7d", 7 * 24 * time.Hour, true},
		{"2h", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseCompareDuration(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseCompareDuration(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLeaderboard(t *testing.T) {
	s, h := newTestServer(t, pattern.PatternHammer)
	now := time.Now()
	s.Leaderboard.Record("alice", 30, true, now)
	s.Leaderboard.Record("bob", 20, true, now)
	s.Leaderboard.Sample()
	s.Leaderboard.Record("bob", 50, true, now)

	rec := do(t, h, http.MethodGet, "/api/leaderboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard = %d", rec.Code)
	}
	board := decode[ranking.CurrentResponse](t, rec)
	if len(board.Items) != 2 || board.Items[0].Player != "bob" || board.Items[0].RankChange == nil || *board.Items[0].RankChange != 1 {
		t.Errorf("board = %+v", board.Items)
	}

	rec = do(t, h, http.MethodGet, "/api/leaderboard?limit=1", nil)
	if got := decode[ranking.CurrentResponse](t, rec); len(got.Items) != 1 {
		t.Errorf("limit=1 returned %d items", len(got.Items))
	}

	rec = do(t, h, http.MethodGet, "/api/leaderboard?compare=2h", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad compare = %d, want 400", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/leaderboard/movers?direction=down", nil)
	movers := decode[ranking.MoversResponse](t, rec)
	if rec.Code != http.StatusOK || len(movers.Items) != 1 || movers.Items[0].Player != "alice" {
		t.Errorf("movers = %d %+v", rec.Code, movers.Items)
	}
	rec = do(t, h, http.MethodGet, "/api/leaderboard/movers", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("movers without direction = %d, want 400", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/leaderboard/players/alice", nil)
	hist := decode[ranking.HistoryResponse](t, rec)
	if rec.Code != http.StatusOK || hist.Player != "alice" || len(hist.Snapshots) != 1 || hist.Snapshots[0].Rank != 1 {
		t.Errorf("history = %d %+v", rec.Code, hist)
	}
	rec = do(t, h, http.MethodGet, "/api/leaderboard/players/bad%21name", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid player = %d, want 400", rec.Code)
	}
}

func TestLeaderboard_FedBySessions(t *testing.T) {
	_, h := newTestServer(t, pattern.PatternHammer)

	rec := do(t, h, http.MethodPost, "/api/sessions", map[string]string{"player": "carol"})
	id := decode[map[string]any](t, rec)["id"].(string)
	base := "/api/sessions/" + id
	rec = do(t, h, http.MethodPost, base+"/rounds", nil)
	roundID := decode[map[string]any](t, rec)["id"].(string)
	rec = do(t, h, http.MethodPost, base+"/rounds/"+roundID+"/prediction", map[string]string{"direction": "up"})
	if rec.Code != http.StatusOK {
		t.Fatalf("predict = %d %s", rec.Code, rec.Body.String())
	}

	board := decode[ranking.CurrentResponse](t, do(t, h, http.MethodGet, "/api/leaderboard", nil))
	if len(board.Items) != 1 || board.Items[0].Player != "carol" || board.Items[0].BestScore != 10 {
		t.Errorf("board = %+v", board.Items)
	}
}
