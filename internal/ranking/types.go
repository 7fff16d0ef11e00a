// Package ranking keeps the player leaderboard: best scores, dense ranks and rank changes over
// periodic snapshots.
package ranking

import "time"

// Player is the running record of one player.
type Player struct {
	Name       string    `json:"name"`
	BestScore  int       `json:"best_score"`
	Rounds     int       `json:"rounds"`
	Correct    int       `json:"correct"`
	LastPlayed time.Time `json:"last_played"`
}

// Accuracy returns the share of correct predictions in percent.
func (p Player) Accuracy() float64 {
	if p.Rounds == 0 {
		return 0
	}
	return float64(p.Correct) / float64(p.Rounds) * 100
}

// Snapshot is the leaderboard at one sampling time.
type Snapshot struct {
	Timestamp time.Time                `json:"timestamp"`
	Items     map[string]*SnapshotItem `json:"items"` // player -> item
}

// SnapshotItem is one player's standing in a snapshot.
type SnapshotItem struct {
	Player    string  `json:"player"`
	Rank      int     `json:"rank"`
	BestScore int     `json:"best_score"`
	Rounds    int     `json:"rounds"`
	Accuracy  float64 `json:"accuracy"`
}

// RankingItem is one leaderboard row.
type RankingItem struct {
	Player      string  `json:"player"`
	Rank        int     `json:"rank"`
	RankChange  *int    `json:"rank_change,omitempty"` // positive means moved up
	BestScore   int     `json:"best_score"`
	ScoreChange *int    `json:"score_change,omitempty"`
	Rounds      int     `json:"rounds"`
	Accuracy    float64 `json:"accuracy"`
	IsNew       bool    `json:"is_new,omitempty"` // not on the comparison board
}

// CurrentOptions selects the comparison window and row count.
type CurrentOptions struct {
	Compare time.Duration // 0 compares with the latest snapshot
	Limit   int
}

// CurrentResponse is the live leaderboard.
type CurrentResponse struct {
	Timestamp time.Time     `json:"timestamp"`
	CompareTo time.Time     `json:"compare_to,omitempty"`
	Items     []RankingItem `json:"items"`
}

// MoversOptions selects players whose rank changed.
type MoversOptions struct {
	Direction string // "up" or "down"
	Compare   time.Duration
	Limit     int
}

// MoversResponse lists rank movers.
type MoversResponse struct {
	Timestamp time.Time     `json:"timestamp"`
	CompareTo time.Time     `json:"compare_to,omitempty"`
	Direction string        `json:"direction"`
	Items     []RankingItem `json:"items"`
}

// PlayerSnapshot is one point of a player's rank history.
type PlayerSnapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Rank      int       `json:"rank"`
	BestScore int       `json:"best_score"`
}

// HistoryResponse is a player's rank history, oldest first.
type HistoryResponse struct {
	Player    string           `json:"player"`
	Snapshots []PlayerSnapshot `json:"snapshots"`
}

// Direction constants
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)
