package ranking

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultMaxAge is the default retention period for snapshots (7 days).
	DefaultMaxAge = 7 * 24 * time.Hour
)

// Store holds the players and the rank snapshots. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	players   map[string]*Player
	snapshots []*Snapshot // Ordered by timestamp, newest at the end
	maxAge    time.Duration
	dataDir   string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewStore creates a leaderboard store.
// dataDir: directory for persistence, empty for memory-only
// maxAge: maximum age for snapshots (0 uses DefaultMaxAge)
func NewStore(dataDir string, maxAge time.Duration, logger zerolog.Logger) *Store {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Store{
		players:   make(map[string]*Player),
		snapshots: make([]*Snapshot, 0),
		maxAge:    maxAge,
		dataDir:   dataDir,
		now:       time.Now,
		logger:    logger.With().Str("component", "ranking").Logger(),
	}
}

// Record adds one resolved round for player. score is the session score after the round.
func (s *Store) Record(player string, score int, correct bool, at time.Time) {
	if player == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[player]
	if !ok {
		p = &Player{Name: player}
		s.players[player] = p
	}
	p.Rounds++
	if correct {
		p.Correct++
	}
	if score > p.BestScore {
		p.BestScore = score
	}
	if at.After(p.LastPlayed) {
		p.LastPlayed = at
	}
}

// Sample takes a snapshot of the current ranks and drops expired snapshots.
func (s *Store) Sample() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := BuildSnapshot(s.players, s.now())
	s.snapshots = append(s.snapshots, snap)
	s.cleanupLocked()
	return snap
}

// Add appends a snapshot and triggers cleanup.
func (s *Store) Add(snapshot *Snapshot) {
	if snapshot == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = s.now()
	}
	s.snapshots = append(s.snapshots, snapshot)
	s.cleanupLocked()
}

// cleanupLocked removes snapshots older than maxAge.
// Must be called with lock held.
func (s *Store) cleanupLocked() {
	if len(s.snapshots) == 0 {
		return
	}

	cutoff := s.now().Add(-s.maxAge)
	firstValid := 0

	for i, snap := range s.snapshots {
		if !snap.Timestamp.Before(cutoff) {
			firstValid = i
			break
		}
		firstValid = i + 1
	}

	if firstValid > 0 {
		s.snapshots = s.snapshots[firstValid:]
	}
}

// Count returns the number of snapshots in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// Player returns a copy of one player's record.
func (s *Store) Player(name string) (Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[name]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// PlayerCount returns the number of known players.
func (s *Store) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Current returns the live leaderboard with changes against a past snapshot.
func (s *Store) Current(opts CurrentOptions) *CurrentResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current := BuildSnapshot(s.players, s.now())
	compare := s.compareLocked(current.Timestamp, opts.Compare)

	items := buildRankingItems(current, compare)
	sortRankingItemsByRank(items)

	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}

	resp := &CurrentResponse{
		Timestamp: current.Timestamp,
		Items:     items,
	}
	if compare != nil {
		resp.CompareTo = compare.Timestamp
	}
	return resp
}

// Movers returns players whose rank moved in the given direction, largest moves first.
func (s *Store) Movers(opts MoversOptions) *MoversResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current := BuildSnapshot(s.players, s.now())
	resp := &MoversResponse{
		Timestamp: current.Timestamp,
		Direction: opts.Direction,
		Items:     []RankingItem{},
	}

	compare := s.compareLocked(current.Timestamp, opts.Compare)
	if compare == nil {
		return resp
	}
	resp.CompareTo = compare.Timestamp

	for _, item := range buildRankingItems(current, compare) {
		if item.RankChange == nil {
			continue
		}
		change := *item.RankChange
		if (opts.Direction == DirectionUp && change > 0) || (opts.Direction == DirectionDown && change < 0) {
			resp.Items = append(resp.Items, item)
		}
	}

	sort.SliceStable(resp.Items, func(i, j int) bool {
		return absInt(*resp.Items[i].RankChange) > absInt(*resp.Items[j].RankChange)
	})
	if opts.Limit > 0 && len(resp.Items) > opts.Limit {
		resp.Items = resp.Items[:opts.Limit]
	}
	return resp
}

// History returns the rank history of a player, oldest first.
func (s *Store) History(player string) *HistoryResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := &HistoryResponse{
		Player:    player,
		Snapshots: []PlayerSnapshot{},
	}
	for _, snap := range s.snapshots {
		if item, ok := snap.Items[player]; ok {
			resp.Snapshots = append(resp.Snapshots, PlayerSnapshot{
				Timestamp: snap.Timestamp,
				Rank:      item.Rank,
				BestScore: item.BestScore,
			})
		}
	}
	return resp
}

// compareLocked picks the comparison snapshot: the latest one when compare is 0, otherwise
// the latest at or before now-compare, falling back to the oldest.
func (s *Store) compareLocked(now time.Time, compare time.Duration) *Snapshot {
	if len(s.snapshots) == 0 {
		return nil
	}
	if compare <= 0 {
		return s.snapshots[len(s.snapshots)-1]
	}

	target := now.Add(-compare)
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		if !s.snapshots[i].Timestamp.After(target) {
			return s.snapshots[i]
		}
	}
	return s.snapshots[0]
}

func buildRankingItems(current, compare *Snapshot) []RankingItem {
	items := make([]RankingItem, 0, len(current.Items))

	for name, item := range current.Items {
		ri := RankingItem{
			Player:    name,
			Rank:      item.Rank,
			BestScore: item.BestScore,
			Rounds:    item.Rounds,
			Accuracy:  item.Accuracy,
		}

		if compare != nil {
			if prev, ok := compare.Items[name]; ok {
				rankChange := prev.Rank - item.Rank
				scoreChange := item.BestScore - prev.BestScore
				ri.RankChange = &rankChange
				ri.ScoreChange = &scoreChange
			} else {
				ri.IsNew = true
			}
		}

		items = append(items, ri)
	}
	return items
}

// sortRankingItemsByRank sorts by rank, ties by player name.
func sortRankingItemsByRank(items []RankingItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Rank != items[j].Rank {
			return items[i].Rank < items[j].Rank
		}
		return items[i].Player < items[j].Player
	})
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
