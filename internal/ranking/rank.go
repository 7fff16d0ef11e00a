package ranking

import (
	"sort"
	"time"
)

// CalculateRanks assigns dense ranks by best score: equal scores share a rank and the next
// distinct score gets rank+1. Players without a finished round are not ranked.
func CalculateRanks(players map[string]*Player) map[string]int {
	items := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.Rounds == 0 {
			continue
		}
		items = append(items, p)
	}
	if len(items) == 0 {
		return make(map[string]int)
	}

	// descending score, ties by name for a stable order
	sort.Slice(items, func(i, j int) bool {
		if items[i].BestScore != items[j].BestScore {
			return items[i].BestScore > items[j].BestScore
		}
		return items[i].Name < items[j].Name
	})

	ranks := make(map[string]int, len(items))
	currentRank := 1
	for i, p := range items {
		if i > 0 && items[i-1].BestScore != p.BestScore {
			currentRank++
		}
		ranks[p.Name] = currentRank
	}
	return ranks
}

// BuildSnapshot ranks players at the given time.
func BuildSnapshot(players map[string]*Player, at time.Time) *Snapshot {
	ranks := CalculateRanks(players)

	items := make(map[string]*SnapshotItem, len(ranks))
	for name, rank := range ranks {
		p := players[name]
		items[name] = &SnapshotItem{
			Player:    name,
			Rank:      rank,
			BestScore: p.BestScore,
			Rounds:    p.Rounds,
			Accuracy:  p.Accuracy(),
		}
	}
	return &Snapshot{Timestamp: at, Items: items}
}
