package pattern

// PatternStats holds published reversal statistics for a pattern.
type PatternStats struct {
	UpPercent      int    `json:"up_percent"`      // Historical up probability
	DownPercent    int    `json:"down_percent"`    // Historical down probability
	EfficiencyRank string `json:"efficiency_rank"` // Efficiency rank A+ ~ J-
	StatsSource    string `json:"stats_source"`
}

// PatternStatsMap covers the catalog patterns that have published numbers.
// Data sources: feedroll.com, fivehundred.co, stockgro.club
var PatternStatsMap = map[PatternType]PatternStats{
	PatternDoji:               {43, 57, "J+", "feedroll.com"},
	PatternHammer:             {60, 40, "B+", "fivehundred.co"},
	PatternShootingStar:       {38, 62, "A-", "fivehundred.co"},
	PatternMorningStar:        {70, 30, "A", "stockgro.club"},
	PatternEveningStar:        {28, 72, "A", "feedroll.com"},
	PatternThreeWhiteSoldiers: {82, 18, "D+", "feedroll.com"},
	PatternThreeBlackCrows:    {22, 78, "A+", "feedroll.com"},
	PatternPiercingLine:       {64, 36, "B+", "feedroll.com"},
	PatternDarkCloudCover:     {30, 70, "A", "fivehundred.co"},
}

// IsHighEfficiency returns true if the pattern has efficiency rank A or B.
func IsHighEfficiency(pt PatternType) bool {
	stats, ok := PatternStatsMap[pt]
	if !ok || len(stats.EfficiencyRank) == 0 {
		return false
	}
	return stats.EfficiencyRank[0] == 'A' || stats.EfficiencyRank[0] == 'B'
}

// GetStats returns the statistics for a pattern type.
func GetStats(pt PatternType) (PatternStats, bool) {
	stats, ok := PatternStatsMap[pt]
	return stats, ok
}
