// Package leaderboard aggregates persisted attempts into per-player
// rankings for display.
package leaderboard

import (
	"math"
	"sort"

	"github.com/julienduc-econ/finquiz/internal/attempt"
)

// Entry is one player's aggregated line.
type Entry struct {
	Identity       string
	MeanScore      float64
	PlayCount      int
	BestElapsedMin float64
}

type playerData struct {
	totalScore  int
	count       int
	bestElapsed float64
}

// Aggregate groups records by identity with mean score, play count and
// best (minimum) elapsed time, sorted by mean score then play count
// descending. Mean scores are rounded to 2 decimals for display.
func Aggregate(records []attempt.Record) []Entry {
	byIdentity := make(map[string]*playerData)
	for _, record := range records {
		data := byIdentity[record.Identity]
		if data == nil {
			data = &playerData{bestElapsed: math.Inf(1)}
			byIdentity[record.Identity] = data
		}
		data.totalScore += record.Score
		data.count++
		if record.ElapsedMinutes < data.bestElapsed {
			data.bestElapsed = record.ElapsedMinutes
		}
	}

	entries := make([]Entry, 0, len(byIdentity))
	for identity, data := range byIdentity {
		entries = append(entries, Entry{
			Identity:       identity,
			MeanScore:      math.Round(float64(data.totalScore)/float64(data.count)*100) / 100,
			PlayCount:      data.count,
			BestElapsedMin: data.bestElapsed,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].MeanScore != entries[j].MeanScore {
			return entries[i].MeanScore > entries[j].MeanScore
		}
		if entries[i].PlayCount != entries[j].PlayCount {
			return entries[i].PlayCount > entries[j].PlayCount
		}
		return entries[i].Identity < entries[j].Identity
	})
	return entries
}
