package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julienduc-econ/finquiz/internal/attempt"
	"github.com/julienduc-econ/finquiz/internal/question"
)

func TestAggregate(t *testing.T) {
	t.Run("groups by identity with mean, count and best time", func(t *testing.T) {
		records := []attempt.Record{
			{Identity: "zoe", Score: 5, Category: question.CategoryCapitalisation, ElapsedMinutes: 4.2},
			{Identity: "zoe", Score: 4, Category: question.CategoryRates, ElapsedMinutes: 3.1},
			{Identity: "zoe", Score: 3, Category: question.CategoryRates, ElapsedMinutes: 6.0},
			{Identity: "leo", Score: 5, Category: question.CategoryCapitalisation, ElapsedMinutes: 2.0},
		}

		entries := Aggregate(records)
		require.Len(t, entries, 2)

		assert.Equal(t, Entry{Identity: "leo", MeanScore: 5, PlayCount: 1, BestElapsedMin: 2.0}, entries[0])
		assert.Equal(t, Entry{Identity: "zoe", MeanScore: 4, PlayCount: 3, BestElapsedMin: 3.1}, entries[1])
	})

	t.Run("mean score is rounded to 2 decimals", func(t *testing.T) {
		records := []attempt.Record{
			{Identity: "zoe", Score: 5, ElapsedMinutes: 1},
			{Identity: "zoe", Score: 4, ElapsedMinutes: 1},
			{Identity: "zoe", Score: 4, ElapsedMinutes: 1},
		}

		entries := Aggregate(records)
		require.Len(t, entries, 1)
		assert.InDelta(t, 4.33, entries[0].MeanScore, 1e-9)
	})

	t.Run("equal mean breaks on play count, then identity", func(t *testing.T) {
		records := []attempt.Record{
			{Identity: "zoe", Score: 4, ElapsedMinutes: 1},
			{Identity: "leo", Score: 4, ElapsedMinutes: 1},
			{Identity: "leo", Score: 4, ElapsedMinutes: 1},
			{Identity: "ada", Score: 4, ElapsedMinutes: 1},
		}

		entries := Aggregate(records)
		require.Len(t, entries, 3)
		assert.Equal(t, "leo", entries[0].Identity)
		assert.Equal(t, "ada", entries[1].Identity)
		assert.Equal(t, "zoe", entries[2].Identity)
	})

	t.Run("no records", func(t *testing.T) {
		assert.Empty(t, Aggregate(nil))
	})
}
