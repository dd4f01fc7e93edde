package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/julienduc-econ/finquiz/internal/leaderboard"
)

// RenderLeaderboard writes the ranking table to w.
func RenderLeaderboard(w io.Writer, entries []leaderboard.Entry) error {
	if len(entries) == 0 {
		if _, err := fmt.Fprintln(w, "Aucun score enregistré pour le moment."); err != nil {
			return fmt.Errorf("failed to write leaderboard: %w", err)
		}
		return nil
	}

	bold := color.New(color.Bold)
	if _, err := bold.Fprintf(w, "%-4s %-20s %12s %9s %15s\n", "#", "Pseudo", "Score moyen", "Parties", "Meilleur temps"); err != nil {
		return fmt.Errorf("failed to write leaderboard: %w", err)
	}
	for i, entry := range entries {
		if _, err := fmt.Fprintf(w, "%-4d %-20s %12.2f %9d %11.1f min\n",
			i+1, entry.Identity, entry.MeanScore, entry.PlayCount, entry.BestElapsedMin); err != nil {
			return fmt.Errorf("failed to write leaderboard: %w", err)
		}
	}
	return nil
}
