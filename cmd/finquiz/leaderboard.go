package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/julienduc-econ/finquiz/internal/cli"
	"github.com/julienduc-econ/finquiz/internal/leaderboard"
)

func newLeaderboardCommand() *cobra.Command {
	var categoryFlag string
	command := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the challenge ranking",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			category, err := parseCategory(categoryFlag)
			if err != nil {
				return err
			}

			store, _, cleanup, err := newStoreAndResolver(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("newStoreAndResolver() > %w", err)
			}
			defer cleanup()

			records, err := store.Query(cmd.Context(), category)
			if err != nil {
				return fmt.Errorf("store.Query() > %w", err)
			}

			return cli.RenderLeaderboard(os.Stdout, leaderboard.Aggregate(records))
		},
	}
	command.Flags().StringVar(&categoryFlag, "category", "", "filter the ranking by theme")

	return command
}
