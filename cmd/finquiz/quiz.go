package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/julienduc-econ/finquiz/internal/cli"
)

func newQuizCommand() *cobra.Command {
	quizCommand := &cobra.Command{
		Use:   "quiz",
		Short: "Quiz commands for practicing financial mathematics",
	}

	quizCommand.AddCommand(newQuizPracticeCommand())
	quizCommand.AddCommand(newQuizChallengeCommand())

	return quizCommand
}

func newQuizPracticeCommand() *cobra.Command {
	var categoryFlag string
	command := &cobra.Command{
		Use:   "practice",
		Short: "Practice quiz with instant corrections, nothing is recorded",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			category, err := parseCategory(categoryFlag)
			if err != nil {
				return err
			}

			quizCLI := cli.NewQuizSessionCLI(
				newGenerator(cfg),
				nil,
				nil,
				toleranceFromConfig(cfg),
				category,
				false,
				cfg.Quiz.QuestionCount,
			)

			fmt.Println("Session d'entraînement. Tapez 'quit' pour quitter.")
			fmt.Println()
			return quizCLI.Run(cmd.Context(), quizCLI)
		},
	}
	command.Flags().StringVar(&categoryFlag, "category", "", "question theme (default: all themes)")

	return command
}

func newQuizChallengeCommand() *cobra.Command {
	var categoryFlag string
	command := &cobra.Command{
		Use:   "challenge",
		Short: "Challenge quiz with hidden corrections, the score is recorded",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			category, err := parseCategory(categoryFlag)
			if err != nil {
				return err
			}

			store, resolve, cleanup, err := newStoreAndResolver(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("newStoreAndResolver() > %w", err)
			}
			defer cleanup()

			quizCLI := cli.NewQuizSessionCLI(
				newGenerator(cfg),
				store,
				resolve,
				toleranceFromConfig(cfg),
				category,
				true,
				cfg.Quiz.QuestionCount,
			)

			fmt.Println("Session défi. Tapez 'quit' pour quitter.")
			fmt.Println()
			return quizCLI.Run(cmd.Context(), quizCLI)
		},
	}
	command.Flags().StringVar(&categoryFlag, "category", "", "question theme (default: all themes)")

	return command
}
