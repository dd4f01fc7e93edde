package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/julienduc-econ/finquiz/internal/attempt"
	"github.com/julienduc-econ/finquiz/internal/cli"
	"github.com/julienduc-econ/finquiz/internal/config"
	"github.com/julienduc-econ/finquiz/internal/database"
	"github.com/julienduc-econ/finquiz/internal/identity"
	"github.com/julienduc-econ/finquiz/internal/question"
	"github.com/julienduc-econ/finquiz/internal/quiz"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func newGenerator(cfg *config.Config) *question.Generator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return question.NewGenerator(rng, samplingFromConfig(cfg.Quiz.Sampling))
}

func samplingFromConfig(cfg config.SamplingConfig) question.SamplingConfig {
	return question.SamplingConfig{
		Principals:  cfg.Principals,
		RateTickMin: cfg.RateTickMin,
		RateTickMax: cfg.RateTickMax,
		RateStep:    cfg.RateTickStep,
		DaysMin:     cfg.DaysMin,
		DaysMax:     cfg.DaysMax,
		MonthsMin:   cfg.MonthsMin,
		MonthsMax:   cfg.MonthsMax,
		YearsMin:    cfg.YearsMin,
		YearsMax:    cfg.YearsMax,
	}
}

func toleranceFromConfig(cfg *config.Config) quiz.TolerancePolicy {
	return quiz.TolerancePolicy{
		Currency:   cfg.Quiz.CurrencyTolerance,
		Percentage: cfg.Quiz.PercentageTolerance,
	}
}

// newStoreAndResolver builds the attempt store and identity resolver for the
// configured backend. The returned cleanup closes the database connection
// when one was opened.
func newStoreAndResolver(ctx context.Context, cfg *config.Config) (attempt.Store, cli.ResolveFunc, func(), error) {
	switch cfg.Attempts.Backend {
	case "mysql":
		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("database.Connect() > %w", err)
		}
		resolver := identity.NewResolver(identity.NewDBRepository(db))
		cleanup := func() {
			_ = db.Close()
		}
		return attempt.NewDBStore(db), resolver.Resolve, cleanup, nil
	case "file":
		// Without a player registry the pseudo is taken at face value.
		resolve := func(ctx context.Context, pseudo, pin string) (string, error) {
			return pseudo, nil
		}
		return attempt.NewFileStore(cfg.Attempts.FilePath), resolve, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("attempts backend %q cannot record scores", cfg.Attempts.Backend)
	}
}

func parseCategory(raw string) (question.Category, error) {
	if raw == "" {
		return question.CategoryAll, nil
	}
	for _, category := range question.Categories() {
		if string(category) == raw {
			return category, nil
		}
	}
	return "", fmt.Errorf("unknown category %q, pick one of %v", raw, question.Categories())
}
