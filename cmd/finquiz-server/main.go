package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/julienduc-econ/finquiz/internal/attempt"
	"github.com/julienduc-econ/finquiz/internal/bootstrap"
	"github.com/julienduc-econ/finquiz/internal/config"
	"github.com/julienduc-econ/finquiz/internal/database"
	"github.com/julienduc-econ/finquiz/internal/question"
	"github.com/julienduc-econ/finquiz/internal/quiz"
	"github.com/julienduc-econ/finquiz/internal/server"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "finquiz-server",
		Short:         "Financial mathematics quiz HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	store, err := newStore(ctx, app, cfg)
	if err != nil {
		return fmt.Errorf("newStore() > %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	generator := question.NewGenerator(rng, samplingFromConfig(cfg.Quiz.Sampling))
	tolerance := quiz.TolerancePolicy{
		Currency:   cfg.Quiz.CurrencyTolerance,
		Percentage: cfg.Quiz.PercentageTolerance,
	}
	handler := server.NewQuizHandler(generator, store, tolerance, cfg.Quiz.QuestionCount)

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: corsMiddleware(h2c.NewHandler(mux, &http2.Server{}), cfg.Server.CORS.AllowedOrigins),
	}
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Info("starting server", "addr", srv.Addr, "attempts_backend", cfg.Attempts.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}

func newStore(ctx context.Context, app *bootstrap.App, cfg *config.Config) (attempt.Store, error) {
	switch cfg.Attempts.Backend {
	case "mysql":
		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("database.Connect() > %w", err)
		}
		app.AddShutdownHook(func(ctx context.Context) error {
			return db.Close()
		})
		return attempt.NewDBStore(db), nil
	case "file":
		return attempt.NewFileStore(cfg.Attempts.FilePath), nil
	default:
		return nil, fmt.Errorf("attempts backend %q is not usable by the server", cfg.Attempts.Backend)
	}
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

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
