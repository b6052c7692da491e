package cli

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"trivia-session-service/internal/app"
	"trivia-session-service/internal/config"
	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/engine"
	"trivia-session-service/internal/infra/memory"
	infrapg "trivia-session-service/internal/infra/postgres"
	infraredis "trivia-session-service/internal/infra/redis"
	transport "trivia-session-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	// Content source: postgres when configured, built-in demo catalog otherwise.
	var resolver app.CategoryResolver
	var fetcher app.QuestionFetcher
	if pool != nil {
		catalog := infrapg.NewCatalog(pool)
		resolver, fetcher = catalog, catalog
	} else {
		catalog := sampleCatalog()
		resolver, fetcher = catalog, catalog
	}

	poolTTL := config.TTLDuration(cfg.Session.PoolTTL, 10*time.Minute)
	if redisClient != nil {
		fetcher = infraredis.NewQuestionCache(redisClient, fetcher, poolTTL)
	} else {
		fetcher = memory.NewQuestionCache(fetcher, poolTTL)
	}
	loader := app.NewPoolLoader(resolver, fetcher, cfg.Session.QuestionsPerCategory)

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = infraredis.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	resultTTL := config.TTLDuration(cfg.Session.ResultTTL, 24*time.Hour)
	var results app.ResultRepository
	switch {
	case pool != nil:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		results = infrapg.NewResultRepository(db)
	case redisClient != nil:
		results = infraredis.NewResultStore(redisClient, resultTTL)
	default:
		results = memory.NewResultStore()
	}

	engineCfg := engine.Config{
		QuestionSeconds:      cfg.Session.QuestionSeconds,
		FeedbackDelaySeconds: cfg.Session.FeedbackDelaySeconds,
	}
	service := app.NewSessionService(sessions, loader, results, engineCfg, engine.NewScheduler(), logger)
	wsHandler := transport.NewWSHandler(service, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("port", finalPort).Msg("starting trivia session service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info().Msg("shutting down server")
	case <-ctx.Done():
		logger.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCatalog provides a small bilingual question set so the server
// runs without postgres; swap in real content for production.
func sampleCatalog() *memory.Catalog {
	return memory.NewCatalog(
		map[string][]string{
			"demo": {"geo", "sci"},
		},
		map[string][]domain.Question{
			"geo": {
				{
					ID:         "geo-1",
					CategoryID: "geo",
					Prompt:     domain.Text{Ar: "ما هي عاصمة المملكة العربية السعودية؟", En: "What is the capital of Saudi Arabia?"},
					Options: []domain.Option{
						{Label: domain.OptionA, Text: domain.Text{Ar: "جدة", En: "Jeddah"}},
						{Label: domain.OptionB, Text: domain.Text{Ar: "الرياض", En: "Riyadh"}},
						{Label: domain.OptionC, Text: domain.Text{Ar: "الدمام", En: "Dammam"}},
						{Label: domain.OptionD, Text: domain.Text{Ar: "مكة", En: "Mecca"}},
					},
					Correct:     domain.OptionB,
					Tier:        1,
					Explanation: domain.Text{Ar: "الرياض هي العاصمة منذ عام 1932", En: "Riyadh has been the capital since 1932."},
				},
				{
					ID:         "geo-2",
					CategoryID: "geo",
					Prompt:     domain.Text{Ar: "ما هو أطول نهر في العالم؟", En: "What is the longest river in the world?"},
					Options: []domain.Option{
						{Label: domain.OptionA, Text: domain.Text{Ar: "النيل", En: "The Nile"}},
						{Label: domain.OptionB, Text: domain.Text{Ar: "الأمازون", En: "The Amazon"}},
						{Label: domain.OptionC, Text: domain.Text{Ar: "اليانغتسي", En: "The Yangtze"}},
						{Label: domain.OptionD, Text: domain.Text{Ar: "الميسيسيبي", En: "The Mississippi"}},
					},
					Correct: domain.OptionA,
					Tier:    3,
				},
			},
			"sci": {
				{
					ID:         "sci-1",
					CategoryID: "sci",
					Prompt:     domain.Text{Ar: "كم عدد كواكب المجموعة الشمسية؟", En: "How many planets are in the solar system?"},
					Options: []domain.Option{
						{Label: domain.OptionA, Text: domain.Text{Ar: "سبعة", En: "Seven"}},
						{Label: domain.OptionB, Text: domain.Text{Ar: "ثمانية", En: "Eight"}},
						{Label: domain.OptionC, Text: domain.Text{Ar: "تسعة", En: "Nine"}},
						{Label: domain.OptionD, Text: domain.Text{Ar: "عشرة", En: "Ten"}},
					},
					Correct: domain.OptionB,
					Tier:    2,
				},
				{
					ID:         "sci-2",
					CategoryID: "sci",
					Prompt:     domain.Text{Ar: "ما هو الرمز الكيميائي للذهب؟", En: "What is the chemical symbol for gold?"},
					Options: []domain.Option{
						{Label: domain.OptionA, Text: domain.Text{En: "Go"}},
						{Label: domain.OptionB, Text: domain.Text{En: "Gd"}},
						{Label: domain.OptionC, Text: domain.Text{En: "Au"}},
						{Label: domain.OptionD, Text: domain.Text{En: "Ag"}},
					},
					Correct:     domain.OptionC,
					Tier:        5,
					Explanation: domain.Text{Ar: "من الاسم اللاتيني aurum", En: "From the Latin name aurum."},
				},
			},
		},
	)
}
