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
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"vocab-test-service/internal/app"
	"vocab-test-service/internal/config"
	"vocab-test-service/internal/domain"
	"vocab-test-service/internal/grading"
	"vocab-test-service/internal/infra/memory"
	pgstore "vocab-test-service/internal/infra/postgres"
	redisstore "vocab-test-service/internal/infra/redis"
	"vocab-test-service/internal/logger"
	transport "vocab-test-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the vocabulary test server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

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

	var pool *pgxpool.Pool
	var bunDB *bun.DB
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		bunDB = bun.NewDB(sqldb, pgdialect.New())
	}

	// Catalog: postgres-backed when configured, otherwise the in-memory
	// catalog seeded with demo content.
	var catalogStore app.TestCatalog
	var loader memory.TestLoader
	if bunDB != nil {
		store := pgstore.NewTestStore(bunDB)
		catalogStore = store
		loader = pgstore.NewTestLoader(pool)
	} else {
		mem := memory.NewTestCatalog(sampleTests())
		catalogStore = mem
		loader = mem
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var testRepo app.TestRepository
	if redisClient != nil {
		testRepo = redisstore.NewTestRepository(redisClient, loader, catalogTTL)
	} else {
		testRepo = memory.NewTestRepository(loader, catalogTTL)
	}

	var attemptStore app.AttemptStore
	switch {
	case bunDB != nil:
		attemptStore = pgstore.NewAttemptStore(bunDB)
	case redisClient != nil:
		attemptStore = redisstore.NewAttemptStore(redisClient)
	default:
		attemptStore = memory.NewAttemptStore()
	}

	serviceOpts := []app.ServiceOption{app.WithLogger(log)}
	if cfg.Grading.URL != "" {
		serviceOpts = append(serviceOpts, app.WithGrader(grading.NewClient(cfg.Grading.URL)))
	}

	attempts := app.NewAttemptService(memory.NewEngineStore(), testRepo, attemptStore, serviceOpts...)
	catalog := app.NewCatalogService(catalogStore)

	wsHandler := transport.NewWSHandler(attempts, log)
	apiHandler := transport.NewAPIHandler(catalog, attempts, log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      apiHandler.Routes(wsHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting vocab test service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleTests provides minimal demo content for running without Postgres.
func sampleTests() map[string]domain.Test {
	return map[string]domain.Test{
		"t1": {
			ID:          "t1",
			Title:       "Academic Vocabulary Quiz",
			Description: "Test your knowledge of advanced academic vocabulary",
			Type:        domain.QuestionMultipleChoice,
			Questions: []domain.Question{
				{
					ID:               "q1",
					Type:             domain.QuestionMultipleChoice,
					VocabItemID:      "v1",
					DifficultyRating: 4,
					Prompt:           "Which of the following best defines \"ubiquitous\"?",
					Options: []string{
						"Present, appearing, or found everywhere",
						"Rare and unusual",
						"Confusing or complex",
						"Important or significant",
					},
					CorrectOptionIndex: 0,
				},
				{
					ID:               "q2",
					Type:             domain.QuestionMultipleChoice,
					VocabItemID:      "v2",
					DifficultyRating: 4,
					Prompt:           "What does \"paradigm\" refer to?",
					Options: []string{
						"A paradox or contradiction",
						"A typical example or pattern of something",
						"A method of computation",
						"An extreme situation",
					},
					CorrectOptionIndex: 1,
				},
			},
			Settings: domain.TestSettings{
				RandomizeQuestions:            true,
				RandomizeOptions:              true,
				ShowFeedbackAfterEachQuestion: true,
			},
			CreatedAt: time.Now(),
		},
	}
}
