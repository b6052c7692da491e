package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"trivia-session-service/internal/app"
	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/engine"
	infrapg "trivia-session-service/internal/infra/postgres"
	pgmigrations "trivia-session-service/internal/infra/postgres/migrations"
	infraredis "trivia-session-service/internal/infra/redis"
)

func TestSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openBun(pgURL)
	defer db.Close()
	migrateAndSeed(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	catalog := infrapg.NewCatalog(pool)
	fetcher := infraredis.NewQuestionCache(redisClient, catalog, 5*time.Minute)
	loader := app.NewPoolLoaderWithRand(catalog, fetcher, 6, rand.New(rand.NewSource(1)))
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	results := infrapg.NewResultRepository(db)

	sched := engine.NewManualScheduler()
	cfg := engine.Config{QuestionSeconds: 30, FeedbackDelaySeconds: 2, TickInterval: time.Second}
	service := app.NewSessionService(sessions, loader, results, cfg, sched, zerolog.Nop())

	session, err := service.StartSession(ctx, domain.SessionDescriptor{SessionID: "s1", PurchaseRef: "p1"})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	for session.Snapshot().Phase == domain.PhaseInProgress {
		snap := session.Snapshot()
		if err := service.Answer("s1", snap.Question.Correct); err != nil {
			t.Fatalf("answer: %v", err)
		}
		sched.Advance(2 * time.Second)
	}

	snap := session.Snapshot()
	if snap.Result == nil {
		t.Fatalf("expected result, phase %s", snap.Phase)
	}
	if snap.Result.Score != snap.Result.MaxScore {
		t.Fatalf("expected a perfect run, got %d of %d", snap.Result.Score, snap.Result.MaxScore)
	}

	// The result save runs on its own goroutine; poll the table.
	deadline := time.Now().Add(5 * time.Second)
	for {
		saved, err := results.LoadResult(ctx, "s1")
		if err == nil {
			if saved.Score != snap.Result.Score {
				t.Fatalf("persisted score mismatch: %d != %d", saved.Score, snap.Result.Score)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("result never persisted: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func migrateAndSeed(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO categories (id, name_ar, name_en) VALUES ('geo', 'جغرافيا', 'Geography')`); err != nil {
		t.Fatalf("insert category: %v", err)
	}
	for i, question := range seedQuestions() {
		data, err := json.Marshal(question)
		if err != nil {
			t.Fatalf("marshal question: %v", err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO questions (id, category_id, tier, data) VALUES (?, ?, ?, ?::jsonb)`,
			question.ID, question.CategoryID, question.Tier, string(data)); err != nil {
			t.Fatalf("insert question %d: %v", i, err)
		}
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO purchase_categories (purchase_id, category_id) VALUES ('p1', 'geo')`); err != nil {
		t.Fatalf("insert purchase: %v", err)
	}
}

func seedQuestions() []domain.Question {
	options := []domain.Option{
		{Label: domain.OptionA, Text: domain.Text{En: "first"}},
		{Label: domain.OptionB, Text: domain.Text{En: "second"}},
		{Label: domain.OptionC, Text: domain.Text{En: "third"}},
		{Label: domain.OptionD, Text: domain.Text{En: "fourth"}},
	}
	return []domain.Question{
		{ID: "q1", CategoryID: "geo", Prompt: domain.Text{En: "one"}, Options: options, Correct: domain.OptionA, Tier: 1},
		{ID: "q2", CategoryID: "geo", Prompt: domain.Text{En: "two"}, Options: options, Correct: domain.OptionB, Tier: 3},
	}
}

func openBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/triviadb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
