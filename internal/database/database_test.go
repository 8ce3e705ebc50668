package database

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/clientportal/internal/config"
)

// setupTestDB запускает PostgreSQL в Docker-контейнере через testcontainers
// и возвращает конфиг для подключения к нему.
func setupTestDB(t *testing.T) *config.Config {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("portal_test"),
		postgres.WithUsername("portal"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	t.Setenv("CP_DB_HOST", host)
	t.Setenv("CP_DB_PORT", port.Port())
	t.Setenv("CP_DB_NAME", "portal_test")
	t.Setenv("CP_DB_USER", "portal")
	t.Setenv("CP_DB_PASSWORD", "test-password")
	t.Setenv("CP_DB_SSL_MODE", "disable")
	t.Setenv("CP_JWT_JWKS_URL", "http://localhost:8080/jwks")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// TestMigrate проверяет применение миграций и их идемпотентность.
func TestMigrate(t *testing.T) {
	cfg := setupTestDB(t)
	logger := testLogger()

	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}
	// Повторное применение — без ошибки (ErrNoChange)
	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Повторный Migrate() вернул ошибку: %v", err)
	}

	ctx := context.Background()
	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	for _, table := range []string{"clients", "projects", "feedback", "todos", "files"} {
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table).Scan(&exists)
		if err != nil {
			t.Fatalf("Ошибка проверки таблицы %s: %v", table, err)
		}
		if !exists {
			t.Errorf("Таблица %s не создана", table)
		}
	}
}

// TestLatestMigrationVersion проверяет чтение встроенных миграций без базы.
func TestLatestMigrationVersion(t *testing.T) {
	got, err := LatestMigrationVersion()
	if err != nil {
		t.Fatalf("LatestMigrationVersion() вернул ошибку: %v", err)
	}
	if got != 1 {
		t.Errorf("LatestMigrationVersion() = %d, ожидалась 1", got)
	}
}

func TestSchemaState(t *testing.T) {
	tests := []struct {
		name    string
		version int64
		dirty   bool
		latest  uint
		want    string
	}{
		{"актуальная", 1, false, 1, "ok"},
		{"новее бинарника", 2, false, 1, "ok"},
		{"отстаёт", 1, false, 3, "degraded"},
		{"dirty", 1, true, 1, "fail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := schemaState(tt.version, tt.dirty, tt.latest)
			if got != tt.want {
				t.Errorf("schemaState() = %q (%s), ожидался %q", got, msg, tt.want)
			}
		})
	}
}

// TestReadinessChecker проверяет ReadinessChecker на живой базе:
// до миграций, после них и при отставании схемы.
func TestReadinessChecker(t *testing.T) {
	cfg := setupTestDB(t)
	logger := testLogger()
	ctx := context.Background()

	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	latest, err := LatestMigrationVersion()
	if err != nil {
		t.Fatalf("LatestMigrationVersion() вернул ошибку: %v", err)
	}
	checker := NewReadinessChecker(pool, latest)

	if status, msg := checker.CheckReady(); status != "fail" {
		t.Errorf("до миграций CheckReady() = %q (%s), ожидали fail", status, msg)
	}

	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}
	if status, msg := checker.CheckReady(); status != "ok" {
		t.Errorf("после миграций CheckReady() = %q (%s), ожидали ok", status, msg)
	}

	if status, msg := NewReadinessChecker(pool, latest+1).CheckReady(); status != "degraded" {
		t.Errorf("при отставании схемы CheckReady() = %q (%s), ожидали degraded", status, msg)
	}
}
