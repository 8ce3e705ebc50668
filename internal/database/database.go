// Пакет database — пул PostgreSQL портала, миграции схемы
// и проверка готовности по версии схемы.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigkaa/clientportal/internal/config"
)

// applicationName видно в pg_stat_activity.
const applicationName = "clientportal"

// readinessTimeout — общий лимит на ping и чтение версии схемы.
const readinessTimeout = 3 * time.Second

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Connect открывает пул к базе портала и проверяет её доступность.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("разбор DSN: %w", err)
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("создание пула: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("PostgreSQL недоступен: %w", err)
	}

	logger.Info("База портала подключена",
		slog.String("host", cfg.DBHost),
		slog.Int("port", cfg.DBPort),
		slog.String("database", cfg.DBName),
		slog.Int("max_conns", int(poolCfg.MaxConns)),
	)
	return pool, nil
}

// Migrate доводит схему до последней встроенной миграции.
// Схема в состоянии dirty (прерванная миграция) считается ошибкой.
func Migrate(cfg *config.Config, logger *slog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("источник миграций: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("применение миграций: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("чтение версии схемы: %w", err)
	}
	if dirty {
		return fmt.Errorf("схема версии %d в состоянии dirty", version)
	}
	logger.Info("Схема базы актуальна", slog.Uint64("version", uint64(version)))
	return nil
}

// LatestMigrationVersion возвращает номер последней встроенной миграции.
func LatestMigrationVersion() (uint, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("источник миграций: %w", err)
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("первая миграция: %w", err)
	}
	for {
		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, fmt.Errorf("миграция после %d: %w", version, err)
		}
		version = next
	}
}

// ReadinessChecker — готовность базы для /health/ready: база отвечает
// и схема доведена до версии, с которой собран бинарник.
type ReadinessChecker struct {
	pool   *pgxpool.Pool
	latest uint
}

// NewReadinessChecker создаёт проверку готовности базы.
// latest — ожидаемая версия схемы (см. LatestMigrationVersion).
func NewReadinessChecker(pool *pgxpool.Pool, latest uint) *ReadinessChecker {
	return &ReadinessChecker{pool: pool, latest: latest}
}

// CheckReady возвращает "ok", "degraded" или "fail" и пояснение.
func (c *ReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), readinessTimeout)
	defer cancel()

	if err := c.pool.Ping(ctx); err != nil {
		return "fail", fmt.Sprintf("PostgreSQL недоступен: %v", err)
	}

	var (
		version int64
		dirty   bool
	)
	err := c.pool.QueryRow(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, pgx.ErrNoRows) {
		return "fail", "миграции не применялись"
	}
	if err != nil {
		return "fail", fmt.Sprintf("версия схемы недоступна: %v", err)
	}
	return schemaState(version, dirty, c.latest)
}

// schemaState оценивает версию схемы относительно ожидаемой.
// Схема новее бинарника допустима: миграции портала только добавляют.
func schemaState(version int64, dirty bool, latest uint) (status, message string) {
	switch {
	case dirty:
		return "fail", fmt.Sprintf("схема версии %d в состоянии dirty", version)
	case version < int64(latest):
		return "degraded", fmt.Sprintf("схема версии %d, ожидалась %d", version, latest)
	default:
		return "ok", fmt.Sprintf("схема версии %d", version)
	}
}
