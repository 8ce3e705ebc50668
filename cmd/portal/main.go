// Точка входа клиентского портала.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// создаёт репозитории, сервисы и API handlers, запускает мониторинг
// зависимостей и HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/clientportal/internal/api/handlers"
	"github.com/bigkaa/clientportal/internal/api/middleware"
	"github.com/bigkaa/clientportal/internal/config"
	"github.com/bigkaa/clientportal/internal/database"
	"github.com/bigkaa/clientportal/internal/repository"
	"github.com/bigkaa/clientportal/internal/server"
	"github.com/bigkaa/clientportal/internal/service"
)

// jwksReadinessTimeout — таймаут проверки JWKS в проверка readiness.
const jwksReadinessTimeout = 5 * time.Second

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Клиентский портал запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Repositories
	repos := repository.NewRepos(pool)
	txRunner := repository.NewTxRunner(pool)

	// 6. Кэш свёртки клиентов
	aggCache := service.NewAggregateCache(cfg.AggregateCacheSize, cfg.AggregateCacheTTL)

	// 7. Services
	clientsSvc := service.NewClientService(repos.Clients, repos.Projects, repos.Feedback, txRunner, aggCache, logger)
	projectsSvc := service.NewProjectService(repos, aggCache, logger)
	todosSvc := service.NewTodoService(repos.Projects, repos.Todos, logger)
	filesSvc := service.NewFileService(repos.Projects, repos.Files, logger)
	feedbackSvc := service.NewFeedbackService(repos.Projects, repos.Feedback, aggCache, logger)
	dashboardSvc := service.NewDashboardService(repos.Projects, logger)

	// 8. Readiness checkers (PostgreSQL + JWKS)
	schemaVersion, err := database.LatestMigrationVersion()
	if err != nil {
		logger.Error("Ошибка чтения встроенных миграций", slog.String("error", err.Error()))
		os.Exit(1)
	}
	pgChecker := database.NewReadinessChecker(pool, schemaVersion)
	jwksChecker := middleware.NewJWKSReadinessChecker(cfg.JWTJWKSURL, jwksReadinessTimeout)
	healthHandler := handlers.NewHealthHandler(pgChecker, jwksChecker)

	// 9. API handler
	apiHandler := handlers.NewAPIHandler(healthHandler, handlers.Services{
		Clients:   clientsSvc,
		Projects:  projectsSvc,
		Todos:     todosSvc,
		Files:     filesSvc,
		Feedback:  feedbackSvc,
		Dashboard: dashboardSvc,
	}, logger)

	// 10. JWT middleware
	jwtAuth, err := middleware.NewJWTAuth(
		cfg.JWTJWKSURL,
		cfg.JWTIssuer,
		cfg.JWKSRefreshInterval,
		cfg.JWTLeeway,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("JWT middleware инициализирован",
		slog.String("jwks_url", cfg.JWTJWKSURL),
		slog.String("issuer", cfg.JWTIssuer),
	)

	// 11. topologymetrics — мониторинг зависимостей (PostgreSQL + JWKS)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"client-portal",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.JWTJWKSURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
		dephealthSvc = nil
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 12. HTTP-сервер
	srv := server.New(cfg, logger, apiHandler, jwtAuth)
	runErr := srv.Run()

	// 13. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	if runErr != nil {
		logger.Error("Ошибка сервера", slog.String("error", runErr.Error()))
		pgDB.Close()
		pool.Close()
		os.Exit(1)
	}

	logger.Info("Клиентский портал остановлен")
}
