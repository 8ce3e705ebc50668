// Пакет config — загрузка и валидация конфигурации клиентского портала
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации портала.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймауты HTTP-сервера
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- JWT ---

	// URL JWKS endpoint провайдера идентификации
	JWTJWKSURL string
	// Ожидаемый issuer JWT (пусто — не проверяется)
	JWTIssuer string
	// Допустимое отклонение часов при проверке exp/nbf
	JWTLeeway time.Duration
	// Интервал фонового обновления JWKS
	JWKSRefreshInterval time.Duration

	// --- Кэш агрегатов ---

	// Максимальное число владельцев в кэше (0 — кэш отключён)
	AggregateCacheSize int
	// Время жизни записи кэша
	AggregateCacheTTL time.Duration

	// --- topologymetrics ---

	// Имя группы в метриках зависимостей
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// CP_PORT — порт HTTP-сервера (по умолчанию 8040)
	cfg.Port, err = getEnvInt("CP_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("CP_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("CP_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// CP_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("CP_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("CP_LOG_LEVEL: %w", err)
	}

	// CP_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("CP_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("CP_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.HTTPReadTimeout, err = getEnvDuration("CP_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CP_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("CP_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CP_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("CP_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CP_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	// CP_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("CP_DB_HOST")
	if err != nil {
		return nil, err
	}

	// CP_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("CP_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("CP_DB_PORT: %w", err)
	}

	// CP_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("CP_DB_NAME")
	if err != nil {
		return nil, err
	}

	// CP_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("CP_DB_USER")
	if err != nil {
		return nil, err
	}

	// CP_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("CP_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// CP_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("CP_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("CP_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- JWT ---

	// CP_JWT_JWKS_URL — обязательный
	cfg.JWTJWKSURL, err = getEnvRequired("CP_JWT_JWKS_URL")
	if err != nil {
		return nil, err
	}

	// CP_JWT_ISSUER — issuer (пусто — проверка отключена)
	cfg.JWTIssuer = strings.TrimRight(getEnvDefault("CP_JWT_ISSUER", ""), "/")

	// CP_JWT_LEEWAY — допустимое отклонение часов (по умолчанию 30s)
	cfg.JWTLeeway, err = getEnvDuration("CP_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CP_JWT_LEEWAY: %w", err)
	}

	// CP_JWKS_REFRESH_INTERVAL — интервал обновления JWKS (по умолчанию 15m)
	cfg.JWKSRefreshInterval, err = getEnvDuration("CP_JWKS_REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("CP_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// --- Кэш агрегатов ---

	// CP_AGGREGATE_CACHE_SIZE — размер кэша (по умолчанию 256, 0 — отключён)
	cfg.AggregateCacheSize, err = getEnvInt("CP_AGGREGATE_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("CP_AGGREGATE_CACHE_SIZE: %w", err)
	}
	if cfg.AggregateCacheSize < 0 {
		return nil, fmt.Errorf("CP_AGGREGATE_CACHE_SIZE: отрицательное значение %d", cfg.AggregateCacheSize)
	}

	// CP_AGGREGATE_CACHE_TTL — время жизни записи (по умолчанию 1m)
	cfg.AggregateCacheTTL, err = getEnvDuration("CP_AGGREGATE_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("CP_AGGREGATE_CACHE_TTL: %w", err)
	}

	// --- topologymetrics ---

	// CP_DEPHEALTH_GROUP — группа в метриках (по умолчанию clientportal)
	cfg.DephealthGroup = getEnvDefault("CP_DEPHEALTH_GROUP", "clientportal")

	// CP_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("CP_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CP_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// CP_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("CP_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CP_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL без пароля
// (используется для лейблов метрик зависимостей).
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(c.DBUser),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// MigrateURL возвращает URL для golang-migrate (драйвер pgx5).
func (c *Config) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
