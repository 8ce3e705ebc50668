package service

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // драйвер pgx для database/sql
	"github.com/prometheus/client_golang/prometheus"
)

// unreachableDB возвращает *sql.DB на закрытый порт: соединение не устанавливается
// до первого запроса, проверка PostgreSQL будет неуспешной.
func unreachableDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("pgx", "postgres://portal@127.0.0.1:1/portal?sslmode=disable&connect_timeout=1")
	if err != nil {
		t.Fatalf("sql.Open ошибка: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func jwksServer(status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"keys":[]}`))
	}))
}

func TestNewDephealthService(t *testing.T) {
	srv := jwksServer(http.StatusOK)
	defer srv.Close()

	ds, err := NewDephealthServiceWithRegisterer(
		"clientportal-test",
		"clientportal",
		unreachableDB(t),
		"postgres://portal@127.0.0.1:1/portal?sslmode=disable",
		srv.URL+"/realms/portal/protocol/openid-connect/certs",
		5*time.Second,
		discardLogger(),
		prometheus.NewRegistry(),
	)
	if err != nil {
		t.Fatalf("Ошибка создания DephealthService: %v", err)
	}
	if ds == nil {
		t.Fatal("DephealthService nil")
	}
}

func TestDephealthService_StartStop(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantHealth bool
	}{
		{"JWKS доступен", http.StatusOK, true},
		{"JWKS отвечает 500", http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jwksServer(tt.status)
			defer srv.Close()

			ds, err := NewDephealthServiceWithRegisterer(
				"clientportal-test",
				"clientportal",
				unreachableDB(t),
				"postgres://portal@127.0.0.1:1/portal?sslmode=disable",
				srv.URL+"/jwks",
				1*time.Second,
				discardLogger(),
				prometheus.NewRegistry(),
			)
			if err != nil {
				t.Fatalf("Ошибка создания DephealthService: %v", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if err := ds.Start(ctx); err != nil {
				t.Fatalf("Ошибка запуска: %v", err)
			}
			defer ds.Stop()

			// Даём время на первую проверку (интервал 1s + запас)
			time.Sleep(3 * time.Second)

			found := false
			for key, val := range ds.Health() {
				if strings.HasPrefix(key, depJWKS+":") {
					found = true
					if val != tt.wantHealth {
						t.Errorf("%s health = %v, ожидалось %v", key, val, tt.wantHealth)
					}
				}
			}
			if !found {
				t.Errorf("Нет записи для %s в Health(): %v", depJWKS, ds.Health())
			}
		})
	}
}
