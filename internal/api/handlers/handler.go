// handler.go — основной обработчик API клиентского портала.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/clientportal/internal/api/errors"
	"github.com/bigkaa/clientportal/internal/api/middleware"
	"github.com/bigkaa/clientportal/internal/domain/aggregate"
	"github.com/bigkaa/clientportal/internal/domain/model"
	"github.com/bigkaa/clientportal/internal/domain/view"
	"github.com/bigkaa/clientportal/internal/service"
)

// --- Контракты сервисного слоя ---

// ClientManager — операции над клиентами (service.ClientService).
type ClientManager interface {
	List(ctx context.Context, ownerID string, now time.Time) ([]aggregate.ClientSummary, error)
	Get(ctx context.Context, ownerID, key string, now time.Time) (*aggregate.ClientSummary, error)
	Create(ctx context.Context, ownerID string, in service.ClientInput) (*service.ClientCreateResult, error)
	Update(ctx context.Context, ownerID, id string, in service.ClientInput) (*model.Client, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// ProjectManager — операции над проектами (service.ProjectService).
type ProjectManager interface {
	List(ctx context.Context, ownerID string, f service.ProjectFilters, limit, offset int) (*service.ProjectList, error)
	Detail(ctx context.Context, ownerID string, id int64) (*service.ProjectDetail, error)
	Create(ctx context.Context, ownerID string, in service.ProjectInput) (*model.Project, error)
	Update(ctx context.Context, ownerID string, id int64, in service.ProjectInput) (*model.Project, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

// TodoManager — операции над задачами (service.TodoService).
type TodoManager interface {
	ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.Todo, error)
	ListAll(ctx context.Context, ownerID string) ([]*model.Todo, error)
	ListByProjects(ctx context.Context, ownerID string, projectIDs []int64) ([]*model.Todo, error)
	Create(ctx context.Context, ownerID string, projectID int64, in service.TodoInput) (*model.Todo, error)
	Update(ctx context.Context, ownerID string, id int64, in service.TodoInput) (*model.Todo, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

// FileManager — операции над метаданными файлов (service.FileService).
type FileManager interface {
	ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.File, error)
	ListAll(ctx context.Context, ownerID string) ([]*model.File, error)
	Register(ctx context.Context, ownerID string, projectID int64, in service.FileInput) (*model.File, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

// FeedbackManager — операции над отзывами (service.FeedbackService).
type FeedbackManager interface {
	Submit(ctx context.Context, ownerID string, projectID int64, authorID, content string) (*model.Feedback, error)
	ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.Feedback, error)
	ListAll(ctx context.Context, ownerID string) ([]*model.Feedback, error)
}

// DashboardProvider — статистика дашборда (service.DashboardService).
type DashboardProvider interface {
	Stats(ctx context.Context, ownerID string, now time.Time) (*view.DashboardStats, error)
}

var (
	_ ClientManager     = (*service.ClientService)(nil)
	_ ProjectManager    = (*service.ProjectService)(nil)
	_ TodoManager       = (*service.TodoService)(nil)
	_ FileManager       = (*service.FileService)(nil)
	_ FeedbackManager   = (*service.FeedbackService)(nil)
	_ DashboardProvider = (*service.DashboardService)(nil)
)

// Services — набор сервисов, обслуживающих API.
type Services struct {
	Clients   ClientManager
	Projects  ProjectManager
	Todos     TodoManager
	Files     FileManager
	Feedback  FeedbackManager
	Dashboard DashboardProvider
}

// APIHandler — основной обработчик API клиентского портала.
type APIHandler struct {
	health    *HealthHandler
	clients   ClientManager
	projects  ProjectManager
	todos     TodoManager
	files     FileManager
	feedback  FeedbackManager
	dashboard DashboardProvider
	logger    *slog.Logger
	// now — источник текущего времени; одно значение на запрос
	now func() time.Time
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(health *HealthHandler, svc Services, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		health:    health,
		clients:   svc.Clients,
		projects:  svc.Projects,
		todos:     svc.Todos,
		files:     svc.Files,
		feedback:  svc.Feedback,
		dashboard: svc.Dashboard,
		logger:    logger.With(slog.String("component", "api_handler")),
		now:       time.Now,
	}
}

// HealthLive — проверка liveness (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — проверка readiness (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// listResponse — ответ списка без пагинации.
type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Total: len(items)}
}

// paginationDefaults нормализует параметры пагинации.
// Возвращает корректные limit и offset.
func paginationDefaults(limit, offset *int) (limitVal, offsetVal int) {
	l := 100
	o := 0

	if limit != nil {
		l = *limit
		if l < 1 {
			l = 1
		}
		if l > 1000 {
			l = 1000
		}
	}

	if offset != nil {
		o = *offset
		if o < 0 {
			o = 0
		}
	}

	return l, o
}

// queryInt читает необязательный целочисленный query-параметр.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("параметр %s должен быть целым числом", name)
	}
	return &v, nil
}

// queryString читает необязательный строковый query-параметр.
func queryString(r *http.Request, name string) *string {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	return &raw
}

// pathID извлекает числовой идентификатор из пути.
// Некорректный идентификатор — 404: такой записи не существует.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		apierrors.NotFound(w, "")
		return 0, false
	}
	return id, true
}

// decodeJSON разбирает тело запроса; при ошибке отвечает 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return false
	}
	return true
}

// owner возвращает владельца запроса из JWT claims; без claims отвечает 401.
func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID := middleware.OwnerFromContext(r.Context())
	if ownerID == "" {
		apierrors.Unauthorized(w, "Отсутствуют claims")
		return "", false
	}
	return ownerID, true
}

// writeServiceError отвечает на ошибку сервисного слоя.
// msg — сообщение для 500; сбои хранилища пишутся в лог.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if apierrors.FromService(w, err, msg) {
		return
	}
	h.logger.Error(msg,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
}

// dateValue — дата в теле запроса: "2006-01-02" или RFC 3339.
type dateValue struct {
	time.Time
}

// UnmarshalJSON разбирает дату в одном из допустимых форматов.
func (d *dateValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("дата должна быть строкой: %w", err)
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("некорректная дата %q: ожидается YYYY-MM-DD или RFC 3339", s)
}

// timePtr разворачивает необязательную дату запроса.
func (d *dateValue) timePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
