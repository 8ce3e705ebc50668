package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/clientportal/internal/api/middleware"
	"github.com/bigkaa/clientportal/internal/domain/aggregate"
	"github.com/bigkaa/clientportal/internal/domain/model"
	"github.com/bigkaa/clientportal/internal/domain/view"
	"github.com/bigkaa/clientportal/internal/service"
)

// testNow — фиксированное «сейчас» для всех тестов обработчиков.
var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// --- Mock сервисов (по умолчанию возвращают service.ErrNotFound) ---

type mockClients struct {
	listFn   func(ctx context.Context, ownerID string, now time.Time) ([]aggregate.ClientSummary, error)
	getFn    func(ctx context.Context, ownerID, key string, now time.Time) (*aggregate.ClientSummary, error)
	createFn func(ctx context.Context, ownerID string, in service.ClientInput) (*service.ClientCreateResult, error)
	updateFn func(ctx context.Context, ownerID, id string, in service.ClientInput) (*model.Client, error)
	deleteFn func(ctx context.Context, ownerID, id string) error
}

func (m *mockClients) List(ctx context.Context, ownerID string, now time.Time) ([]aggregate.ClientSummary, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID, now)
	}
	return nil, nil
}

func (m *mockClients) Get(ctx context.Context, ownerID, key string, now time.Time) (*aggregate.ClientSummary, error) {
	if m.getFn != nil {
		return m.getFn(ctx, ownerID, key, now)
	}
	return nil, service.ErrNotFound
}

func (m *mockClients) Create(ctx context.Context, ownerID string, in service.ClientInput) (*service.ClientCreateResult, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, in)
	}
	return nil, service.ErrNotFound
}

func (m *mockClients) Update(ctx context.Context, ownerID, id string, in service.ClientInput) (*model.Client, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, ownerID, id, in)
	}
	return nil, service.ErrNotFound
}

func (m *mockClients) Delete(ctx context.Context, ownerID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, id)
	}
	return service.ErrNotFound
}

type mockProjects struct {
	listFn   func(ctx context.Context, ownerID string, f service.ProjectFilters, limit, offset int) (*service.ProjectList, error)
	detailFn func(ctx context.Context, ownerID string, id int64) (*service.ProjectDetail, error)
	createFn func(ctx context.Context, ownerID string, in service.ProjectInput) (*model.Project, error)
	updateFn func(ctx context.Context, ownerID string, id int64, in service.ProjectInput) (*model.Project, error)
	deleteFn func(ctx context.Context, ownerID string, id int64) error
}

func (m *mockProjects) List(ctx context.Context, ownerID string, f service.ProjectFilters, limit, offset int) (*service.ProjectList, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID, f, limit, offset)
	}
	return &service.ProjectList{Limit: limit, Offset: offset}, nil
}

func (m *mockProjects) Detail(ctx context.Context, ownerID string, id int64) (*service.ProjectDetail, error) {
	if m.detailFn != nil {
		return m.detailFn(ctx, ownerID, id)
	}
	return nil, service.ErrNotFound
}

func (m *mockProjects) Create(ctx context.Context, ownerID string, in service.ProjectInput) (*model.Project, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, in)
	}
	return nil, service.ErrNotFound
}

func (m *mockProjects) Update(ctx context.Context, ownerID string, id int64, in service.ProjectInput) (*model.Project, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, ownerID, id, in)
	}
	return nil, service.ErrNotFound
}

func (m *mockProjects) Delete(ctx context.Context, ownerID string, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, id)
	}
	return service.ErrNotFound
}

type mockTodos struct {
	listByProjectFn func(ctx context.Context, ownerID string, projectID int64) ([]*model.Todo, error)
	listAllFn       func(ctx context.Context, ownerID string) ([]*model.Todo, error)
	listByIDsFn     func(ctx context.Context, ownerID string, projectIDs []int64) ([]*model.Todo, error)
	createFn        func(ctx context.Context, ownerID string, projectID int64, in service.TodoInput) (*model.Todo, error)
	updateFn        func(ctx context.Context, ownerID string, id int64, in service.TodoInput) (*model.Todo, error)
	deleteFn        func(ctx context.Context, ownerID string, id int64) error
}

func (m *mockTodos) ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.Todo, error) {
	if m.listByProjectFn != nil {
		return m.listByProjectFn(ctx, ownerID, projectID)
	}
	return nil, service.ErrNotFound
}

func (m *mockTodos) ListAll(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockTodos) ListByProjects(ctx context.Context, ownerID string, projectIDs []int64) ([]*model.Todo, error) {
	if m.listByIDsFn != nil {
		return m.listByIDsFn(ctx, ownerID, projectIDs)
	}
	return nil, nil
}

func (m *mockTodos) Create(ctx context.Context, ownerID string, projectID int64, in service.TodoInput) (*model.Todo, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, projectID, in)
	}
	return nil, service.ErrNotFound
}

func (m *mockTodos) Update(ctx context.Context, ownerID string, id int64, in service.TodoInput) (*model.Todo, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, ownerID, id, in)
	}
	return nil, service.ErrNotFound
}

func (m *mockTodos) Delete(ctx context.Context, ownerID string, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, id)
	}
	return service.ErrNotFound
}

type mockFiles struct {
	listByProjectFn func(ctx context.Context, ownerID string, projectID int64) ([]*model.File, error)
	listAllFn       func(ctx context.Context, ownerID string) ([]*model.File, error)
	registerFn      func(ctx context.Context, ownerID string, projectID int64, in service.FileInput) (*model.File, error)
	deleteFn        func(ctx context.Context, ownerID string, id int64) error
}

func (m *mockFiles) ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.File, error) {
	if m.listByProjectFn != nil {
		return m.listByProjectFn(ctx, ownerID, projectID)
	}
	return nil, service.ErrNotFound
}

func (m *mockFiles) ListAll(ctx context.Context, ownerID string) ([]*model.File, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockFiles) Register(ctx context.Context, ownerID string, projectID int64, in service.FileInput) (*model.File, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, ownerID, projectID, in)
	}
	return nil, service.ErrNotFound
}

func (m *mockFiles) Delete(ctx context.Context, ownerID string, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, id)
	}
	return service.ErrNotFound
}

type mockFeedback struct {
	submitFn        func(ctx context.Context, ownerID string, projectID int64, authorID, content string) (*model.Feedback, error)
	listByProjectFn func(ctx context.Context, ownerID string, projectID int64) ([]*model.Feedback, error)
	listAllFn       func(ctx context.Context, ownerID string) ([]*model.Feedback, error)
}

func (m *mockFeedback) Submit(ctx context.Context, ownerID string, projectID int64, authorID, content string) (*model.Feedback, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, ownerID, projectID, authorID, content)
	}
	return nil, service.ErrNotFound
}

func (m *mockFeedback) ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.Feedback, error) {
	if m.listByProjectFn != nil {
		return m.listByProjectFn(ctx, ownerID, projectID)
	}
	return nil, service.ErrNotFound
}

func (m *mockFeedback) ListAll(ctx context.Context, ownerID string) ([]*model.Feedback, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx, ownerID)
	}
	return nil, nil
}

type mockDashboard struct {
	statsFn func(ctx context.Context, ownerID string, now time.Time) (*view.DashboardStats, error)
}

func (m *mockDashboard) Stats(ctx context.Context, ownerID string, now time.Time) (*view.DashboardStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, ownerID, now)
	}
	return &view.DashboardStats{}, nil
}

// --- Сборка обработчика и запросов ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestHandler создаёт APIHandler; незаданные сервисы заменяются моками по умолчанию.
func newTestHandler(svc Services) *APIHandler {
	if svc.Clients == nil {
		svc.Clients = &mockClients{}
	}
	if svc.Projects == nil {
		svc.Projects = &mockProjects{}
	}
	if svc.Todos == nil {
		svc.Todos = &mockTodos{}
	}
	if svc.Files == nil {
		svc.Files = &mockFiles{}
	}
	if svc.Feedback == nil {
		svc.Feedback = &mockFeedback{}
	}
	if svc.Dashboard == nil {
		svc.Dashboard = &mockDashboard{}
	}
	h := NewAPIHandler(NewHealthHandler(nil, nil), svc, discardLogger())
	h.now = func() time.Time { return testNow }
	return h
}

// serve выполняет запрос от имени owner через chi-маршрут pattern.
// owner == "" — запрос без claims.
func serve(handler http.HandlerFunc, method, pattern, target, body, owner string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.MethodFunc(method, pattern, handler)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if owner != "" {
		req = req.WithContext(middleware.WithClaims(req.Context(), &middleware.AuthClaims{Subject: owner}))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
