package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/bigkaa/clientportal/internal/domain/model"
	"github.com/bigkaa/clientportal/internal/repository"
)

// --- Mock repositories ---

type mockClientRepo struct {
	createFn       func(ctx context.Context, c *model.Client) error
	getByIDFn      func(ctx context.Context, ownerID, id string) (*model.Client, error)
	getByNameKeyFn func(ctx context.Context, ownerID, nameKey string) (*model.Client, error)
	listFn         func(ctx context.Context, ownerID string) ([]*model.Client, error)
	updateFn       func(ctx context.Context, c *model.Client) error
	deleteFn       func(ctx context.Context, ownerID, id string) error
}

func (m *mockClientRepo) Create(ctx context.Context, c *model.Client) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	return nil
}

func (m *mockClientRepo) GetByID(ctx context.Context, ownerID, id string) (*model.Client, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, ownerID, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockClientRepo) GetByNameKey(ctx context.Context, ownerID, nameKey string) (*model.Client, error) {
	if m.getByNameKeyFn != nil {
		return m.getByNameKeyFn(ctx, ownerID, nameKey)
	}
	return nil, repository.ErrNotFound
}

func (m *mockClientRepo) List(ctx context.Context, ownerID string) ([]*model.Client, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockClientRepo) Update(ctx context.Context, c *model.Client) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, c)
	}
	return nil
}

func (m *mockClientRepo) Delete(ctx context.Context, ownerID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, id)
	}
	return repository.ErrNotFound
}

type mockProjectRepo struct {
	createFn         func(ctx context.Context, p *model.Project) error
	getByIDFn        func(ctx context.Context, ownerID string, id int64) (*model.Project, error)
	listByOwnerFn    func(ctx context.Context, ownerID string, f repository.ProjectListFilters, limit, offset int) ([]*model.Project, error)
	countFn          func(ctx context.Context, ownerID string, f repository.ProjectListFilters) (int, error)
	listWithClientFn func(ctx context.Context, ownerID string) ([]*model.Project, error)
	listByClientFn   func(ctx context.Context, ownerID, clientID string) ([]*model.Project, error)
	updateFn         func(ctx context.Context, p *model.Project) error
	deleteFn         func(ctx context.Context, ownerID string, id int64) error
	snapshotFn       func(ctx context.Context, ownerID string) (string, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockProjectRepo) GetByID(ctx context.Context, ownerID string, id int64) (*model.Project, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, ownerID, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockProjectRepo) ListByOwner(ctx context.Context, ownerID string, f repository.ProjectListFilters, limit, offset int) ([]*model.Project, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID, f, limit, offset)
	}
	return nil, nil
}

func (m *mockProjectRepo) Count(ctx context.Context, ownerID string, f repository.ProjectListFilters) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, ownerID, f)
	}
	return 0, nil
}

func (m *mockProjectRepo) ListWithClient(ctx context.Context, ownerID string) ([]*model.Project, error) {
	if m.listWithClientFn != nil {
		return m.listWithClientFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockProjectRepo) ListByClient(ctx context.Context, ownerID, clientID string) ([]*model.Project, error) {
	if m.listByClientFn != nil {
		return m.listByClientFn(ctx, ownerID, clientID)
	}
	return nil, nil
}

func (m *mockProjectRepo) Update(ctx context.Context, p *model.Project) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, p)
	}
	return nil
}

func (m *mockProjectRepo) Delete(ctx context.Context, ownerID string, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, id)
	}
	return repository.ErrNotFound
}

func (m *mockProjectRepo) Snapshot(ctx context.Context, ownerID string) (string, error) {
	if m.snapshotFn != nil {
		return m.snapshotFn(ctx, ownerID)
	}
	return "v1", nil
}

type mockFeedbackRepo struct {
	createFn          func(ctx context.Context, f *model.Feedback) error
	listByProjectFn   func(ctx context.Context, ownerID string, projectID int64) ([]*model.Feedback, error)
	listByOwnerFn     func(ctx context.Context, ownerID string) ([]*model.Feedback, error)
	statsByOwnerFn    func(ctx context.Context, ownerID string) ([]model.FeedbackStat, error)
	statsByProjectsFn func(ctx context.Context, ids []int64) ([]model.FeedbackStat, error)
}

func (m *mockFeedbackRepo) Create(ctx context.Context, f *model.Feedback) error {
	if m.createFn != nil {
		return m.createFn(ctx, f)
	}
	return nil
}

func (m *mockFeedbackRepo) ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.Feedback, error) {
	if m.listByProjectFn != nil {
		return m.listByProjectFn(ctx, ownerID, projectID)
	}
	return nil, nil
}

func (m *mockFeedbackRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Feedback, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockFeedbackRepo) StatsByOwner(ctx context.Context, ownerID string) ([]model.FeedbackStat, error) {
	if m.statsByOwnerFn != nil {
		return m.statsByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockFeedbackRepo) StatsByProjects(ctx context.Context, ids []int64) ([]model.FeedbackStat, error) {
	if m.statsByProjectsFn != nil {
		return m.statsByProjectsFn(ctx, ids)
	}
	return nil, nil
}

type mockTodoRepo struct {
	createFn        func(ctx context.Context, t *model.Todo) error
	getByIDFn       func(ctx context.Context, ownerID string, id int64) (*model.Todo, error)
	listByProjectFn func(ctx context.Context, ownerID string, projectID int64) ([]*model.Todo, error)
	listByOwnerFn   func(ctx context.Context, ownerID string) ([]*model.Todo, error)
	listByIDsFn     func(ctx context.Context, ownerID string, projectIDs []int64) ([]*model.Todo, error)
	updateFn        func(ctx context.Context, ownerID string, t *model.Todo) error
	deleteFn        func(ctx context.Context, ownerID string, id int64) error
}

func (m *mockTodoRepo) ListByProjects(ctx context.Context, ownerID string, projectIDs []int64) ([]*model.Todo, error) {
	if m.listByIDsFn != nil {
		return m.listByIDsFn(ctx, ownerID, projectIDs)
	}
	return nil, nil
}

func (m *mockTodoRepo) Create(ctx context.Context, t *model.Todo) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	return nil
}

func (m *mockTodoRepo) GetByID(ctx context.Context, ownerID string, id int64) (*model.Todo, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, ownerID, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockTodoRepo) ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.Todo, error) {
	if m.listByProjectFn != nil {
		return m.listByProjectFn(ctx, ownerID, projectID)
	}
	return nil, nil
}

func (m *mockTodoRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockTodoRepo) Update(ctx context.Context, ownerID string, t *model.Todo) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, ownerID, t)
	}
	return nil
}

func (m *mockTodoRepo) Delete(ctx context.Context, ownerID string, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, id)
	}
	return repository.ErrNotFound
}

type mockFileRepo struct {
	createFn        func(ctx context.Context, f *model.File) error
	getByIDFn       func(ctx context.Context, ownerID string, id int64) (*model.File, error)
	listByProjectFn func(ctx context.Context, ownerID string, projectID int64) ([]*model.File, error)
	listByOwnerFn   func(ctx context.Context, ownerID string) ([]*model.File, error)
	deleteFn        func(ctx context.Context, ownerID string, id int64) error
}

func (m *mockFileRepo) Create(ctx context.Context, f *model.File) error {
	if m.createFn != nil {
		return m.createFn(ctx, f)
	}
	return nil
}

func (m *mockFileRepo) GetByID(ctx context.Context, ownerID string, id int64) (*model.File, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, ownerID, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockFileRepo) ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.File, error) {
	if m.listByProjectFn != nil {
		return m.listByProjectFn(ctx, ownerID, projectID)
	}
	return nil, nil
}

func (m *mockFileRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.File, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockFileRepo) Delete(ctx context.Context, ownerID string, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, id)
	}
	return repository.ErrNotFound
}

// mockTransactor выполняет fn без транзакции поверх переданных репозиториев.
type mockTransactor struct {
	repos repository.Repos
	calls int
}

func (m *mockTransactor) WithRepos(_ context.Context, fn func(repos repository.Repos) error) error {
	m.calls++
	return fn(m.repos)
}

// ownedProject возвращает getByIDFn, находящий проект только у owner-1.
func ownedProject(id int64) func(context.Context, string, int64) (*model.Project, error) {
	return func(_ context.Context, ownerID string, got int64) (*model.Project, error) {
		if ownerID != "owner-1" || got != id {
			return nil, repository.ErrNotFound
		}
		return &model.Project{ID: id, OwnerID: ownerID, Title: "Project", Status: model.ProjectStatusActive}, nil
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
