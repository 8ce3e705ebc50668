// todos.go — сервис задач проекта.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/bigkaa/clientportal/internal/domain/model"
	"github.com/bigkaa/clientportal/internal/repository"
)

// TodoInput — данные задачи от пользователя.
// Пустой Status берётся из старого флага Completed, а без него означает todo.
type TodoInput struct {
	Title      string
	Status     string
	Completed  *bool
	AssignedTo *string
	DueDate    *time.Time
}

// TodoService — сервис задач.
type TodoService struct {
	projects repository.ProjectRepository
	todos    repository.TodoRepository
	logger   *slog.Logger
}

// NewTodoService создаёт сервис задач.
func NewTodoService(projects repository.ProjectRepository, todos repository.TodoRepository, logger *slog.Logger) *TodoService {
	return &TodoService{
		projects: projects,
		todos:    todos,
		logger:   logger.With(slog.String("component", "todo_service")),
	}
}

// ListByProject возвращает задачи проекта. ErrNotFound для чужого проекта.
func (s *TodoService) ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.Todo, error) {
	if err := ensureProject(ctx, s.projects, ownerID, projectID); err != nil {
		return nil, err
	}
	todos, err := s.todos.ListByProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return todos, nil
}

// ListAll возвращает задачи по всем проектам владельца.
func (s *TodoService) ListAll(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	todos, err := s.todos.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return todos, nil
}

// ListByProjects возвращает задачи указанных проектов владельца.
// Чужие и несуществующие проекты дают пустой результат.
func (s *TodoService) ListByProjects(ctx context.Context, ownerID string, projectIDs []int64) ([]*model.Todo, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	todos, err := s.todos.ListByProjects(ctx, ownerID, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return todos, nil
}

// Create создаёт задачу в проекте владельца.
func (s *TodoService) Create(ctx context.Context, ownerID string, projectID int64, in TodoInput) (*model.Todo, error) {
	if err := ensureProject(ctx, s.projects, ownerID, projectID); err != nil {
		return nil, err
	}

	t := &model.Todo{ProjectID: projectID, CreatedBy: ownerID}
	if err := applyTodo(t, in); err != nil {
		return nil, err
	}
	if err := s.todos.Create(ctx, t); err != nil {
		return nil, mapRepoError("создание задачи", err)
	}

	s.logger.Info("Задача создана",
		slog.Int64("project_id", projectID),
		slog.Int64("todo_id", t.ID),
	)
	return t, nil
}

// Update заменяет название, статус, исполнителя и срок задачи.
func (s *TodoService) Update(ctx context.Context, ownerID string, id int64, in TodoInput) (*model.Todo, error) {
	t, err := s.todos.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, mapRepoError("получение задачи", err)
	}
	if err := applyTodo(t, in); err != nil {
		return nil, err
	}
	if err := s.todos.Update(ctx, ownerID, t); err != nil {
		return nil, mapRepoError("обновление задачи", err)
	}

	s.logger.Info("Задача обновлена",
		slog.Int64("todo_id", id),
		slog.String("status", t.Status.String()),
	)
	return t, nil
}

// Delete удаляет задачу.
func (s *TodoService) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := s.todos.Delete(ctx, ownerID, id); err != nil {
		return mapRepoError("удаление задачи", err)
	}
	s.logger.Info("Задача удалена", slog.Int64("todo_id", id))
	return nil
}

func applyTodo(t *model.Todo, in TodoInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("%w: название задачи обязательно", ErrValidation)
	}
	if len(title) > maxNameLength {
		return fmt.Errorf("%w: название задачи длиннее %d символов", ErrValidation, maxNameLength)
	}

	status := model.TodoStatusFromCompleted(lo.FromPtr(in.Completed))
	if in.Status != "" {
		st, ok := model.ParseTodoStatus(in.Status)
		if !ok {
			return fmt.Errorf("%w: неизвестный статус задачи '%s'", ErrValidation, in.Status)
		}
		status = st
	}

	t.Title = title
	t.Status = status
	t.AssignedTo = trimToNil(in.AssignedTo)
	t.DueDate = in.DueDate
	return nil
}

// ensureProject проверяет, что проект существует и принадлежит владельцу.
func ensureProject(ctx context.Context, projects repository.ProjectRepository, ownerID string, projectID int64) error {
	if _, err := projects.GetByID(ctx, ownerID, projectID); err != nil {
		return mapRepoError("получение проекта", err)
	}
	return nil
}
