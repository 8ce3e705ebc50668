// projects.go — сервис проектов: CRUD, список с фильтрами, детальная карточка.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/clientportal/internal/domain/model"
	"github.com/bigkaa/clientportal/internal/repository"
)

// ProjectInput — данные проекта от пользователя.
// Update заменяет все поля целиком; пустые Status и Priority означают значения по умолчанию.
type ProjectInput struct {
	Title       string
	Description *string
	ClientID    *string
	Status      string
	Priority    string
	Progress    int
	DueDate     *time.Time
}

// ProjectFilters — фильтры списка проектов.
type ProjectFilters struct {
	Status   *string
	Priority *string
	ClientID *string
	Query    *string
}

// ProjectList — страница списка проектов.
type ProjectList struct {
	Items   []*model.Project
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// ProjectDetail — проект со связанными задачами, файлами и отзывами.
type ProjectDetail struct {
	Project  *model.Project
	Todos    []*model.Todo
	Files    []*model.File
	Feedback []*model.Feedback
}

// ProjectService — сервис проектов.
type ProjectService struct {
	projects repository.ProjectRepository
	clients  repository.ClientRepository
	todos    repository.TodoRepository
	files    repository.FileRepository
	feedback repository.FeedbackRepository
	cache    *AggregateCache
	logger   *slog.Logger
}

// NewProjectService создаёт сервис проектов.
func NewProjectService(repos repository.Repos, cache *AggregateCache, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		projects: repos.Projects,
		clients:  repos.Clients,
		todos:    repos.Todos,
		files:    repos.Files,
		feedback: repos.Feedback,
		cache:    cache,
		logger:   logger.With(slog.String("component", "project_service")),
	}
}

// List возвращает страницу проектов владельца.
func (s *ProjectService) List(ctx context.Context, ownerID string, f ProjectFilters, limit, offset int) (*ProjectList, error) {
	if f.Status != nil {
		if _, ok := model.ParseProjectStatus(*f.Status); !ok {
			return nil, fmt.Errorf("%w: неизвестный статус '%s'", ErrValidation, *f.Status)
		}
	}
	if f.Priority != nil {
		if _, ok := model.ParsePriority(*f.Priority); !ok {
			return nil, fmt.Errorf("%w: неизвестный приоритет '%s'", ErrValidation, *f.Priority)
		}
	}

	filters := repository.ProjectListFilters{
		Status:   f.Status,
		Priority: f.Priority,
		ClientID: f.ClientID,
		Query:    f.Query,
	}
	items, err := s.projects.ListByOwner(ctx, ownerID, filters, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("получение проектов: %w", err)
	}
	total, err := s.projects.Count(ctx, ownerID, filters)
	if err != nil {
		return nil, fmt.Errorf("подсчёт проектов: %w", err)
	}

	return &ProjectList{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(items) < total,
	}, nil
}

// Get возвращает проект владельца.
func (s *ProjectService) Get(ctx context.Context, ownerID string, id int64) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, mapRepoError("получение проекта", err)
	}
	return p, nil
}

// Detail возвращает проект вместе с задачами, файлами и отзывами.
func (s *ProjectService) Detail(ctx context.Context, ownerID string, id int64) (*ProjectDetail, error) {
	p, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	todos, err := s.todos.ListByProject(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	files, err := s.files.ListByProject(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("получение файлов: %w", err)
	}
	feedback, err := s.feedback.ListByProject(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("получение отзывов: %w", err)
	}

	return &ProjectDetail{Project: p, Todos: todos, Files: files, Feedback: feedback}, nil
}

// Create создаёт проект владельца.
func (s *ProjectService) Create(ctx context.Context, ownerID string, in ProjectInput) (*model.Project, error) {
	p := &model.Project{OwnerID: ownerID}
	if err := s.apply(ctx, ownerID, p, in); err != nil {
		return nil, err
	}

	if err := s.projects.Create(ctx, p); err != nil {
		return nil, mapRepoError("создание проекта", err)
	}
	s.cache.Invalidate(ownerID)

	s.logger.Info("Проект создан",
		slog.String("owner_id", ownerID),
		slog.Int64("project_id", p.ID),
		slog.String("status", p.Status.String()),
	)
	return p, nil
}

// Update заменяет изменяемые поля проекта.
func (s *ProjectService) Update(ctx context.Context, ownerID string, id int64, in ProjectInput) (*model.Project, error) {
	p, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, ownerID, p, in); err != nil {
		return nil, err
	}

	if err := s.projects.Update(ctx, p); err != nil {
		return nil, mapRepoError("обновление проекта", err)
	}
	s.cache.Invalidate(ownerID)

	s.logger.Info("Проект обновлён",
		slog.String("owner_id", ownerID),
		slog.Int64("project_id", id),
		slog.String("status", p.Status.String()),
		slog.Int("progress", p.Progress),
	)
	return p, nil
}

// Delete удаляет проект вместе с задачами, файлами и отзывами.
func (s *ProjectService) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := s.projects.Delete(ctx, ownerID, id); err != nil {
		return mapRepoError("удаление проекта", err)
	}
	s.cache.Invalidate(ownerID)

	s.logger.Info("Проект удалён",
		slog.String("owner_id", ownerID),
		slog.Int64("project_id", id),
	)
	return nil
}

// apply проверяет входные данные и переносит их в проект.
// Клиент должен принадлежать тому же владельцу.
func (s *ProjectService) apply(ctx context.Context, ownerID string, p *model.Project, in ProjectInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("%w: название проекта обязательно", ErrValidation)
	}
	if len(title) > maxNameLength {
		return fmt.Errorf("%w: название проекта длиннее %d символов", ErrValidation, maxNameLength)
	}

	status := model.ProjectStatusActive
	if in.Status != "" {
		st, ok := model.ParseProjectStatus(in.Status)
		if !ok {
			return fmt.Errorf("%w: неизвестный статус '%s'", ErrValidation, in.Status)
		}
		status = st
	}
	priority := model.PriorityMedium
	if in.Priority != "" {
		pr, ok := model.ParsePriority(in.Priority)
		if !ok {
			return fmt.Errorf("%w: неизвестный приоритет '%s'", ErrValidation, in.Priority)
		}
		priority = pr
	}

	clientID := trimToNil(in.ClientID)
	if clientID != nil {
		if _, err := uuid.Parse(*clientID); err != nil {
			return fmt.Errorf("%w: некорректный client_id '%s'", ErrValidation, *clientID)
		}
		if _, err := s.clients.GetByID(ctx, ownerID, *clientID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: клиент '%s' не найден", ErrReference, *clientID)
			}
			return fmt.Errorf("получение клиента: %w", err)
		}
	}

	p.Title = title
	p.Description = trimToNil(in.Description)
	p.ClientID = clientID
	p.Status = status
	p.Priority = priority
	p.Progress = in.Progress
	p.DueDate = in.DueDate
	return nil
}
