package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/clientportal/internal/domain/model"
)

// TodoRepository — интерфейс CRUD для таблицы todos.
// Владение задачей определяется владельцем её проекта.
type TodoRepository interface {
	Create(ctx context.Context, t *model.Todo) error
	GetByID(ctx context.Context, ownerID string, id int64) (*model.Todo, error)
	ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error)
	// ListByProjects возвращает задачи набора проектов владельца (страница списка проектов).
	ListByProjects(ctx context.Context, ownerID string, projectIDs []int64) ([]*model.Todo, error)
	// Update обновляет название, статус, исполнителя и срок.
	Update(ctx context.Context, ownerID string, t *model.Todo) error
	Delete(ctx context.Context, ownerID string, id int64) error
}

// todoRepo — реализация TodoRepository.
type todoRepo struct {
	db DBTX
}

// NewTodoRepository создаёт репозиторий задач.
func NewTodoRepository(db DBTX) TodoRepository {
	return &todoRepo{db: db}
}

const todoSelect = `
	SELECT t.id, t.project_id, t.title, t.status, t.created_by, t.assigned_to,
		t.due_date, t.created_at, t.updated_at
	FROM todos t
	JOIN projects p ON p.id = t.project_id`

func scanTodo(row pgx.Row) (*model.Todo, error) {
	t := &model.Todo{}
	var status string
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &status, &t.CreatedBy, &t.AssignedTo,
		&t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = model.TodoStatusOrDefault(status)
	return t, nil
}

func (r *todoRepo) Create(ctx context.Context, t *model.Todo) error {
	query := `
		INSERT INTO todos (project_id, title, status, created_by, assigned_to, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		t.ProjectID, t.Title, string(t.Status), t.CreatedBy, t.AssignedTo, t.DueDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: проект %d", ErrReference, t.ProjectID)
		}
		return fmt.Errorf("ошибка создания задачи: %w", err)
	}
	return nil
}

func (r *todoRepo) GetByID(ctx context.Context, ownerID string, id int64) (*model.Todo, error) {
	t, err := scanTodo(r.db.QueryRow(ctx, todoSelect+` WHERE p.owner_id = $1 AND t.id = $2`, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения задачи: %w", err)
	}
	return t, nil
}

func (r *todoRepo) ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.Todo, error) {
	query := todoSelect + `
		WHERE p.owner_id = $1 AND t.project_id = $2
		ORDER BY t.created_at DESC, t.id DESC`
	return r.list(ctx, query, ownerID, projectID)
}

func (r *todoRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	query := todoSelect + `
		WHERE p.owner_id = $1
		ORDER BY t.created_at DESC, t.id DESC`
	return r.list(ctx, query, ownerID)
}

func (r *todoRepo) ListByProjects(ctx context.Context, ownerID string, projectIDs []int64) ([]*model.Todo, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	query := todoSelect + `
		WHERE p.owner_id = $1 AND t.project_id = ANY($2)
		ORDER BY t.project_id, t.created_at DESC, t.id DESC`
	return r.list(ctx, query, ownerID, projectIDs)
}

func (r *todoRepo) list(ctx context.Context, query string, args ...any) ([]*model.Todo, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка задач: %w", err)
	}
	defer rows.Close()

	var result []*model.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования задачи: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (r *todoRepo) Update(ctx context.Context, ownerID string, t *model.Todo) error {
	query := `
		UPDATE todos
		SET title = $3, status = $4, assigned_to = $5, due_date = $6, updated_at = now()
		WHERE id = $2
			AND project_id IN (SELECT id FROM projects WHERE owner_id = $1)
		RETURNING project_id, created_by, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		ownerID, t.ID, t.Title, string(t.Status), t.AssignedTo, t.DueDate,
	).Scan(&t.ProjectID, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления задачи: %w", err)
	}
	return nil
}

func (r *todoRepo) Delete(ctx context.Context, ownerID string, id int64) error {
	query := `
		DELETE FROM todos
		WHERE id = $2
			AND project_id IN (SELECT id FROM projects WHERE owner_id = $1)`

	tag, err := r.db.Exec(ctx, query, ownerID, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
