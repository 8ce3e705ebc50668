package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/clientportal/internal/domain/model"
)

// ProjectRepository — интерфейс CRUD для таблицы projects.
type ProjectRepository interface {
	// Create создаёт проект. Заполняет ID, CreatedAt и ClientName.
	Create(ctx context.Context, p *model.Project) error
	// GetByID возвращает проект владельца.
	GetByID(ctx context.Context, ownerID string, id int64) (*model.Project, error)
	// ListByOwner возвращает проекты владельца с фильтрацией,
	// свежие (по последней активности) первыми. limit <= 0 — без ограничения.
	ListByOwner(ctx context.Context, ownerID string, filters ProjectListFilters, limit, offset int) ([]*model.Project, error)
	// Count возвращает количество проектов владельца с фильтрацией.
	Count(ctx context.Context, ownerID string, filters ProjectListFilters) (int, error)
	// ListWithClient возвращает проекты владельца, привязанные к клиенту,
	// в порядке создания.
	ListWithClient(ctx context.Context, ownerID string) ([]*model.Project, error)
	// ListByClient возвращает проекты одного клиента.
	ListByClient(ctx context.Context, ownerID, clientID string) ([]*model.Project, error)
	// Update полностью заменяет изменяемые поля проекта.
	Update(ctx context.Context, p *model.Project) error
	// Delete удаляет проект вместе с задачами, файлами и отзывами.
	Delete(ctx context.Context, ownerID string, id int64) error
	// Snapshot возвращает токен версии данных владельца.
	// Токен меняется при любом изменении проектов, клиентов или отзывов.
	Snapshot(ctx context.Context, ownerID string) (string, error)
}

// ProjectListFilters — фильтры для списка проектов.
type ProjectListFilters struct {
	Status   *string
	Priority *string
	ClientID *string
	// Query — подстрока в названии или описании (без учёта регистра)
	Query *string
}

// projectRepo — реализация ProjectRepository.
type projectRepo struct {
	db DBTX
}

// NewProjectRepository создаёт репозиторий проектов.
func NewProjectRepository(db DBTX) ProjectRepository {
	return &projectRepo{db: db}
}

// projectSelect — SELECT проектов с именем клиента из clients.
const projectSelect = `
	SELECT p.id, p.owner_id, p.title, p.description, p.client_id::text, c.name,
		p.status, p.priority, p.progress, p.due_date, p.created_at, p.updated_at
	FROM projects p
	LEFT JOIN clients c ON c.id = p.client_id`

func scanProject(row pgx.Row) (*model.Project, error) {
	p := &model.Project{}
	var status, priority string
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.ClientID, &p.ClientName,
		&status, &priority, &p.Progress, &p.DueDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = model.ProjectStatusOrDefault(status)
	p.Priority = model.PriorityOrDefault(priority)
	return p, nil
}

func (r *projectRepo) queryProjects(ctx context.Context, query string, args ...any) ([]*model.Project, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка проектов: %w", err)
	}
	defer rows.Close()

	var result []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования проекта: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	query := `
		INSERT INTO projects (owner_id, title, description, client_id,
			status, priority, progress, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at,
			(SELECT name FROM clients WHERE id = client_id)`

	err := r.db.QueryRow(ctx, query,
		p.OwnerID, p.Title, p.Description, p.ClientID,
		string(p.Status), string(p.Priority), p.Progress, p.DueDate,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.ClientName)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: клиент %s", ErrReference, derefOr(p.ClientID, ""))
		}
		return fmt.Errorf("ошибка создания проекта: %w", err)
	}
	return nil
}

func (r *projectRepo) GetByID(ctx context.Context, ownerID string, id int64) (*model.Project, error) {
	query := projectSelect + ` WHERE p.owner_id = $1 AND p.id = $2`

	p, err := scanProject(r.db.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения проекта: %w", err)
	}
	return p, nil
}

// buildProjectWhere строит WHERE-условие для проектов владельца.
// Владелец всегда занимает $1.
func buildProjectWhere(ownerID string, filters ProjectListFilters) (string, []any) {
	conditions := []string{"p.owner_id = $1"}
	args := []any{ownerID}
	argNum := 2

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argNum))
		args = append(args, *filters.Status)
		argNum++
	}
	if filters.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("p.priority = $%d", argNum))
		args = append(args, *filters.Priority)
		argNum++
	}
	if filters.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("p.client_id::text = $%d", argNum))
		args = append(args, *filters.ClientID)
		argNum++
	}
	if filters.Query != nil && strings.TrimSpace(*filters.Query) != "" {
		conditions = append(conditions,
			fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", argNum, argNum))
		args = append(args, "%"+strings.TrimSpace(*filters.Query)+"%")
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *projectRepo) ListByOwner(ctx context.Context, ownerID string, filters ProjectListFilters, limit, offset int) ([]*model.Project, error) {
	where, args := buildProjectWhere(ownerID, filters)
	argNum := len(args) + 1

	query := fmt.Sprintf(`%s
		%s
		ORDER BY COALESCE(p.updated_at, p.created_at) DESC, p.id DESC
		LIMIT $%d OFFSET $%d`, projectSelect, where, argNum, argNum+1)

	// LIMIT NULL в PostgreSQL означает отсутствие ограничения
	var lim any = limit
	if limit <= 0 {
		lim = nil
	}
	args = append(args, lim, offset)
	return r.queryProjects(ctx, query, args...)
}

func (r *projectRepo) Count(ctx context.Context, ownerID string, filters ProjectListFilters) (int, error) {
	where, args := buildProjectWhere(ownerID, filters)

	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects p `+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта проектов: %w", err)
	}
	return count, nil
}

func (r *projectRepo) ListWithClient(ctx context.Context, ownerID string) ([]*model.Project, error) {
	query := projectSelect + `
		WHERE p.owner_id = $1 AND p.client_id IS NOT NULL
		ORDER BY p.created_at, p.id`
	return r.queryProjects(ctx, query, ownerID)
}

func (r *projectRepo) ListByClient(ctx context.Context, ownerID, clientID string) ([]*model.Project, error) {
	query := projectSelect + `
		WHERE p.owner_id = $1 AND p.client_id::text = $2
		ORDER BY p.created_at, p.id`
	return r.queryProjects(ctx, query, ownerID, clientID)
}

func (r *projectRepo) Update(ctx context.Context, p *model.Project) error {
	query := `
		UPDATE projects
		SET title = $3, description = $4, client_id = $5, status = $6,
			priority = $7, progress = $8, due_date = $9, updated_at = now()
		WHERE owner_id = $1 AND id = $2
		RETURNING created_at, updated_at,
			(SELECT name FROM clients WHERE id = client_id)`

	err := r.db.QueryRow(ctx, query,
		p.OwnerID, p.ID, p.Title, p.Description, p.ClientID,
		string(p.Status), string(p.Priority), p.Progress, p.DueDate,
	).Scan(&p.CreatedAt, &p.UpdatedAt, &p.ClientName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: клиент %s", ErrReference, derefOr(p.ClientID, ""))
		}
		return fmt.Errorf("ошибка обновления проекта: %w", err)
	}
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, ownerID string, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления проекта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *projectRepo) Snapshot(ctx context.Context, ownerID string) (string, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM projects WHERE owner_id = $1),
			(SELECT COALESCE(SUM(id), 0)::bigint FROM projects WHERE owner_id = $1),
			(SELECT MAX(COALESCE(updated_at, created_at)) FROM projects WHERE owner_id = $1),
			(SELECT COUNT(*) FROM feedback f JOIN projects p ON p.id = f.project_id WHERE p.owner_id = $1),
			(SELECT MAX(f.created_at) FROM feedback f JOIN projects p ON p.id = f.project_id WHERE p.owner_id = $1),
			(SELECT COUNT(*) FROM clients WHERE owner_id = $1),
			(SELECT MAX(updated_at) FROM clients WHERE owner_id = $1)`

	var (
		projects, idSum, feedback, clients int64
		projectsAt, feedbackAt, clientsAt  *time.Time
	)
	err := r.db.QueryRow(ctx, query, ownerID).Scan(
		&projects, &idSum, &projectsAt, &feedback, &feedbackAt, &clients, &clientsAt,
	)
	if err != nil {
		return "", fmt.Errorf("ошибка получения версии данных: %w", err)
	}

	return fmt.Sprintf("p%d.%d.%d/f%d.%d/c%d.%d",
		projects, idSum, unixNano(projectsAt),
		feedback, unixNano(feedbackAt),
		clients, unixNano(clientsAt),
	), nil
}

func unixNano(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
