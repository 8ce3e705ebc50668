package repository

import (
	"context"
	"fmt"

	"github.com/bigkaa/clientportal/internal/domain/model"
)

// FeedbackRepository — доступ к таблице feedback (только добавление).
type FeedbackRepository interface {
	// Create добавляет отзыв. Заполняет ID и CreatedAt.
	Create(ctx context.Context, f *model.Feedback) error
	// ListByProject возвращает отзывы по проекту владельца, новые первыми.
	ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.Feedback, error)
	// ListByOwner возвращает отзывы по всем проектам владельца, новые первыми.
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Feedback, error)
	// StatsByOwner возвращает количество и время последнего отзыва
	// по каждому проекту владельца, у которого есть отзывы.
	StatsByOwner(ctx context.Context, ownerID string) ([]model.FeedbackStat, error)
	// StatsByProjects возвращает ту же статистику для указанных проектов.
	StatsByProjects(ctx context.Context, projectIDs []int64) ([]model.FeedbackStat, error)
}

// feedbackRepo — реализация FeedbackRepository.
type feedbackRepo struct {
	db DBTX
}

// NewFeedbackRepository создаёт репозиторий отзывов.
func NewFeedbackRepository(db DBTX) FeedbackRepository {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) Create(ctx context.Context, f *model.Feedback) error {
	query := `
		INSERT INTO feedback (project_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, f.ProjectID, f.AuthorID, f.Content).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: проект %d", ErrReference, f.ProjectID)
		}
		return fmt.Errorf("ошибка создания отзыва: %w", err)
	}
	return nil
}

func (r *feedbackRepo) ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.Feedback, error) {
	query := `
		SELECT f.id, f.project_id, f.author_id, f.content, f.created_at
		FROM feedback f
		JOIN projects p ON p.id = f.project_id
		WHERE p.owner_id = $1 AND f.project_id = $2
		ORDER BY f.created_at DESC, f.id DESC`
	return r.list(ctx, query, ownerID, projectID)
}

func (r *feedbackRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Feedback, error) {
	query := `
		SELECT f.id, f.project_id, f.author_id, f.content, f.created_at
		FROM feedback f
		JOIN projects p ON p.id = f.project_id
		WHERE p.owner_id = $1
		ORDER BY f.created_at DESC, f.id DESC`
	return r.list(ctx, query, ownerID)
}

func (r *feedbackRepo) list(ctx context.Context, query string, args ...any) ([]*model.Feedback, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отзывов: %w", err)
	}
	defer rows.Close()

	var result []*model.Feedback
	for rows.Next() {
		f := &model.Feedback{}
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.AuthorID, &f.Content, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования отзыва: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *feedbackRepo) StatsByOwner(ctx context.Context, ownerID string) ([]model.FeedbackStat, error) {
	query := `
		SELECT f.project_id, COUNT(*), MAX(f.created_at)
		FROM feedback f
		JOIN projects p ON p.id = f.project_id
		WHERE p.owner_id = $1
		GROUP BY f.project_id
		ORDER BY f.project_id`
	return r.stats(ctx, query, ownerID)
}

func (r *feedbackRepo) StatsByProjects(ctx context.Context, projectIDs []int64) ([]model.FeedbackStat, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT project_id, COUNT(*), MAX(created_at)
		FROM feedback
		WHERE project_id = ANY($1)
		GROUP BY project_id
		ORDER BY project_id`
	return r.stats(ctx, query, projectIDs)
}

func (r *feedbackRepo) stats(ctx context.Context, query string, args ...any) ([]model.FeedbackStat, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения статистики отзывов: %w", err)
	}
	defer rows.Close()

	var result []model.FeedbackStat
	for rows.Next() {
		var s model.FeedbackStat
		if err := rows.Scan(&s.ProjectID, &s.Count, &s.LastAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования статистики отзывов: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
