// feedback.go — сервис отзывов по проектам (только добавление).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/bigkaa/clientportal/internal/domain/model"
	"github.com/bigkaa/clientportal/internal/repository"
)

// maxFeedbackLength — ограничение длины отзыва в символах.
const maxFeedbackLength = 10000

// FeedbackService — сервис отзывов.
type FeedbackService struct {
	projects repository.ProjectRepository
	feedback repository.FeedbackRepository
	cache    *AggregateCache
	logger   *slog.Logger
}

// NewFeedbackService создаёт сервис отзывов.
func NewFeedbackService(
	projects repository.ProjectRepository,
	feedback repository.FeedbackRepository,
	cache *AggregateCache,
	logger *slog.Logger,
) *FeedbackService {
	return &FeedbackService{
		projects: projects,
		feedback: feedback,
		cache:    cache,
		logger:   logger.With(slog.String("component", "feedback_service")),
	}
}

// Submit добавляет отзыв к проекту владельца.
func (s *FeedbackService) Submit(ctx context.Context, ownerID string, projectID int64, authorID, content string) (*model.Feedback, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: текст отзыва обязателен", ErrValidation)
	}
	if utf8.RuneCountInString(content) > maxFeedbackLength {
		return nil, fmt.Errorf("%w: отзыв длиннее %d символов", ErrValidation, maxFeedbackLength)
	}
	if err := ensureProject(ctx, s.projects, ownerID, projectID); err != nil {
		return nil, err
	}

	f := &model.Feedback{ProjectID: projectID, AuthorID: authorID, Content: content}
	if err := s.feedback.Create(ctx, f); err != nil {
		return nil, mapRepoError("создание отзыва", err)
	}
	s.cache.Invalidate(ownerID)

	s.logger.Info("Отзыв добавлен",
		slog.Int64("project_id", projectID),
		slog.Int64("feedback_id", f.ID),
		slog.String("author_id", authorID),
	)
	return f, nil
}

// ListByProject возвращает отзывы проекта, новые первыми.
func (s *FeedbackService) ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.Feedback, error) {
	if err := ensureProject(ctx, s.projects, ownerID, projectID); err != nil {
		return nil, err
	}
	items, err := s.feedback.ListByProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("получение отзывов: %w", err)
	}
	return items, nil
}

// ListAll возвращает отзывы по всем проектам владельца.
func (s *FeedbackService) ListAll(ctx context.Context, ownerID string) ([]*model.Feedback, error) {
	items, err := s.feedback.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("получение отзывов: %w", err)
	}
	return items, nil
}
