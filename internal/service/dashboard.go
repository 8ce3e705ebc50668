// dashboard.go — сводка по проектам владельца для главной страницы.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/bigkaa/clientportal/internal/domain/view"
	"github.com/bigkaa/clientportal/internal/repository"
)

// DashboardService — сервис сводки.
type DashboardService struct {
	projects repository.ProjectRepository
	logger   *slog.Logger
}

// NewDashboardService создаёт сервис сводки.
func NewDashboardService(projects repository.ProjectRepository, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		projects: projects,
		logger:   logger.With(slog.String("component", "dashboard_service")),
	}
}

// Stats считает статистику по всем проектам владельца на момент now.
func (s *DashboardService) Stats(ctx context.Context, ownerID string, now time.Time) (*view.DashboardStats, error) {
	projects, err := s.projects.ListByOwner(ctx, ownerID, repository.ProjectListFilters{}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("получение проектов: %w", err)
	}
	stats := view.Dashboard(lo.FromSlicePtr(projects), now)
	return &stats, nil
}
