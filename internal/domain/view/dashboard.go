package view

import (
	"time"

	"github.com/samber/lo"

	"github.com/bigkaa/clientportal/internal/domain/model"
)

// DashboardStats — карточки дашборда владельца.
type DashboardStats struct {
	TotalProjects    int `json:"totalProjects"`
	Active           int `json:"active"`
	Completed        int `json:"completed"`
	Archived         int `json:"archived"`
	AwaitingFeedback int `json:"awaitingFeedback"`
	Overdue          int `json:"overdue"`
	// AverageProgress — средний прогресс открытых проектов (0..100)
	AverageProgress int `json:"averageProgress"`
	// ByPriority — число открытых проектов по приоритетам
	ByPriority map[model.Priority]int `json:"byPriority"`
	// Recent — последние обновлённые проекты
	Recent []ProjectView `json:"recent"`
}

// recentLimit — число проектов в блоке «недавние».
const recentLimit = 5

// Dashboard считает статистику дашборда по проектам владельца.
// projects ожидаются отсортированными по убыванию последней активности.
func Dashboard(projects []model.Project, now time.Time) DashboardStats {
	counts := lo.CountValuesBy(projects, func(p model.Project) model.ProjectStatus { return p.Status })
	open := lo.Filter(projects, func(p model.Project, _ int) bool { return projectOpen(p.Status) })

	stats := DashboardStats{
		TotalProjects:    len(projects),
		Active:           counts[model.ProjectStatusActive],
		Completed:        counts[model.ProjectStatusCompleted],
		Archived:         counts[model.ProjectStatusArchived],
		AwaitingFeedback: counts[model.ProjectStatusAwaitingFeedback],
		Overdue: lo.CountBy(open, func(p model.Project) bool {
			return p.DueDate != nil && p.DueDate.Before(now)
		}),
		ByPriority: map[model.Priority]int{
			model.PriorityHigh:   0,
			model.PriorityMedium: 0,
			model.PriorityLow:    0,
		},
		Recent: Projects(lo.Slice(projects, 0, recentLimit), nil, now),
	}

	for _, p := range open {
		stats.ByPriority[p.Priority]++
	}
	if len(open) > 0 {
		sum := lo.SumBy(open, func(p model.Project) int { return ProgressBar(p.Progress) })
		stats.AverageProgress = Percent(sum, len(open)*100)
	}
	return stats
}
