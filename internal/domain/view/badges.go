// Пакет view — сборка view-моделей для слоя представления.
// Все функции чистые: без I/O, текущее время передаётся параметром.
//
// badges.go — таблицы бейджей для статусов и приоритетов.
// Неизвестное значение получает бейдж значения по умолчанию.
package view

import "github.com/bigkaa/clientportal/internal/domain/model"

// Варианты бейджа (имена вариантов компонента Badge на фронтенде).
const (
	VariantDefault     = "default"
	VariantSecondary   = "secondary"
	VariantDestructive = "destructive"
	VariantOutline     = "outline"
)

// Badge — подпись и стиль бейджа.
type Badge struct {
	// Value — значение перечисления, которому соответствует бейдж
	Value     string `json:"value"`
	Label     string `json:"label"`
	Variant   string `json:"variant"`
	Color     string `json:"color,omitempty"`
	TextColor string `json:"textColor,omitempty"`
}

var projectStatusBadges = map[model.ProjectStatus]Badge{
	model.ProjectStatusActive: {
		Value: "active", Label: "Active", Variant: VariantDefault,
		Color: "bg-green-500", TextColor: "text-green-700 dark:text-green-400",
	},
	model.ProjectStatusCompleted: {
		Value: "completed", Label: "Completed", Variant: VariantSecondary,
		Color: "bg-blue-500", TextColor: "text-blue-700 dark:text-blue-400",
	},
	model.ProjectStatusArchived: {
		Value: "archived", Label: "Archived", Variant: VariantDestructive,
		Color: "bg-gray-500", TextColor: "text-gray-700 dark:text-gray-400",
	},
	model.ProjectStatusAwaitingFeedback: {
		Value: "awaiting-feedback", Label: "Awaiting Feedback", Variant: VariantSecondary,
		Color: "bg-yellow-500", TextColor: "text-yellow-700 dark:text-yellow-400",
	},
}

var clientStatusBadges = map[model.ClientStatus]Badge{
	model.ClientStatusOnline: {
		Value: "online", Label: "Online", Variant: VariantDefault,
		Color: "bg-green-500", TextColor: "text-green-600 dark:text-green-400",
	},
	model.ClientStatusOffline: {
		Value: "offline", Label: "Offline", Variant: VariantSecondary,
		Color: "bg-slate-400", TextColor: "text-slate-500 dark:text-slate-400",
	},
	model.ClientStatusFeedbackPending: {
		Value: "feedback-pending", Label: "Feedback Pending", Variant: VariantDestructive,
		Color: "bg-orange-500", TextColor: "text-orange-600 dark:text-orange-400",
	},
	model.ClientStatusInactive: {
		Value: "inactive", Label: "Inactive", Variant: VariantOutline,
		Color: "bg-slate-300", TextColor: "text-slate-400 dark:text-slate-500",
	},
}

var priorityBadges = map[model.Priority]Badge{
	model.PriorityHigh:   {Value: "high", Label: "High", Variant: VariantDestructive},
	model.PriorityMedium: {Value: "medium", Label: "Medium", Variant: VariantSecondary},
	model.PriorityLow:    {Value: "low", Label: "Low", Variant: VariantOutline},
}

var todoStatusBadges = map[model.TodoStatus]Badge{
	model.TodoStatusTodo:       {Value: "todo", Label: "To Do", Variant: VariantOutline},
	model.TodoStatusInProgress: {Value: "in_progress", Label: "In Progress", Variant: VariantSecondary},
	model.TodoStatusDone:       {Value: "done", Label: "Done", Variant: VariantDefault},
}

// ProjectStatusBadge возвращает бейдж статуса проекта (active для неизвестных).
func ProjectStatusBadge(s model.ProjectStatus) Badge {
	if b, ok := projectStatusBadges[s]; ok {
		return b
	}
	return projectStatusBadges[model.ProjectStatusActive]
}

// ClientStatusBadge возвращает бейдж статуса клиента (inactive для неизвестных).
func ClientStatusBadge(s model.ClientStatus) Badge {
	if b, ok := clientStatusBadges[s]; ok {
		return b
	}
	return clientStatusBadges[model.ClientStatusInactive]
}

// PriorityBadge возвращает бейдж приоритета (medium для неизвестных).
func PriorityBadge(p model.Priority) Badge {
	if b, ok := priorityBadges[p]; ok {
		return b
	}
	return priorityBadges[model.PriorityMedium]
}

// TodoStatusBadge возвращает бейдж статуса задачи (todo для неизвестных).
func TodoStatusBadge(s model.TodoStatus) Badge {
	if b, ok := todoStatusBadges[s]; ok {
		return b
	}
	return todoStatusBadges[model.TodoStatusTodo]
}
