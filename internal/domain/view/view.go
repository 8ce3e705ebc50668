package view

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/bigkaa/clientportal/internal/domain/aggregate"
	"github.com/bigkaa/clientportal/internal/domain/model"
	"github.com/bigkaa/clientportal/internal/domain/status"
)

// ProjectView — проект с полями для отображения.
type ProjectView struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description *string             `json:"description,omitempty"`
	ClientID    *string             `json:"clientId,omitempty"`
	ClientName  *string             `json:"clientName,omitempty"`
	Status      model.ProjectStatus `json:"status"`
	Priority    model.Priority      `json:"priority"`
	Progress    int                 `json:"progress"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   *time.Time          `json:"updatedAt,omitempty"`

	StatusBadge   Badge         `json:"statusBadge"`
	PriorityBadge Badge         `json:"priorityBadge"`
	ProgressLabel string        `json:"progressLabel"`
	ProgressBar   int           `json:"progressBar"`
	Initials      string        `json:"initials"`
	AvatarColor   string        `json:"avatarColor"`
	DueLabel      string        `json:"dueLabel,omitempty"`
	IsOverdue     bool          `json:"isOverdue"`
	UpdatedLabel  string        `json:"updatedLabel"`
	Todos         *TodoProgress `json:"todos,omitempty"`
}

// TodoProgress — сводка выполнения задач проекта.
type TodoProgress struct {
	Done    int    `json:"done"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
	Label   string `json:"label"`
}

// ClientView — сводка клиента с полями для отображения.
type ClientView struct {
	aggregate.ClientSummary

	StatusBadge       Badge  `json:"statusBadge"`
	Initials          string `json:"initials"`
	AvatarColor       string `json:"avatarColor"`
	ProjectsLabel     string `json:"projectsLabel"`
	ActiveLabel       string `json:"activeLabel"`
	FeedbackLabel     string `json:"feedbackLabel"`
	LastActivityLabel string `json:"lastActivityLabel"`
	IsRecent          bool   `json:"isRecent"`
}

// TodoView — задача с полями для отображения.
type TodoView struct {
	ID           int64            `json:"id"`
	ProjectID    int64            `json:"projectId"`
	Title        string           `json:"title"`
	Status       model.TodoStatus `json:"status"`
	CreatedBy    string           `json:"createdBy"`
	AssignedTo   *string          `json:"assignedTo,omitempty"`
	DueDate      *time.Time       `json:"dueDate,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	StatusBadge  Badge            `json:"statusBadge"`
	DueLabel     string           `json:"dueLabel,omitempty"`
	IsOverdue    bool             `json:"isOverdue"`
	CreatedLabel string           `json:"createdLabel"`
}

// FileView — метаданные файла с полями для отображения.
type FileView struct {
	ID            int64     `json:"id"`
	ProjectID     int64     `json:"projectId"`
	URL           string    `json:"url"`
	FileName      string    `json:"fileName"`
	SizeBytes     int64     `json:"sizeBytes"`
	UploadedBy    string    `json:"uploadedBy"`
	CreatedAt     time.Time `json:"createdAt"`
	SizeLabel     string    `json:"sizeLabel,omitempty"`
	Extension     string    `json:"extension,omitempty"`
	UploadedLabel string    `json:"uploadedLabel"`
}

// FeedbackView — отзыв с полями для отображения.
type FeedbackView struct {
	ID           int64     `json:"id"`
	ProjectID    int64     `json:"projectId"`
	AuthorID     string    `json:"authorId"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	CreatedLabel string    `json:"createdLabel"`
}

// Project собирает view-модель проекта.
// todos == nil означает, что задачи не запрашивались, и сводка не строится.
func Project(p model.Project, todos []model.Todo, now time.Time) ProjectView {
	v := ProjectView{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		ClientID:      p.ClientID,
		ClientName:    p.ClientName,
		Status:        p.Status,
		Priority:      p.Priority,
		Progress:      p.Progress,
		DueDate:       p.DueDate,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		StatusBadge:   ProjectStatusBadge(p.Status),
		PriorityBadge: PriorityBadge(p.Priority),
		ProgressLabel: ProgressLabel(p.Progress),
		ProgressBar:   ProgressBar(p.Progress),
		Initials:      Initials(p.Title),
		AvatarColor:   AvatarColor(p.Title),
		UpdatedLabel:  Relative(p.LastActivity(), now),
	}

	if p.DueDate != nil {
		v.DueLabel = Relative(*p.DueDate, now)
		v.IsOverdue = p.DueDate.Before(now) && projectOpen(p.Status)
	}
	if todos != nil {
		summary := TodoSummary(todos)
		v.Todos = &summary
	}
	return v
}

// projectOpen — проект ещё в работе, срок для него имеет значение.
func projectOpen(s model.ProjectStatus) bool {
	return s != model.ProjectStatusCompleted && s != model.ProjectStatusArchived
}

// Projects собирает view-модели списка проектов; todos группируются по project_id.
func Projects(projects []model.Project, todos []model.Todo, now time.Time) []ProjectView {
	var byProject map[int64][]model.Todo
	if todos != nil {
		byProject = lo.GroupBy(todos, func(t model.Todo) int64 { return t.ProjectID })
	}

	return lo.Map(projects, func(p model.Project, _ int) ProjectView {
		if byProject == nil {
			return Project(p, nil, now)
		}
		return Project(p, lo.ValueOr(byProject, p.ID, []model.Todo{}), now)
	})
}

// TodoSummary считает выполненные задачи: "3 of 5 completed", 60%.
func TodoSummary(todos []model.Todo) TodoProgress {
	done := lo.CountBy(todos, func(t model.Todo) bool { return t.Status == model.TodoStatusDone })
	total := len(todos)
	return TodoProgress{
		Done:    done,
		Total:   total,
		Percent: Percent(done, total),
		Label:   fmt.Sprintf("%d of %d completed", done, total),
	}
}

// Client собирает view-модель сводки клиента.
func Client(c aggregate.ClientSummary, now time.Time) ClientView {
	return ClientView{
		ClientSummary:     c,
		StatusBadge:       ClientStatusBadge(c.Status),
		Initials:          Initials(c.Name),
		AvatarColor:       AvatarColor(c.Name),
		ProjectsLabel:     Count(c.TotalProjects, "project", "projects"),
		ActiveLabel:       Count(c.ActiveProjects, "active project", "active projects"),
		FeedbackLabel:     Count(c.FeedbackCount, "feedback item", "feedback items"),
		LastActivityLabel: Relative(c.LastActivity, now),
		IsRecent:          now.Sub(c.LastActivity) < status.OfflineWindow,
	}
}

// Clients собирает view-модели списка клиентов.
func Clients(clients []aggregate.ClientSummary, now time.Time) []ClientView {
	return lo.Map(clients, func(c aggregate.ClientSummary, _ int) ClientView {
		return Client(c, now)
	})
}

// Todo собирает view-модель задачи.
func Todo(t model.Todo, now time.Time) TodoView {
	v := TodoView{
		ID:           t.ID,
		ProjectID:    t.ProjectID,
		Title:        t.Title,
		Status:       t.Status,
		CreatedBy:    t.CreatedBy,
		AssignedTo:   t.AssignedTo,
		DueDate:      t.DueDate,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		StatusBadge:  TodoStatusBadge(t.Status),
		CreatedLabel: Relative(t.CreatedAt, now),
	}
	if t.DueDate != nil {
		v.DueLabel = Relative(*t.DueDate, now)
		v.IsOverdue = t.DueDate.Before(now) && t.Status != model.TodoStatusDone
	}
	return v
}

// Todos собирает view-модели списка задач.
func Todos(todos []model.Todo, now time.Time) []TodoView {
	return lo.Map(todos, func(t model.Todo, _ int) TodoView { return Todo(t, now) })
}

// File собирает view-модель файла.
func File(f model.File, now time.Time) FileView {
	v := FileView{
		ID:            f.ID,
		ProjectID:     f.ProjectID,
		URL:           f.URL,
		FileName:      f.FileName,
		SizeBytes:     f.SizeBytes,
		UploadedBy:    f.UploadedBy,
		CreatedAt:     f.CreatedAt,
		Extension:     strings.ToLower(strings.TrimPrefix(path.Ext(f.FileName), ".")),
		UploadedLabel: Relative(f.CreatedAt, now),
	}
	if f.SizeBytes > 0 {
		v.SizeLabel = humanize.Bytes(uint64(f.SizeBytes))
	}
	return v
}

// Files собирает view-модели списка файлов.
func Files(files []model.File, now time.Time) []FileView {
	return lo.Map(files, func(f model.File, _ int) FileView { return File(f, now) })
}

// Feedback собирает view-модель отзыва.
func Feedback(f model.Feedback, now time.Time) FeedbackView {
	return FeedbackView{
		ID:           f.ID,
		ProjectID:    f.ProjectID,
		AuthorID:     f.AuthorID,
		Content:      f.Content,
		CreatedAt:    f.CreatedAt,
		CreatedLabel: Relative(f.CreatedAt, now),
	}
}

// FeedbackList собирает view-модели списка отзывов.
func FeedbackList(items []model.Feedback, now time.Time) []FeedbackView {
	return lo.Map(items, func(f model.Feedback, _ int) FeedbackView { return Feedback(f, now) })
}
