// Пакет aggregate — свёртка проектов и отзывов в сводные записи клиентов.
//
// Проекты группируются по ключу клиента (ClientKey). Для каждой группы
// считаются общее число проектов, число активных, число отзывов и время
// последней активности. Статус клиента присваивается пакетом status.
// Пакет не выполняет I/O и не хранит состояния между вызовами.
package aggregate

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/bigkaa/clientportal/internal/domain/model"
	"github.com/bigkaa/clientportal/internal/domain/status"
)

// ErrNoProjects — ключу клиента не соответствует ни один проект.
var ErrNoProjects = errors.New("у клиента нет проектов")

// placeholderEmailDomain — домен адреса-заглушки для клиентов без email.
const placeholderEmailDomain = "example.com"

// Group — промежуточный результат свёртки одной группы.
type Group struct {
	// Key — ключ группы (UUID клиента или нормализованное имя)
	Key string
	// Name — имя клиента из первого встреченного проекта, без нормализации
	Name string
	// Projects — проекты группы в порядке входа
	Projects []model.Project
	// TotalProjects — число проектов группы
	TotalProjects int
	// ActiveProjects — число проектов в статусе active
	ActiveProjects int
	// FeedbackCount — число отзывов по проектам группы
	FeedbackCount int
	// LastActivity — максимум updated_at/created_at проектов и created_at отзывов
	LastActivity time.Time
	// AwaitingFeedback — есть ли проект в статусе awaiting-feedback
	AwaitingFeedback bool
}

func (g *Group) add(p model.Project) {
	g.Projects = append(g.Projects, p)
	g.TotalProjects++
	if p.Status == model.ProjectStatusActive {
		g.ActiveProjects++
	}
	if status.HasAwaitingFeedback(p.Status) {
		g.AwaitingFeedback = true
	}
	if at := p.LastActivity(); at.After(g.LastActivity) {
		g.LastActivity = at
	}
}

// ProjectBrief — краткие сведения о проекте внутри сводки клиента.
type ProjectBrief struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description *string             `json:"description,omitempty"`
	Status      model.ProjectStatus `json:"status"`
	Progress    int                 `json:"progress"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
}

// ClientSummary — сводная запись клиента.
type ClientSummary struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	Phone          *string            `json:"phone,omitempty"`
	Projects       []ProjectBrief     `json:"projects"`
	FeedbackCount  int                `json:"feedbackCount"`
	LastActivity   time.Time          `json:"lastActivity"`
	TotalProjects  int                `json:"totalProjects"`
	ActiveProjects int                `json:"activeProjects"`
	Status         model.ClientStatus `json:"status"`
}

// Contact — контактные данные, сохранённые у клиента.
type Contact struct {
	Email *string
	Phone *string
}

// ClientKey возвращает ключ группы проекта.
// Проект с client_id группируется по нему, иначе по нормализованному имени.
// Пустая строка означает, что проект не относится ни к одному клиенту.
func ClientKey(p *model.Project) string {
	if p.ClientID != nil && *p.ClientID != "" {
		return *p.ClientID
	}
	if p.ClientName != nil {
		return model.NormalizeClientName(*p.ClientName)
	}
	return ""
}

// Fold группирует проекты по клиентам и добавляет к группам статистику отзывов.
// Проекты без клиента пропускаются. Статистика по проекту, которого нет
// во входном наборе, молча игнорируется.
// Группы возвращаются в порядке первого появления ключа.
func Fold(projects []model.Project, stats []model.FeedbackStat) []*Group {
	var groups []*Group
	byKey := make(map[string]*Group)
	byProject := make(map[int64]*Group, len(projects))

	for i := range projects {
		p := projects[i]
		key := ClientKey(&p)
		if key == "" {
			continue
		}

		g, ok := byKey[key]
		if !ok {
			g = &Group{
				Key:          key,
				Name:         lo.FromPtr(p.ClientName),
				LastActivity: p.LastActivity(),
			}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.add(p)
		byProject[p.ID] = g
	}

	for _, st := range stats {
		g, ok := byProject[st.ProjectID]
		if !ok || st.Count <= 0 {
			continue
		}
		g.FeedbackCount += st.Count
		if st.LastAt.After(g.LastActivity) {
			g.LastActivity = st.LastAt
		}
	}

	return groups
}

// Summarize превращает группы в сводки клиентов и присваивает статус.
// contacts может быть nil; для клиентов без email подставляется адрес-заглушка.
func Summarize(groups []*Group, contacts map[string]Contact, now time.Time) []ClientSummary {
	return lo.Map(groups, func(g *Group, _ int) ClientSummary {
		return summarize(g, contacts[g.Key], now)
	})
}

func summarize(g *Group, c Contact, now time.Time) ClientSummary {
	email := lo.FromPtr(c.Email)
	if email == "" {
		email = PlaceholderEmail(g.Name)
	}

	return ClientSummary{
		ID:    g.Key,
		Name:  g.Name,
		Email: email,
		Phone: c.Phone,
		Projects: lo.Map(g.Projects, func(p model.Project, _ int) ProjectBrief {
			return ProjectBrief{
				ID:          p.ID,
				Title:       p.Title,
				Description: p.Description,
				Status:      p.Status,
				Progress:    p.Progress,
				DueDate:     p.DueDate,
			}
		}),
		FeedbackCount:  g.FeedbackCount,
		LastActivity:   g.LastActivity,
		TotalProjects:  g.TotalProjects,
		ActiveProjects: g.ActiveProjects,
		Status:         status.ClassifyClient(g.LastActivity, now, g.AwaitingFeedback),
	}
}

// Find ищет группу по ключу. UUID приводится к каноническому виду
// (нижний регистр), иначе ключ сравнивается по нормализованному имени клиента.
func Find(groups []*Group, key string) (*Group, bool) {
	if id, err := uuid.Parse(key); err == nil {
		key = id.String()
	}
	normalized := model.NormalizeClientName(key)
	return lo.Find(groups, func(g *Group) bool {
		return g.Key == key || (normalized != "" && model.NormalizeClientName(g.Name) == normalized)
	})
}

// Client возвращает сводку одного клиента.
// ErrNoProjects, если ключу не соответствует ни один проект.
func Client(key string, projects []model.Project, stats []model.FeedbackStat, contacts map[string]Contact, now time.Time) (ClientSummary, error) {
	g, ok := Find(Fold(projects, stats), key)
	if !ok {
		return ClientSummary{}, ErrNoProjects
	}
	return summarize(g, contacts[g.Key], now), nil
}

// PlaceholderEmail строит адрес-заглушку из имени клиента:
// нижний регистр, последовательности пробелов заменяются точкой.
func PlaceholderEmail(name string) string {
	local := strings.Join(strings.Fields(strings.ToLower(name)), ".")
	if local == "" {
		local = "client"
	}
	return local + "@" + placeholderEmailDomain
}
