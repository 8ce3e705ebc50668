// Пакет model — доменные модели клиентского портала.
// enums.go — закрытые перечисления статусов и приоритетов.
// Неизвестное значение никогда не проходит дальше конструктора:
// ParseX сообщает о нём флагом, XOrDefault заменяет значением по умолчанию.
package model

// ProjectStatus — статус проекта (хранится в БД, не вычисляется).
type ProjectStatus string

// Допустимые статусы проекта.
const (
	ProjectStatusActive           ProjectStatus = "active"
	ProjectStatusCompleted        ProjectStatus = "completed"
	ProjectStatusArchived         ProjectStatus = "archived"
	ProjectStatusAwaitingFeedback ProjectStatus = "awaiting-feedback"
)

// ProjectStatuses — все статусы проекта в порядке отображения.
var ProjectStatuses = []ProjectStatus{
	ProjectStatusActive,
	ProjectStatusCompleted,
	ProjectStatusArchived,
	ProjectStatusAwaitingFeedback,
}

// ParseProjectStatus разбирает строку в статус проекта.
// Второе значение false, если строка не является допустимым статусом.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	st := ProjectStatus(s)
	return st, st.Valid()
}

// ProjectStatusOrDefault возвращает статус проекта или active для неизвестных значений.
func ProjectStatusOrDefault(s string) ProjectStatus {
	if st, ok := ParseProjectStatus(s); ok {
		return st
	}
	return ProjectStatusActive
}

// Valid проверяет принадлежность значения перечислению.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusArchived, ProjectStatusAwaitingFeedback:
		return true
	}
	return false
}

func (s ProjectStatus) String() string { return string(s) }

// Priority — приоритет проекта.
type Priority string

// Допустимые приоритеты.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority разбирает строку в приоритет.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(s)
	return p, p.Valid()
}

// PriorityOrDefault возвращает приоритет или medium для неизвестных значений.
func PriorityOrDefault(s string) Priority {
	if p, ok := ParsePriority(s); ok {
		return p
	}
	return PriorityMedium
}

// Valid проверяет принадлежность значения перечислению.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func (p Priority) String() string { return string(p) }

// TodoStatus — статус задачи.
type TodoStatus string

// Допустимые статусы задачи.
const (
	TodoStatusTodo       TodoStatus = "todo"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusDone       TodoStatus = "done"
)

// ParseTodoStatus разбирает строку в статус задачи.
func ParseTodoStatus(s string) (TodoStatus, bool) {
	st := TodoStatus(s)
	return st, st.Valid()
}

// TodoStatusOrDefault возвращает статус задачи или todo для неизвестных значений.
func TodoStatusOrDefault(s string) TodoStatus {
	if st, ok := ParseTodoStatus(s); ok {
		return st
	}
	return TodoStatusTodo
}

// TodoStatusFromCompleted переводит старый булев флаг completed в статус.
func TodoStatusFromCompleted(completed bool) TodoStatus {
	if completed {
		return TodoStatusDone
	}
	return TodoStatusTodo
}

// Valid проверяет принадлежность значения перечислению.
func (s TodoStatus) Valid() bool {
	switch s {
	case TodoStatusTodo, TodoStatusInProgress, TodoStatusDone:
		return true
	}
	return false
}

func (s TodoStatus) String() string { return string(s) }

// ClientStatus — вычисляемый статус клиента.
// Из входных данных не разбирается, только выводится классификатором.
type ClientStatus string

// Статусы клиента.
const (
	ClientStatusOnline          ClientStatus = "online"
	ClientStatusOffline         ClientStatus = "offline"
	ClientStatusFeedbackPending ClientStatus = "feedback-pending"
	ClientStatusInactive        ClientStatus = "inactive"
)

func (s ClientStatus) String() string { return string(s) }
