package model

import (
	"strings"
	"time"
)

// Project — проект агентства (таблица projects).
type Project struct {
	// ID — идентификатор проекта
	ID int64
	// OwnerID — владелец (sub из JWT)
	OwnerID string
	// Title — название проекта
	Title string
	// Description — описание (опционально)
	Description *string
	// ClientID — UUID клиента (nil для проектов без клиента)
	ClientID *string
	// ClientName — отображаемое имя клиента (из JOIN, только чтение)
	ClientName *string
	// Status — статус проекта
	Status ProjectStatus
	// Priority — приоритет
	Priority Priority
	// Progress — прогресс в процентах, хранится как передан, без ограничения диапазона
	Progress int
	// DueDate — срок сдачи (опционально)
	DueDate *time.Time
	// CreatedAt — время создания
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления (nil, если не обновлялся)
	UpdatedAt *time.Time
}

// LastActivity возвращает updated_at, а при его отсутствии created_at.
func (p *Project) LastActivity() time.Time {
	if p.UpdatedAt != nil {
		return *p.UpdatedAt
	}
	return p.CreatedAt
}

// Client — клиент агентства (таблица clients).
type Client struct {
	// ID — UUID клиента
	ID string
	// OwnerID — владелец (sub из JWT)
	OwnerID string
	// Name — отображаемое имя в исходном регистре
	Name string
	// NameKey — нормализованное имя, уникально в пределах владельца
	NameKey string
	// Email — контактный email (опционально)
	Email *string
	// Phone — контактный телефон (опционально)
	Phone *string
	// CreatedAt — время создания
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// NormalizeClientName приводит имя клиента к ключу группировки:
// нижний регистр, без пробелов по краям.
func NormalizeClientName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
