package model

import "time"

// Feedback — отзыв клиента по проекту (только добавление).
type Feedback struct {
	ID        int64
	ProjectID int64
	// AuthorID — идентификатор автора (sub из JWT)
	AuthorID  string
	Content   string
	CreatedAt time.Time
}

// FeedbackStat — агрегат отзывов по одному проекту.
type FeedbackStat struct {
	ProjectID int64
	// Count — количество отзывов
	Count int
	// LastAt — время самого свежего отзыва
	LastAt time.Time
}

// Todo — задача внутри проекта.
type Todo struct {
	ID         int64
	ProjectID  int64
	Title      string
	Status     TodoStatus
	CreatedBy  string
	AssignedTo *string
	DueDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// File — метаданные файла проекта.
// Сам объект хранится во внешнем object storage, здесь только ссылка.
type File struct {
	ID        int64
	ProjectID int64
	// URL — адрес объекта в хранилище
	URL      string
	FileName string
	// SizeBytes — размер в байтах (0, если неизвестен)
	SizeBytes  int64
	UploadedBy string
	CreatedAt  time.Time
}
