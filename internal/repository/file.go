package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/clientportal/internal/domain/model"
)

// FileRepository — метаданные файлов проекта (таблица files).
// Сами объекты лежат во внешнем хранилище.
type FileRepository interface {
	Create(ctx context.Context, f *model.File) error
	GetByID(ctx context.Context, ownerID string, id int64) (*model.File, error)
	ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.File, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.File, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

// fileRepo — реализация FileRepository.
type fileRepo struct {
	db DBTX
}

// NewFileRepository создаёт репозиторий файлов.
func NewFileRepository(db DBTX) FileRepository {
	return &fileRepo{db: db}
}

const fileSelect = `
	SELECT f.id, f.project_id, f.url, f.file_name, f.size_bytes, f.uploaded_by, f.created_at
	FROM files f
	JOIN projects p ON p.id = f.project_id`

func scanFile(row pgx.Row) (*model.File, error) {
	f := &model.File{}
	err := row.Scan(&f.ID, &f.ProjectID, &f.URL, &f.FileName, &f.SizeBytes, &f.UploadedBy, &f.CreatedAt)
	return f, err
}

func (r *fileRepo) Create(ctx context.Context, f *model.File) error {
	query := `
		INSERT INTO files (project_id, url, file_name, size_bytes, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		f.ProjectID, f.URL, f.FileName, f.SizeBytes, f.UploadedBy,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: проект %d", ErrReference, f.ProjectID)
		}
		return fmt.Errorf("ошибка регистрации файла: %w", err)
	}
	return nil
}

func (r *fileRepo) GetByID(ctx context.Context, ownerID string, id int64) (*model.File, error) {
	f, err := scanFile(r.db.QueryRow(ctx, fileSelect+` WHERE p.owner_id = $1 AND f.id = $2`, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения файла: %w", err)
	}
	return f, nil
}

func (r *fileRepo) ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.File, error) {
	query := fileSelect + `
		WHERE p.owner_id = $1 AND f.project_id = $2
		ORDER BY f.created_at DESC, f.id DESC`
	return r.list(ctx, query, ownerID, projectID)
}

func (r *fileRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.File, error) {
	query := fileSelect + `
		WHERE p.owner_id = $1
		ORDER BY f.created_at DESC, f.id DESC`
	return r.list(ctx, query, ownerID)
}

func (r *fileRepo) list(ctx context.Context, query string, args ...any) ([]*model.File, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка файлов: %w", err)
	}
	defer rows.Close()

	var result []*model.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования файла: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *fileRepo) Delete(ctx context.Context, ownerID string, id int64) error {
	query := `
		DELETE FROM files
		WHERE id = $2
			AND project_id IN (SELECT id FROM projects WHERE owner_id = $1)`

	tag, err := r.db.Exec(ctx, query, ownerID, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления файла: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
