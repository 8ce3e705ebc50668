// files.go — сервис метаданных файлов проекта.
// Загрузка самих объектов выполняется во внешнее хранилище;
// здесь регистрируется только ссылка после успешной загрузки.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/bigkaa/clientportal/internal/domain/model"
	"github.com/bigkaa/clientportal/internal/repository"
)

// maxFileNameLength — ограничение длины имени файла (VARCHAR(512)).
const maxFileNameLength = 512

// FileInput — метаданные загруженного файла.
// Пустой FileName берётся из последнего сегмента URL.
type FileInput struct {
	URL       string
	FileName  string
	SizeBytes int64
}

// FileService — сервис файлов.
type FileService struct {
	projects repository.ProjectRepository
	files    repository.FileRepository
	logger   *slog.Logger
}

// NewFileService создаёт сервис файлов.
func NewFileService(projects repository.ProjectRepository, files repository.FileRepository, logger *slog.Logger) *FileService {
	return &FileService{
		projects: projects,
		files:    files,
		logger:   logger.With(slog.String("component", "file_service")),
	}
}

// ListByProject возвращает файлы проекта. ErrNotFound для чужого проекта.
func (s *FileService) ListByProject(ctx context.Context, ownerID string, projectID int64) ([]*model.File, error) {
	if err := ensureProject(ctx, s.projects, ownerID, projectID); err != nil {
		return nil, err
	}
	files, err := s.files.ListByProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("получение файлов: %w", err)
	}
	return files, nil
}

// ListAll возвращает файлы по всем проектам владельца.
func (s *FileService) ListAll(ctx context.Context, ownerID string) ([]*model.File, error) {
	files, err := s.files.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("получение файлов: %w", err)
	}
	return files, nil
}

// Register сохраняет метаданные файла, загруженного во внешнее хранилище.
func (s *FileService) Register(ctx context.Context, ownerID string, projectID int64, in FileInput) (*model.File, error) {
	if err := ensureProject(ctx, s.projects, ownerID, projectID); err != nil {
		return nil, err
	}

	rawURL := strings.TrimSpace(in.URL)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: некорректный URL файла '%s'", ErrValidation, in.URL)
	}
	if in.SizeBytes < 0 {
		return nil, fmt.Errorf("%w: отрицательный размер файла", ErrValidation)
	}

	name := strings.TrimSpace(in.FileName)
	if name == "" {
		name = path.Base(u.Path)
	}
	if name == "" || name == "/" || name == "." {
		return nil, fmt.Errorf("%w: не удалось определить имя файла", ErrValidation)
	}
	if len(name) > maxFileNameLength {
		return nil, fmt.Errorf("%w: имя файла длиннее %d символов", ErrValidation, maxFileNameLength)
	}

	f := &model.File{
		ProjectID:  projectID,
		URL:        rawURL,
		FileName:   name,
		SizeBytes:  in.SizeBytes,
		UploadedBy: ownerID,
	}
	if err := s.files.Create(ctx, f); err != nil {
		return nil, mapRepoError("регистрация файла", err)
	}

	s.logger.Info("Файл зарегистрирован",
		slog.Int64("project_id", projectID),
		slog.Int64("file_id", f.ID),
		slog.String("file_name", f.FileName),
		slog.Int64("size_bytes", f.SizeBytes),
	)
	return f, nil
}

// Delete удаляет запись о файле. Объект в хранилище не затрагивается.
func (s *FileService) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := s.files.Delete(ctx, ownerID, id); err != nil {
		return mapRepoError("удаление файла", err)
	}
	s.logger.Info("Файл удалён", slog.Int64("file_id", id))
	return nil
}
