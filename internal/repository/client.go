package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/clientportal/internal/domain/model"
)

// ClientRepository — интерфейс CRUD для таблицы clients.
type ClientRepository interface {
	// Create создаёт клиента. ErrConflict, если имя уже занято у владельца.
	Create(ctx context.Context, c *model.Client) error
	// GetByID возвращает клиента владельца по UUID.
	GetByID(ctx context.Context, ownerID, id string) (*model.Client, error)
	// GetByNameKey возвращает клиента владельца по нормализованному имени.
	GetByNameKey(ctx context.Context, ownerID, nameKey string) (*model.Client, error)
	// List возвращает всех клиентов владельца.
	List(ctx context.Context, ownerID string) ([]*model.Client, error)
	// Update обновляет имя и контакты клиента.
	Update(ctx context.Context, c *model.Client) error
	// Delete удаляет клиента; его проекты остаются без клиента.
	Delete(ctx context.Context, ownerID, id string) error
}

// clientRepo — реализация ClientRepository.
type clientRepo struct {
	db DBTX
}

// NewClientRepository создаёт репозиторий клиентов.
func NewClientRepository(db DBTX) ClientRepository {
	return &clientRepo{db: db}
}

const clientColumns = `id, owner_id, name, name_key, email, phone, created_at, updated_at`

func scanClient(row pgx.Row) (*model.Client, error) {
	c := &model.Client{}
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.NameKey, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *clientRepo) Create(ctx context.Context, c *model.Client) error {
	query := `
		INSERT INTO clients (id, owner_id, name, name_key, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		c.ID, c.OwnerID, c.Name, c.NameKey, c.Email, c.Phone,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: клиент %q уже существует", ErrConflict, c.Name)
		}
		return fmt.Errorf("ошибка создания клиента: %w", err)
	}
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, ownerID, id string) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE owner_id = $1 AND id = $2`

	c, err := scanClient(r.db.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения клиента: %w", err)
	}
	return c, nil
}

func (r *clientRepo) GetByNameKey(ctx context.Context, ownerID, nameKey string) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE owner_id = $1 AND name_key = $2`

	c, err := scanClient(r.db.QueryRow(ctx, query, ownerID, nameKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения клиента по имени: %w", err)
	}
	return c, nil
}

func (r *clientRepo) List(ctx context.Context, ownerID string) ([]*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE owner_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка клиентов: %w", err)
	}
	defer rows.Close()

	var result []*model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования клиента: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *clientRepo) Update(ctx context.Context, c *model.Client) error {
	query := `
		UPDATE clients
		SET name = $3, name_key = $4, email = $5, phone = $6, updated_at = now()
		WHERE owner_id = $1 AND id = $2
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		c.OwnerID, c.ID, c.Name, c.NameKey, c.Email, c.Phone,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: клиент %q уже существует", ErrConflict, c.Name)
		}
		return fmt.Errorf("ошибка обновления клиента: %w", err)
	}
	return nil
}

func (r *clientRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления клиента: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
