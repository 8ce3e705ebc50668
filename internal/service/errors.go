// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"

	"github.com/bigkaa/clientportal/internal/repository"
)

var (
	// ErrNotFound — ресурс не найден (в том числе чужой).
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrReference — запрос ссылается на несуществующую запись (клиент, проект).
	ErrReference = errors.New("ссылка на несуществующую запись")
)

// mapRepoError переводит ошибки репозитория в ошибки сервиса.
// Прочие ошибки оборачиваются с описанием операции и передаются выше.
func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err) //nolint:errorlint // намеренный двойной wrap
	case errors.Is(err, repository.ErrReference):
		return fmt.Errorf("%w: %w", ErrReference, err) //nolint:errorlint // намеренный двойной wrap
	}
	return fmt.Errorf("%s: %w", op, err)
}
