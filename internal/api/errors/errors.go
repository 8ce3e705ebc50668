// Пакет errors — ответы об ошибках API портала.
// Тело ответа: {"error": {"code": "...", "message": "..."}}.
// Ошибки сервисного слоя переводятся в HTTP-ответ через FromService.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bigkaa/clientportal/internal/service"
)

// Коды ошибок API.
const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeInvalidReference = "INVALID_REFERENCE"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeConflict         = "CONFLICT"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// notFoundMessage — единое сообщение 404: чужая и отсутствующая запись неразличимы.
const notFoundMessage = "Запись не найдена"

// Problem — ошибка API в виде, готовом к отправке клиенту.
type Problem struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Write отправляет ошибку клиенту.
func (p Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(struct {
		Error Problem `json:"error"`
	}{Error: p})
}

// serviceErrors — ошибки сервисного слоя и их HTTP-статусы.
// ErrReference проверяется раньше ErrValidation: обе дают 400, но код разный.
var serviceErrors = []struct {
	target error
	status int
	code   string
}{
	{service.ErrReference, http.StatusBadRequest, CodeInvalidReference},
	{service.ErrValidation, http.StatusBadRequest, CodeValidationError},
	{service.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{service.ErrConflict, http.StatusConflict, CodeConflict},
}

// Classify находит ответ для ошибки сервисного слоя.
// false — ошибка не относится к сервисному слою (сбой хранилища и т.п.).
func Classify(err error) (Problem, bool) {
	for _, se := range serviceErrors {
		if !errors.Is(err, se.target) {
			continue
		}
		msg := err.Error()
		if se.status == http.StatusNotFound {
			msg = notFoundMessage
		}
		return Problem{Status: se.status, Code: se.code, Message: msg}, true
	}
	return Problem{}, false
}

// FromService пишет ответ для ошибки сервисного слоя.
// Для неизвестной ошибки отправляется 500 с сообщением fallback и
// возвращается false: детали должен записать в лог вызывающий.
func FromService(w http.ResponseWriter, err error, fallback string) bool {
	p, ok := Classify(err)
	if !ok {
		InternalError(w, fallback)
		return false
	}
	p.Write(w)
	return true
}

// WriteError записывает ответ ошибки с произвольным кодом.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	Problem{Status: statusCode, Code: code, Message: message}.Write(w)
}

// ValidationError — 400, некорректный запрос.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 для записи; пустой message заменяется общим сообщением.
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = notFoundMessage
	}
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401, нет или неверный токен.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// MethodNotAllowed — 405.
func MethodNotAllowed(w http.ResponseWriter) {
	WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Метод не поддерживается")
}

// InternalError — 500; причина остаётся в логах сервера.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
