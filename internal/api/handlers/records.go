// records.go — обработчики задач, файлов, отзывов и дашборда.
package handlers

import (
	"net/http"

	"github.com/samber/lo"

	"github.com/bigkaa/clientportal/internal/domain/view"
	"github.com/bigkaa/clientportal/internal/service"
)

// todoRequest — тело POST /projects/{id}/todos и PUT /todos/{id}.
type todoRequest struct {
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Completed  *bool      `json:"completed"`
	AssignedTo *string    `json:"assignedTo"`
	DueDate    *dateValue `json:"dueDate"`
}

func (req todoRequest) input() service.TodoInput {
	return service.TodoInput{
		Title:      req.Title,
		Status:     req.Status,
		Completed:  req.Completed,
		AssignedTo: req.AssignedTo,
		DueDate:    req.DueDate.timePtr(),
	}
}

// fileRequest — тело POST /projects/{id}/files.
// Файл уже загружен во внешнее хранилище, регистрируются только метаданные.
type fileRequest struct {
	URL       string `json:"url"`
	FileName  string `json:"fileName"`
	SizeBytes int64  `json:"sizeBytes"`
}

// feedbackRequest — тело POST /projects/{id}/feedback.
type feedbackRequest struct {
	Content string `json:"content"`
}

// --- Задачи ---

// ListProjectTodos — GET /api/v1/projects/{projectID}/todos.
func (h *APIHandler) ListProjectTodos(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}

	todos, err := h.todos.ListByProject(r.Context(), ownerID, projectID)
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка получения задач")
		return
	}

	writeJSON(w, http.StatusOK, newList(view.Todos(lo.FromSlicePtr(todos), h.now())))
}

// ListTodos — GET /api/v1/todos.
func (h *APIHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	todos, err := h.todos.ListAll(r.Context(), ownerID)
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка получения задач")
		return
	}

	writeJSON(w, http.StatusOK, newList(view.Todos(lo.FromSlicePtr(todos), h.now())))
}

// CreateTodo — POST /api/v1/projects/{projectID}/todos.
func (h *APIHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req todoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	td, err := h.todos.Create(r.Context(), ownerID, projectID, req.input())
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка создания задачи")
		return
	}

	writeJSON(w, http.StatusCreated, view.Todo(*td, h.now()))
}

// UpdateTodo — PUT /api/v1/todos/{todoID}.
func (h *APIHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "todoID")
	if !ok {
		return
	}
	var req todoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	td, err := h.todos.Update(r.Context(), ownerID, id, req.input())
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка обновления задачи")
		return
	}

	writeJSON(w, http.StatusOK, view.Todo(*td, h.now()))
}

// DeleteTodo — DELETE /api/v1/todos/{todoID}.
func (h *APIHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "todoID")
	if !ok {
		return
	}

	if err := h.todos.Delete(r.Context(), ownerID, id); err != nil {
		h.writeServiceError(w, r, err, "Ошибка удаления задачи")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Файлы ---

// ListProjectFiles — GET /api/v1/projects/{projectID}/files.
func (h *APIHandler) ListProjectFiles(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}

	files, err := h.files.ListByProject(r.Context(), ownerID, projectID)
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка получения файлов")
		return
	}

	writeJSON(w, http.StatusOK, newList(view.Files(lo.FromSlicePtr(files), h.now())))
}

// ListFiles — GET /api/v1/files.
func (h *APIHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	files, err := h.files.ListAll(r.Context(), ownerID)
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка получения файлов")
		return
	}

	writeJSON(w, http.StatusOK, newList(view.Files(lo.FromSlicePtr(files), h.now())))
}

// RegisterFile — POST /api/v1/projects/{projectID}/files.
func (h *APIHandler) RegisterFile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req fileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	f, err := h.files.Register(r.Context(), ownerID, projectID, service.FileInput{
		URL:       req.URL,
		FileName:  req.FileName,
		SizeBytes: req.SizeBytes,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка регистрации файла")
		return
	}

	writeJSON(w, http.StatusCreated, view.File(*f, h.now()))
}

// DeleteFile — DELETE /api/v1/files/{fileID}.
// Удаляется только запись; объект в хранилище удаляет внешний сервис.
func (h *APIHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "fileID")
	if !ok {
		return
	}

	if err := h.files.Delete(r.Context(), ownerID, id); err != nil {
		h.writeServiceError(w, r, err, "Ошибка удаления файла")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Отзывы ---

// ListProjectFeedback — GET /api/v1/projects/{projectID}/feedback.
func (h *APIHandler) ListProjectFeedback(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}

	items, err := h.feedback.ListByProject(r.Context(), ownerID, projectID)
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка получения отзывов")
		return
	}

	writeJSON(w, http.StatusOK, newList(view.FeedbackList(lo.FromSlicePtr(items), h.now())))
}

// ListFeedback — GET /api/v1/feedback.
func (h *APIHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	items, err := h.feedback.ListAll(r.Context(), ownerID)
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка получения отзывов")
		return
	}

	writeJSON(w, http.StatusOK, newList(view.FeedbackList(lo.FromSlicePtr(items), h.now())))
}

// SubmitFeedback — POST /api/v1/projects/{projectID}/feedback.
// Автор отзыва — субъект токена.
func (h *APIHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req feedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	f, err := h.feedback.Submit(r.Context(), ownerID, projectID, ownerID, req.Content)
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка сохранения отзыва")
		return
	}

	writeJSON(w, http.StatusCreated, view.Feedback(*f, h.now()))
}

// --- Дашборд ---

// GetDashboard — GET /api/v1/dashboard.
func (h *APIHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	stats, err := h.dashboard.Stats(r.Context(), ownerID, h.now())
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка получения статистики")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
