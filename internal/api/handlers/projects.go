// projects.go — обработчики /api/v1/projects endpoints.
// Список с фильтрами и пагинацией, карточка проекта, CRUD.
package handlers

import (
	"net/http"

	"github.com/samber/lo"

	apierrors "github.com/bigkaa/clientportal/internal/api/errors"
	"github.com/bigkaa/clientportal/internal/domain/model"
	"github.com/bigkaa/clientportal/internal/domain/view"
	"github.com/bigkaa/clientportal/internal/service"
)

// projectRequest — тело POST/PUT /projects.
type projectRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	ClientID    *string    `json:"clientId"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Progress    int        `json:"progress"`
	DueDate     *dateValue `json:"dueDate"`
}

func (req projectRequest) input() service.ProjectInput {
	return service.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		ClientID:    req.ClientID,
		Status:      req.Status,
		Priority:    req.Priority,
		Progress:    req.Progress,
		DueDate:     req.DueDate.timePtr(),
	}
}

// projectListResponse — страница списка проектов.
type projectListResponse struct {
	Items   []view.ProjectView `json:"items"`
	Total   int                `json:"total"`
	Limit   int                `json:"limit"`
	Offset  int                `json:"offset"`
	HasMore bool               `json:"hasMore"`
}

// projectDetailResponse — карточка проекта.
type projectDetailResponse struct {
	Project  view.ProjectView    `json:"project"`
	Todos    []view.TodoView     `json:"todos"`
	Files    []view.FileView     `json:"files"`
	Feedback []view.FeedbackView `json:"feedback"`
}

// ListProjects — GET /api/v1/projects.
// Фильтры: status, priority, client_id, q; пагинация: limit, offset.
func (h *APIHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	limitParam, err := queryInt(r, "limit")
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	offsetParam, err := queryInt(r, "offset")
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	limit, offset := paginationDefaults(limitParam, offsetParam)
	filters := service.ProjectFilters{
		Status:   queryString(r, "status"),
		Priority: queryString(r, "priority"),
		ClientID: queryString(r, "client_id"),
		Query:    queryString(r, "q"),
	}
	now := h.now()

	list, err := h.projects.List(r.Context(), ownerID, filters, limit, offset)
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка получения списка проектов")
		return
	}
	pageIDs := lo.Map(list.Items, func(p *model.Project, _ int) int64 { return p.ID })
	todos, err := h.todos.ListByProjects(r.Context(), ownerID, pageIDs)
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка получения списка проектов")
		return
	}

	writeJSON(w, http.StatusOK, projectListResponse{
		Items:   view.Projects(lo.FromSlicePtr(list.Items), lo.FromSlicePtr(todos), now),
		Total:   list.Total,
		Limit:   list.Limit,
		Offset:  list.Offset,
		HasMore: list.HasMore,
	})
}

// GetProject — GET /api/v1/projects/{projectID}.
// Проект вместе с задачами, файлами и отзывами.
func (h *APIHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	now := h.now()

	d, err := h.projects.Detail(r.Context(), ownerID, id)
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка получения проекта")
		return
	}

	todos := lo.FromSlicePtr(d.Todos)
	writeJSON(w, http.StatusOK, projectDetailResponse{
		Project:  view.Project(*d.Project, todos, now),
		Todos:    view.Todos(todos, now),
		Files:    view.Files(lo.FromSlicePtr(d.Files), now),
		Feedback: view.FeedbackList(lo.FromSlicePtr(d.Feedback), now),
	})
}

// CreateProject — POST /api/v1/projects.
func (h *APIHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.projects.Create(r.Context(), ownerID, req.input())
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка создания проекта")
		return
	}

	writeJSON(w, http.StatusCreated, view.Project(*p, nil, h.now()))
}

// UpdateProject — PUT /api/v1/projects/{projectID}.
// Все поля заменяются целиком.
func (h *APIHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.projects.Update(r.Context(), ownerID, id, req.input())
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка обновления проекта")
		return
	}

	writeJSON(w, http.StatusOK, view.Project(*p, nil, h.now()))
}

// DeleteProject — DELETE /api/v1/projects/{projectID}.
func (h *APIHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}

	if err := h.projects.Delete(r.Context(), ownerID, id); err != nil {
		h.writeServiceError(w, r, err, "Ошибка удаления проекта")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
