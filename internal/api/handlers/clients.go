// clients.go — обработчики /api/v1/clients endpoints.
// Список и карточка синтезированных клиентов, CRUD контактов клиента.
package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/clientportal/internal/domain/model"
	"github.com/bigkaa/clientportal/internal/domain/view"
	"github.com/bigkaa/clientportal/internal/service"
)

// clientRequest — тело POST/PUT /clients.
type clientRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

func (req clientRequest) input() service.ClientInput {
	return service.ClientInput{Name: req.Name, Email: req.Email, Phone: req.Phone}
}

// clientResponse — сохранённая запись клиента.
type clientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func mapClient(c *model.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// clientCreateResponse — клиент и его стартовый проект.
type clientCreateResponse struct {
	Client  clientResponse   `json:"client"`
	Project view.ProjectView `json:"project"`
}

// ListClients — GET /api/v1/clients.
// Клиенты синтезируются из проектов владельца.
func (h *APIHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	now := h.now()

	summaries, err := h.clients.List(r.Context(), ownerID, now)
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка получения списка клиентов")
		return
	}

	writeJSON(w, http.StatusOK, newList(view.Clients(summaries, now)))
}

// GetClient — GET /api/v1/clients/{clientID}.
// clientID — UUID клиента или его имя; 404, если у клиента нет проектов.
func (h *APIHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "clientID")
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	now := h.now()

	summary, err := h.clients.Get(r.Context(), ownerID, key, now)
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка получения клиента")
		return
	}

	writeJSON(w, http.StatusOK, view.Client(*summary, now))
}

// CreateClient — POST /api/v1/clients.
// Создаёт клиента вместе со стартовым проектом.
func (h *APIHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.clients.Create(r.Context(), ownerID, req.input())
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка создания клиента")
		return
	}

	writeJSON(w, http.StatusCreated, clientCreateResponse{
		Client:  mapClient(res.Client),
		Project: view.Project(*res.Project, []model.Todo{}, h.now()),
	})
}

// UpdateClient — PUT /api/v1/clients/{clientID}.
func (h *APIHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client, err := h.clients.Update(r.Context(), ownerID, chi.URLParam(r, "clientID"), req.input())
	if err != nil {
		h.writeServiceError(w, r, err, "Ошибка обновления клиента")
		return
	}

	writeJSON(w, http.StatusOK, mapClient(client))
}

// DeleteClient — DELETE /api/v1/clients/{clientID}.
// Проекты клиента сохраняются и остаются без клиента.
func (h *APIHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	if err := h.clients.Delete(r.Context(), ownerID, chi.URLParam(r, "clientID")); err != nil {
		h.writeServiceError(w, r, err, "Ошибка удаления клиента")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
