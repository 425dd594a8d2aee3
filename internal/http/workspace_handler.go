package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"deskhive/internal/repository"
	"deskhive/internal/service"

	"go.uber.org/zap"
)

// WorkspaceHandler workspace read surface plus admin management.
type WorkspaceHandler struct {
	workspaces   service.WorkspaceService
	reservations *ReservationHandler // /workspaces/{id}/reservations
	logger       *zap.Logger
}

// NewWorkspaceHandler creates the workspace handler.
func NewWorkspaceHandler(workspaces service.WorkspaceService, reservations *ReservationHandler, logger *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces, reservations: reservations, logger: logger}
}

// ServeHTTP dispatches /api/v1/workspaces paths (read-only surface).
func (h *WorkspaceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/workspaces" && r.Method == http.MethodGet:
		h.List(w, r)
	case strings.HasSuffix(path, "/reservations") && r.Method == http.MethodGet:
		id := strings.TrimSuffix(path, "/reservations")
		id = strings.TrimPrefix(id, "/api/v1/workspaces/")
		if id != "" && !strings.Contains(id, "/") {
			h.reservations.ListByWorkspace(w, r, id)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case strings.HasPrefix(path, "/api/v1/workspaces/") && r.Method == http.MethodGet:
		id := strings.TrimPrefix(path, "/api/v1/workspaces/")
		if id != "" && !strings.Contains(id, "/") {
			h.Get(w, r, id)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ServeAdmin dispatches /admin/api/v1/workspaces paths (admin mutations).
func (h *WorkspaceHandler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/admin/api/v1/workspaces" && r.Method == http.MethodPost:
		h.Create(w, r)
	case strings.HasPrefix(path, "/admin/api/v1/workspaces/"):
		id := strings.TrimPrefix(path, "/admin/api/v1/workspaces/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.Get(w, r, id)
		case http.MethodPut:
			h.Update(w, r, id)
		case http.MethodDelete:
			h.Archive(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := repository.WorkspaceFilters{
		AvailableOnly: q.Get("available") == "true",
		Search:        strings.TrimSpace(q.Get("search")),
	}
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 50)

	items, total, err := h.workspaces.ListWorkspaces(r.Context(), actorFrom(r), filters, page, size)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(pageResult[*service.WorkspaceDTO]{Items: items, Total: total, Page: page, Size: size}))
}

func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	dto, err := h.workspaces.GetWorkspace(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(dto))
}

type createWorkspaceBody struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Capacity    int             `json:"capacity"`
	IsAvailable *bool           `json:"isAvailable"`
	Equipment   json.RawMessage `json:"equipment"`
}

func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createWorkspaceBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}

	available := true
	if body.IsAvailable != nil {
		available = *body.IsAvailable
	}
	dto, err := h.workspaces.CreateWorkspace(r.Context(), service.CreateWorkspaceRequest{
		Actor:       actorFrom(r),
		Name:        strings.TrimSpace(body.Name),
		Description: body.Description,
		Capacity:    body.Capacity,
		IsAvailable: available,
		Equipment:   body.Equipment,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(dto))
}

type updateWorkspaceBody struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Capacity    *int            `json:"capacity"`
	IsAvailable *bool           `json:"isAvailable"`
	Equipment   json.RawMessage `json:"equipment"`
}

func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var body updateWorkspaceBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}

	dto, err := h.workspaces.UpdateWorkspace(r.Context(), service.UpdateWorkspaceRequest{
		Actor:       actorFrom(r),
		WorkspaceID: id,
		Name:        body.Name,
		Description: body.Description,
		Capacity:    body.Capacity,
		IsAvailable: body.IsAvailable,
		Equipment:   body.Equipment,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(dto))
}

func (h *WorkspaceHandler) Archive(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.workspaces.ArchiveWorkspace(r.Context(), actorFrom(r), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]bool{"archived": true}))
}
