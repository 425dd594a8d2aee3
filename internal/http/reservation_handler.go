package httpapi

import (
	"net/http"
	"strings"
	"time"

	"deskhive/internal/repository"
	"deskhive/internal/service"

	"go.uber.org/zap"
)

// ReservationHandler reservation REST surface.
type ReservationHandler struct {
	reservations     service.ReservationService
	workspaces       repository.WorkspacesRepository
	reservationsRepo repository.ReservationsRepository // export reads the repo directly
	logger           *zap.Logger
}

// NewReservationHandler creates the reservation handler.
func NewReservationHandler(
	reservations service.ReservationService,
	reservationsRepo repository.ReservationsRepository,
	workspacesRepo repository.WorkspacesRepository,
	logger *zap.Logger,
) *ReservationHandler {
	return &ReservationHandler{
		reservations:     reservations,
		workspaces:       workspacesRepo,
		reservationsRepo: reservationsRepo,
		logger:           logger,
	}
}

// ServeHTTP dispatches /api/v1/reservations paths.
func (h *ReservationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/reservations" && r.Method == http.MethodPost:
		h.Create(w, r)
	case path == "/api/v1/reservations" && r.Method == http.MethodGet:
		h.ListMine(w, r)
	case path == "/api/v1/reservations/availability" && r.Method == http.MethodGet:
		h.CheckAvailability(w, r)
	case strings.HasSuffix(path, "/cancel") && r.Method == http.MethodPost:
		id := strings.TrimSuffix(path, "/cancel")
		id = strings.TrimPrefix(id, "/api/v1/reservations/")
		if id != "" && !strings.Contains(id, "/") {
			h.Cancel(w, r, id)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case strings.HasPrefix(path, "/api/v1/reservations/") && r.Method == http.MethodGet:
		id := strings.TrimPrefix(path, "/api/v1/reservations/")
		if id != "" && !strings.Contains(id, "/") {
			h.Get(w, r, id)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case strings.HasPrefix(path, "/api/v1/reservations/") && r.Method == http.MethodPut:
		id := strings.TrimPrefix(path, "/api/v1/reservations/")
		if id != "" && !strings.Contains(id, "/") {
			h.Update(w, r, id)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type createReservationBody struct {
	WorkspaceID    string   `json:"workspaceId"`
	NumberOfPeople int      `json:"numberOfPeople"`
	StartTime      string   `json:"startTime"`
	EndTime        string   `json:"endTime"`
	Guests         []string `json:"guests"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createReservationBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	if body.WorkspaceID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("workspaceId is required"))
		return
	}
	start, okStart := parseTime(body.StartTime)
	end, okEnd := parseTime(body.EndTime)
	if !okStart || !okEnd {
		writeJSON(w, http.StatusBadRequest, Fail("startTime and endTime must be RFC3339 timestamps"))
		return
	}

	dto, err := h.reservations.CreateReservation(r.Context(), service.CreateReservationRequest{
		Actor:          actorFrom(r),
		WorkspaceID:    body.WorkspaceID,
		NumberOfPeople: body.NumberOfPeople,
		StartTime:      start,
		EndTime:        end,
		Guests:         body.Guests,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(dto))
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	dto, err := h.reservations.GetReservation(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(dto))
}

type updateReservationBody struct {
	NumberOfPeople *int     `json:"numberOfPeople"`
	StartTime      *string  `json:"startTime"`
	EndTime        *string  `json:"endTime"`
	Guests         []string `json:"guests"`
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var body updateReservationBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}

	req := service.UpdateReservationRequest{
		Actor:          actorFrom(r),
		ReservationID:  id,
		NumberOfPeople: body.NumberOfPeople,
		Guests:         body.Guests,
	}
	if body.StartTime != nil {
		t, ok := parseTime(*body.StartTime)
		if !ok {
			writeJSON(w, http.StatusBadRequest, Fail("startTime must be an RFC3339 timestamp"))
			return
		}
		req.StartTime = &t
	}
	if body.EndTime != nil {
		t, ok := parseTime(*body.EndTime)
		if !ok {
			writeJSON(w, http.StatusBadRequest, Fail("endTime must be an RFC3339 timestamp"))
			return
		}
		req.EndTime = &t
	}

	dto, err := h.reservations.UpdateReservation(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(dto))
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.reservations.CancelReservation(r.Context(), actorFrom(r), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"cancelled": true}))
}

func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	workspaceID := q.Get("workspaceId")
	if workspaceID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("workspaceId is required"))
		return
	}
	start, okStart := parseTime(q.Get("startTime"))
	end, okEnd := parseTime(q.Get("endTime"))
	if !okStart || !okEnd {
		writeJSON(w, http.StatusBadRequest, Fail("startTime and endTime must be RFC3339 timestamps"))
		return
	}

	resp, err := h.reservations.CheckAvailability(r.Context(), service.CheckAvailabilityRequest{
		Actor:                actorFrom(r),
		WorkspaceID:          workspaceID,
		StartTime:            start,
		EndTime:              end,
		ExcludeReservationID: q.Get("excludeReservationId"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *ReservationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	filters, page, size := reservationListParams(r)
	items, total, err := h.reservations.ListMyReservations(r.Context(), actorFrom(r), filters, page, size)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(pageResult[*service.ReservationDTO]{Items: items, Total: total, Page: page, Size: size}))
}

// ListCompany admin-only company-wide listing.
func (h *ReservationHandler) ListCompany(w http.ResponseWriter, r *http.Request) {
	filters, page, size := reservationListParams(r)
	items, total, err := h.reservations.ListCompanyReservations(r.Context(), actorFrom(r), filters, page, size)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(pageResult[*service.ReservationDTO]{Items: items, Total: total, Page: page, Size: size}))
}

// ListByWorkspace admin-only per-workspace listing.
func (h *ReservationHandler) ListByWorkspace(w http.ResponseWriter, r *http.Request, workspaceID string) {
	filters, page, size := reservationListParams(r)
	items, total, err := h.reservations.ListWorkspaceReservations(r.Context(), actorFrom(r), workspaceID, filters, page, size)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(pageResult[*service.ReservationDTO]{Items: items, Total: total, Page: page, Size: size}))
}

// Export admin-only .xlsx download of company reservations.
func (h *ReservationHandler) Export(w http.ResponseWriter, r *http.Request) {
	filters, _, _ := reservationListParams(r)
	data, err := service.ExportCompanyReservations(r.Context(), actorFrom(r), h.reservationsRepo, h.workspaces, filters)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="reservations-`+time.Now().Format("2006-01-02")+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func reservationListParams(r *http.Request) (repository.ReservationFilters, int, int) {
	q := r.URL.Query()
	filters := repository.ReservationFilters{
		Status:    q.Get("status"),
		Timeframe: q.Get("timeframe"),
	}
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)
	return filters, page, size
}
