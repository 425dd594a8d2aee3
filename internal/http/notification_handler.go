package httpapi

import (
	"net/http"
	"strings"

	"deskhive/internal/repository"
	"deskhive/internal/service"

	"go.uber.org/zap"
)

// NotificationHandler notification polling surface.
type NotificationHandler struct {
	notifications service.NotificationService
	logger        *zap.Logger
}

// NewNotificationHandler creates the notification handler.
func NewNotificationHandler(notifications service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// ServeHTTP dispatches /api/v1/notifications paths.
func (h *NotificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/notifications" && r.Method == http.MethodGet:
		h.List(w, r)
	case path == "/api/v1/notifications/unread-count" && r.Method == http.MethodGet:
		h.UnreadCount(w, r)
	case path == "/api/v1/notifications/read-all" && r.Method == http.MethodPost:
		h.MarkAllRead(w, r)
	case strings.HasSuffix(path, "/read") && r.Method == http.MethodPost:
		id := strings.TrimSuffix(path, "/read")
		id = strings.TrimPrefix(id, "/api/v1/notifications/")
		if id != "" && !strings.Contains(id, "/") {
			h.MarkRead(w, r, id)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := repository.NotificationFilters{
		UnreadOnly: q.Get("unread") == "true",
		Type:       q.Get("type"),
	}
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)

	items, total, err := h.notifications.ListNotifications(r.Context(), actorFrom(r), filters, page, size)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(pageResult[*service.NotificationDTO]{Items: items, Total: total, Page: page, Size: size}))
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.CountUnread(r.Context(), actorFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]int{"unread": count}))
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request, id string) {
	ok, err := h.notifications.MarkRead(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]bool{"read": ok}))
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkAllRead(r.Context(), actorFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]int{"updated": n}))
}

type broadcastBody struct {
	Message        string   `json:"message"`
	ExcludeUserIDs []string `json:"excludeUserIds"`
}

// Broadcast admin-only company-wide notification creation.
func (h *NotificationHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var body broadcastBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		writeJSON(w, http.StatusBadRequest, Fail("message is required"))
		return
	}

	resp, err := h.notifications.CreateGlobal(r.Context(), service.CreateGlobalRequest{
		Actor:          actorFrom(r),
		Message:        body.Message,
		ExcludeUserIDs: body.ExcludeUserIDs,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}
