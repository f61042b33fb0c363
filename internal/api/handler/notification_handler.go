package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wishfox/notifier/internal/domain"
	"github.com/wishfox/notifier/internal/service"
)

// NotificationHandler serves the per-recipient notification feed.
type NotificationHandler struct {
	svc    *service.FanOutService
	logger *zap.Logger
}

func NewNotificationHandler(svc *service.FanOutService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/notifications
//
// @Summary  List a recipient's notifications, newest first
// @Tags     notifications
// @Produce  json
// @Param    recipient_id  query     int  true   "Recipient user ID"
// @Param    page          query     int  false  "Page (default 1)"
// @Param    limit         query     int  false  "Page size (default 20, max 100)"
// @Success  200  {object}  map[string]any
// @Router   /api/v1/notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	recipientID, err := strconv.ParseInt(r.URL.Query().Get("recipient_id"), 10, 64)
	if err != nil || recipientID <= 0 {
		respondError(w, http.StatusBadRequest, "recipient_id is required")
		return
	}

	filter := domain.ListFilter{
		RecipientID: recipientID,
		Page:        queryInt(r, "page", 1),
		Limit:       queryInt(r, "limit", 20),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	notifications, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"total":         total,
		"page":          filter.Page,
		"limit":         filter.Limit,
	})
}

// GetByID handles GET /api/v1/notifications/{id}
//
// @Summary  Get a notification by ID
// @Tags     notifications
// @Produce  json
// @Param    id   path      string  true  "Notification UUID"
// @Success  200  {object}  domain.Notification
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/notifications/{id} [get]
func (h *NotificationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
