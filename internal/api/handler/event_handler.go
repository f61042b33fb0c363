package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/wishfox/notifier/internal/api/middleware"
	"github.com/wishfox/notifier/internal/domain"
	"github.com/wishfox/notifier/internal/service"
)

// EventHandler receives wish-event triggers from the CRUD collaborator.
// The caller invokes it synchronously after committing the wish mutation;
// the response carries only the fan-out count, never a delivery outcome.
type EventHandler struct {
	svc    *service.FanOutService
	logger *zap.Logger
}

func NewEventHandler(svc *service.FanOutService, logger *zap.Logger) *EventHandler {
	return &EventHandler{svc: svc, logger: logger}
}

// WishEventRequest is the inbound trigger payload.
type WishEventRequest struct {
	WishID int64              `json:"wish_id"`
	Action domain.EventAction `json:"action"`
}

// WishEvent handles POST /internal/v1/wish-events
//
// @Summary  Fan a wish event out to the owner's followers
// @Tags     events
// @Accept   json
// @Produce  json
// @Param    body  body      WishEventRequest  true  "Wish event"
// @Success  202   {object}  map[string]int
// @Failure  404   {object}  map[string]string
// @Failure  422   {object}  map[string]string
// @Router   /internal/v1/wish-events [post]
func (h *EventHandler) WishEvent(w http.ResponseWriter, r *http.Request) {
	var req WishEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	count, err := h.svc.OnWishEvent(r.Context(), req.WishID, req.Action)
	if err != nil {
		h.logger.Warn("fan-out failed",
			zap.Int64("wish_id", req.WishID),
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]int{"notifications": count})
}
