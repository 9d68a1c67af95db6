// Package transition_offering обрабатывает переходы состояний
// предложения: publish, close-registration, complete, reset-draft,
// а также скрытие из выдачи (archive/unarchive).
package transition_offering

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-OfferingService/internal/api/handlers"
	"github.com/m04kA/SMC-OfferingService/internal/service/offerings"
	"github.com/m04kA/SMC-OfferingService/internal/service/offerings/models"
)

const (
	msgInvalidOfferingID = "некорректный ID предложения"
	msgNotFound          = "предложение не найдено"
	msgInvalidState      = "переход недопустим из текущего состояния предложения"
	msgMissingData       = "для публикации нужны цена и категория"
	msgHasBookings       = "предложение с бронированиями нельзя вернуть в черновик"
)

type Handler struct {
	service OfferingService
	logger  Logger
}

func NewHandler(service OfferingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandlePublish POST /api/v1/offerings/{offeringId}/publish
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "publish", h.service.Publish)
}

// HandleCloseRegistration POST /api/v1/offerings/{offeringId}/close-registration
func (h *Handler) HandleCloseRegistration(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "close-registration", h.service.CloseRegistration)
}

// HandleComplete POST /api/v1/offerings/{offeringId}/complete
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "complete", h.service.MarkCompleted)
}

// HandleResetDraft POST /api/v1/offerings/{offeringId}/reset-draft
func (h *Handler) HandleResetDraft(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reset-draft", h.service.ResetToDraft)
}

// HandleArchive POST /api/v1/offerings/{offeringId}/archive
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, "archive", h.service.Archive)
}

// HandleUnarchive POST /api/v1/offerings/{offeringId}/unarchive
func (h *Handler) HandleUnarchive(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, "unarchive", h.service.Unarchive)
}

func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fn func(ctx context.Context, id int64) (*models.OfferingResponse, error),
) {
	offeringID, ok := h.offeringID(w, r, op)
	if !ok {
		return
	}

	result, err := fn(r.Context(), offeringID)
	if err != nil {
		h.respondTransitionError(w, op, offeringID, err)
		return
	}

	h.logger.Info("POST /offerings/{id}/%s - Offering transitioned: offering_id=%d, state=%s",
		op, offeringID, result.State)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) setActive(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fn func(ctx context.Context, id int64) error,
) {
	offeringID, ok := h.offeringID(w, r, op)
	if !ok {
		return
	}

	if err := fn(r.Context(), offeringID); err != nil {
		h.respondTransitionError(w, op, offeringID, err)
		return
	}

	h.logger.Info("POST /offerings/{id}/%s - Offering visibility changed: offering_id=%d", op, offeringID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) offeringID(w http.ResponseWriter, r *http.Request, op string) (int64, bool) {
	vars := mux.Vars(r)
	offeringID, err := strconv.ParseInt(vars["offeringId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /offerings/{id}/%s - Invalid offering ID: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidOfferingID)
		return 0, false
	}
	return offeringID, true
}

func (h *Handler) respondTransitionError(w http.ResponseWriter, op string, offeringID int64, err error) {
	switch {
	case errors.Is(err, offerings.ErrOfferingNotFound):
		h.logger.Warn("POST /offerings/{id}/%s - Offering not found: offering_id=%d", op, offeringID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, offerings.ErrMissingRequiredData):
		h.logger.Warn("POST /offerings/{id}/%s - Missing required data: offering_id=%d", op, offeringID)
		handlers.RespondBadRequest(w, msgMissingData)

	case errors.Is(err, offerings.ErrInvalidState):
		h.logger.Warn("POST /offerings/{id}/%s - Invalid state: offering_id=%d", op, offeringID)
		if op == "reset-draft" {
			handlers.RespondConflict(w, msgHasBookings)
			return
		}
		handlers.RespondConflict(w, msgInvalidState)

	default:
		h.logger.Error("POST /offerings/{id}/%s - Transition failed: offering_id=%d, error=%v",
			op, offeringID, err)
		handlers.RespondInternalError(w)
	}
}
