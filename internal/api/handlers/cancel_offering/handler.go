package cancel_offering

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-OfferingService/internal/api/handlers"
	"github.com/m04kA/SMC-OfferingService/internal/service/offerings"
	"github.com/m04kA/SMC-OfferingService/internal/service/offerings/models"
)

const (
	msgInvalidOfferingID  = "некорректный ID предложения"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "предложение не найдено"
	msgAlreadyTerminal    = "предложение уже отменено или завершено"
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

// Handle POST /api/v1/offerings/{offeringId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	offeringID, err := strconv.ParseInt(vars["offeringId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /offerings/{id}/cancel - Invalid offering ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOfferingID)
		return
	}

	// Тело запроса опционально: причина отмены может отсутствовать
	var req models.CancelOfferingRequest
	if r.ContentLength > 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("POST /offerings/{id}/cancel - Invalid request body: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}

	result, err := h.service.Cancel(r.Context(), offeringID, &req)
	if err != nil {
		switch {
		case errors.Is(err, offerings.ErrOfferingNotFound):
			h.logger.Warn("POST /offerings/{id}/cancel - Offering not found: offering_id=%d", offeringID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, offerings.ErrInvalidState):
			h.logger.Warn("POST /offerings/{id}/cancel - Already terminal: offering_id=%d", offeringID)
			handlers.RespondConflict(w, msgAlreadyTerminal)

		default:
			h.logger.Error("POST /offerings/{id}/cancel - Failed to cancel offering: offering_id=%d, error=%v",
				offeringID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /offerings/{id}/cancel - Offering cancelled: offering_id=%d, cascade_cancelled=%d",
		offeringID, result.CancelledBookings)
	handlers.RespondJSON(w, http.StatusOK, result)
}
