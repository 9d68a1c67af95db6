package update_offering

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
	msgNotDraft           = "изменять можно только черновик предложения"
	msgInvalidInput       = "некорректные данные предложения"
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

// Handle PUT /api/v1/offerings/{offeringId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	offeringID, err := strconv.ParseInt(vars["offeringId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /offerings/{id} - Invalid offering ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOfferingID)
		return
	}

	var req models.UpdateOfferingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /offerings/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), offeringID, &req)
	if err != nil {
		switch {
		case errors.Is(err, offerings.ErrOfferingNotFound):
			h.logger.Warn("PUT /offerings/{id} - Offering not found: offering_id=%d", offeringID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, offerings.ErrInvalidState):
			h.logger.Warn("PUT /offerings/{id} - Not a draft: offering_id=%d", offeringID)
			handlers.RespondConflict(w, msgNotDraft)

		case errors.Is(err, offerings.ErrInvalidInput):
			h.logger.Warn("PUT /offerings/{id} - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PUT /offerings/{id} - Failed to update offering: offering_id=%d, error=%v",
				offeringID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /offerings/{id} - Offering updated successfully: offering_id=%d", offeringID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
