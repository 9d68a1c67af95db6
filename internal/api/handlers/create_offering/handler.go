package create_offering

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-OfferingService/internal/api/handlers"
	"github.com/m04kA/SMC-OfferingService/internal/service/offerings"
	"github.com/m04kA/SMC-OfferingService/internal/service/offerings/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
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

// Handle POST /api/v1/offerings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOfferingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /offerings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, offerings.ErrInvalidInput):
			h.logger.Warn("POST /offerings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /offerings - Failed to create offering: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /offerings - Offering created successfully: offering_id=%d", result.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
