package list_offerings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-OfferingService/internal/api/handlers"
	"github.com/m04kA/SMC-OfferingService/internal/service/offerings"
	"github.com/m04kA/SMC-OfferingService/internal/service/offerings/models"
)

const (
	msgInvalidInput = "некорректные параметры запроса"
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

// Handle GET /api/v1/offerings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := &models.ListOfferingsRequest{
		IncludeArchived: query.Get("includeArchived") == "true",
	}

	if state := query.Get("state"); state != "" {
		req.State = &state
	}
	if category := query.Get("category"); category != "" {
		req.Category = &category
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, offerings.ErrInvalidInput):
			h.logger.Warn("GET /offerings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /offerings - Failed to list offerings: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /offerings - Offerings retrieved successfully: count=%d", len(result.Offerings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
