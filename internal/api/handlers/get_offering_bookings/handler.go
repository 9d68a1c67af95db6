package get_offering_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-OfferingService/internal/api/handlers"
	"github.com/m04kA/SMC-OfferingService/internal/service/bookings"
	"github.com/m04kA/SMC-OfferingService/internal/service/bookings/models"
)

const (
	msgInvalidOfferingID = "некорректный ID предложения"
	msgOfferingNotFound  = "предложение не найдено"
	msgInvalidInput      = "некорректные параметры запроса"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/offerings/{offeringId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	offeringID, err := strconv.ParseInt(vars["offeringId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /offerings/{id}/bookings - Invalid offering ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOfferingID)
		return
	}

	query := r.URL.Query()

	req := &models.GetOfferingBookingsRequest{
		OfferingID:      offeringID,
		IncludeInactive: query.Get("includeInactive") == "true",
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.GetOfferingBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrOfferingNotFound):
			h.logger.Warn("GET /offerings/{id}/bookings - Offering not found: offering_id=%d", offeringID)
			handlers.RespondNotFound(w, msgOfferingNotFound)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /offerings/{id}/bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /offerings/{id}/bookings - Failed to get bookings: offering_id=%d, error=%v",
				offeringID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /offerings/{id}/bookings - Bookings retrieved successfully: offering_id=%d, count=%d",
		offeringID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
