package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-OfferingService/internal/api/handlers"
	"github.com/m04kA/SMC-OfferingService/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-OfferingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgOfferingNotFound   = "предложение не найдено"
	msgNotAccepting       = "предложение не принимает бронирования"
	msgDuplicateBooking   = "у вас уже есть активное бронирование на это предложение"
	msgDateOutside        = "запрошенная дата позже начала предложения"
	msgTransientConflict  = "временный конфликт, повторите запрос"
	msgInvalidInput       = "некорректные данные запроса"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Получаем customerID из контекста (через middleware Auth)
	customerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты)
	useCaseReq, err := req.ToUseCaseRequest(customerID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrOfferingNotFound):
			h.logger.Warn("POST /bookings - Offering not found: offering_id=%d", req.OfferingID)
			handlers.RespondNotFound(w, msgOfferingNotFound)

		case errors.Is(err, createBooking.ErrOfferingNotAcceptingBookings):
			h.logger.Warn("POST /bookings - Offering not accepting bookings: offering_id=%d", req.OfferingID)
			handlers.RespondConflict(w, msgNotAccepting)

		case errors.Is(err, createBooking.ErrDuplicateBooking):
			h.logger.Warn("POST /bookings - Duplicate booking: customer_id=%d, offering_id=%d",
				customerID, req.OfferingID)
			handlers.RespondConflict(w, msgDuplicateBooking)

		case errors.Is(err, createBooking.ErrDateOutsideSchedule):
			h.logger.Warn("POST /bookings - Date outside schedule: offering_id=%d, date=%s",
				req.OfferingID, req.RequestedDate)
			handlers.RespondBadRequest(w, msgDateOutside)

		case errors.Is(err, createBooking.ErrTransientConflict):
			h.logger.Warn("POST /bookings - Transient conflict: offering_id=%d", req.OfferingID)
			handlers.RespondConflict(w, msgTransientConflict)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: customer_id=%d, offering_id=%d, error=%v",
				customerID, req.OfferingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, code=%s, state=%s",
		result.ID, result.Code, result.State)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
