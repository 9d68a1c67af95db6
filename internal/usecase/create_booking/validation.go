package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	if req.OfferingID <= 0 {
		return fmt.Errorf("%w: offeringID must be positive", ErrInvalidInput)
	}

	if req.RequestedDate.IsZero() {
		return fmt.Errorf("%w: requestedDate is required", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes are too long", ErrInvalidInput)
	}

	return nil
}

// validateOfferingAcceptsBookings проверяет, что предложение
// опубликовано и его старт ещё не наступил
func validateOfferingAcceptsBookings(o *domain.Offering, now time.Time) error {
	if !o.AcceptsBookingsAt(now) {
		return ErrOfferingNotAcceptingBookings
	}
	return nil
}

// validateWithinSchedule проверяет, что запрошенная дата не позже
// старта предложения
func validateWithinSchedule(requestedDate time.Time, o *domain.Offering) error {
	if requestedDate.After(o.StartTime) {
		return ErrDateOutsideSchedule
	}
	return nil
}
