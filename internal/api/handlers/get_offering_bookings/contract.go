package get_offering_bookings

import (
	"context"

	"github.com/m04kA/SMC-OfferingService/internal/service/bookings/models"
)

type BookingService interface {
	GetOfferingBookings(ctx context.Context, req *models.GetOfferingBookingsRequest) (*models.OfferingBookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
