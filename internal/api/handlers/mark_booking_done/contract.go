package mark_booking_done

import (
	"context"

	"github.com/m04kA/SMC-OfferingService/internal/service/bookings/models"
)

type BookingService interface {
	MarkDone(ctx context.Context, id int64) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
