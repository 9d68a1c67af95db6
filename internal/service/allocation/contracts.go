package allocation

import (
	"context"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByOfferingWithFilter(ctx context.Context, filter domain.OfferingBookingsFilter) ([]*domain.Booking, error)
	Promote(ctx context.Context, id int64, amount float64) error
	ShiftWaitlistPositions(ctx context.Context, offeringID int64, abovePosition int) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
