package bookings

import (
	"context"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	GetByCustomerWithFilter(ctx context.Context, filter domain.CustomerBookingsFilter) ([]*domain.Booking, error)
	CountByCustomerWithFilter(ctx context.Context, filter domain.CustomerBookingsFilter) (int, error)
	GetByOfferingWithFilter(ctx context.Context, filter domain.OfferingBookingsFilter) ([]*domain.Booking, error)
	UpdateState(ctx context.Context, id int64, state domain.BookingState) error
	Update(ctx context.Context, b *domain.Booking) error
}

// OfferingRepository интерфейс репозитория предложений
type OfferingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Offering, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
