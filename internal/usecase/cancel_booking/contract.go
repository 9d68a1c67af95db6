package cancel_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason *string) (time.Time, error)
}

// OfferingRepository интерфейс репозитория предложений
type OfferingRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Offering, error)
}

// Allocator освобождает места и продвигает очередь ожидания
type Allocator interface {
	Release(ctx context.Context, offering *domain.Offering) error
	RemoveFromWaitlist(ctx context.Context, offeringID int64, position int) error
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
