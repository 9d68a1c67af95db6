package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	"github.com/m04kA/SMC-OfferingService/internal/service/allocation"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	ExistsActiveByCustomerAndOffering(ctx context.Context, customerID, offeringID int64) (bool, error)
}

// OfferingRepository интерфейс репозитория предложений
type OfferingRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Offering, error)
}

// SequenceRepository интерфейс репозитория годовых последовательностей
type SequenceRepository interface {
	Next(ctx context.Context, name string, year int) (int64, error)
}

// Allocator распределяет места предложения между бронированиями
type Allocator interface {
	Allocate(ctx context.Context, offering *domain.Offering) (allocation.Assignment, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
