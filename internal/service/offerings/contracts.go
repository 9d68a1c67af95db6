package offerings

import (
	"context"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
)

// OfferingRepository интерфейс репозитория предложений
type OfferingRepository interface {
	Create(ctx context.Context, o *domain.Offering) (*domain.Offering, error)
	GetByID(ctx context.Context, id int64) (*domain.Offering, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Offering, error)
	List(ctx context.Context, filter domain.OfferingsFilter) ([]*domain.Offering, error)
	Update(ctx context.Context, o *domain.Offering) error
	UpdateState(ctx context.Context, id int64, state domain.OfferingState) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	CountByOffering(ctx context.Context, offeringID int64) (int, error)
	CancelAllActiveByOffering(ctx context.Context, offeringID int64, reason string) (int64, error)
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
