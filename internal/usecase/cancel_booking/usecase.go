package cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-OfferingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-OfferingService/pkg/txmanager"
)

// UseCase use case для отмены бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	offeringRepo OfferingRepository
	allocator    Allocator
	txManager    TransactionManager
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	offeringRepo OfferingRepository,
	allocator Allocator,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		offeringRepo: offeringRepo,
		allocator:    allocator,
		txManager:    txManager,
		logger:       logger,
	}
}

// Execute выполняет use case отмены бронирования.
// Отмена подтверждённого бронирования освобождает место и продвигает
// голову очереди ожидания; отмена из очереди лишь сдвигает позиции.
// Оба пути выполняются в одной сериализуемой транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: id=%d", req.BookingID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}

	// Переменные для хранения результата
	var (
		result      *domain.Booking
		cancelledAt time.Time
	)

	// 2. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Получаем бронирование с блокировкой (FOR UPDATE)
		booking, err := uc.bookingRepo.GetByIDForUpdate(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("CancelBooking: booking id=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("CancelBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// 2.2. Повторная отмена и отмена завершённого запрещены
		if !booking.CanBeCancelled() {
			uc.logger.Warn("CancelBooking: booking id=%d in state=%s cannot be cancelled",
				booking.ID, booking.State)
			return ErrInvalidStateTransition
		}

		priorState := booking.State
		priorPosition := booking.WaitlistPosition

		// 2.3. Отменяем бронирование; время отмены проставляет БД
		cancelledAt, err = uc.bookingRepo.Cancel(txCtx, booking.ID, req.Reason)
		if err != nil {
			uc.logger.Error("CancelBooking: failed to cancel booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
		}

		// 2.4. Подтверждённое бронирование освобождает место:
		// голова очереди продвигается в confirmed
		switch priorState {
		case domain.BookingConfirmed:
			offering, err := uc.offeringRepo.GetByIDForUpdate(txCtx, booking.OfferingID)
			if err != nil {
				uc.logger.Error("CancelBooking: failed to get offering id=%d: %v", booking.OfferingID, err)
				return fmt.Errorf("%w: failed to get offering: %v", ErrInternal, err)
			}
			if err := uc.allocator.Release(txCtx, offering); err != nil {
				uc.logger.Error("CancelBooking: release failed for offering=%d: %v", offering.ID, err)
				return fmt.Errorf("%w: release failed: %v", ErrInternal, err)
			}

		case domain.BookingWaitlisted:
			// 2.5. Уход из очереди: позиции за ушедшим сдвигаются,
			// мест не прибавилось, продвижение не нужно
			if priorPosition == nil {
				return fmt.Errorf("%w: waitlisted booking id=%d has no position", ErrInternal, booking.ID)
			}
			if err := uc.allocator.RemoveFromWaitlist(txCtx, booking.OfferingID, *priorPosition); err != nil {
				uc.logger.Error("CancelBooking: waitlist removal failed for offering=%d: %v",
					booking.OfferingID, err)
				return fmt.Errorf("%w: waitlist removal failed: %v", ErrInternal, err)
			}
		}

		result = booking
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("CancelBooking: serialization retries exhausted for booking=%d", req.BookingID)
			return nil, ErrTransientConflict
		}
		return nil, err
	}

	uc.logger.Info("CancelBooking: booking id=%d cancelled, prior state=%s", result.ID, result.State)

	return &Response{
		ID:          result.ID,
		Code:        result.Code,
		OfferingID:  result.OfferingID,
		State:       string(domain.BookingCancelled),
		Reason:      req.Reason,
		CancelledAt: cancelledAt,
	}, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason is too long", ErrInvalidInput)
	}

	return nil
}
