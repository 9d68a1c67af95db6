package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	offeringRepo "github.com/m04kA/SMC-OfferingService/internal/infra/storage/offering"
	"github.com/m04kA/SMC-OfferingService/internal/service/pricing"
	"github.com/m04kA/SMC-OfferingService/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	offeringRepo OfferingRepository
	sequenceRepo SequenceRepository
	allocator    Allocator
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	offeringRepo OfferingRepository,
	sequenceRepo SequenceRepository,
	allocator Allocator,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		offeringRepo: offeringRepo,
		sequenceRepo: sequenceRepo,
		allocator:    allocator,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования.
// Решение confirmed/waitlisted и фиксация суммы происходят в одной
// сериализуемой транзакции: бронирования предложения блокируются
// аллокатором, поэтому два конкурирующих запроса на последнее место
// не могут пройти одновременно. Код выдается до входа в транзакцию,
// чтобы строка счётчика не стала общей точкой сериализации для
// независимых предложений.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d, offering=%d, date=%s",
		req.CustomerID, req.OfferingID, req.RequestedDate.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Код выдается вне сериализуемой транзакции: счётчик монотонный,
	// дыра от несостоявшегося бронирования допустима, зато конкурирующие
	// запросы к разным предложениям не пересекаются на строке счётчика
	year := now.Year()
	seq, err := uc.sequenceRepo.Next(ctx, domain.BookingSequenceName, year)
	if err != nil {
		uc.logger.Error("CreateBooking: sequence allocation failed: %v", err)
		return nil, fmt.Errorf("%w: sequence allocation failed: %v", ErrInternal, err)
	}
	code := fmt.Sprintf("%s/%d/%0*d", domain.BookingSequencePrefix, year, domain.BookingSequencePadding, seq)

	// Переменная для хранения результата
	var result *domain.Booking

	// 4. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Получаем предложение с блокировкой (FOR UPDATE)
		offering, err := uc.offeringRepo.GetByIDForUpdate(txCtx, req.OfferingID)
		if err != nil {
			if errors.Is(err, offeringRepo.ErrOfferingNotFound) {
				uc.logger.Warn("CreateBooking: offering id=%d not found", req.OfferingID)
				return ErrOfferingNotFound
			}
			uc.logger.Error("CreateBooking: failed to get offering id=%d: %v", req.OfferingID, err)
			return fmt.Errorf("%w: failed to get offering: %v", ErrInternal, err)
		}

		// 4.2. Предложение должно принимать бронирования
		if err := validateOfferingAcceptsBookings(offering, now); err != nil {
			uc.logger.Warn("CreateBooking: offering id=%d is not accepting bookings, state=%s",
				offering.ID, offering.State)
			return err
		}

		// 4.3. Не более одного активного бронирования на пару (клиент, предложение)
		exists, err := uc.bookingRepo.ExistsActiveByCustomerAndOffering(txCtx, req.CustomerID, req.OfferingID)
		if err != nil {
			uc.logger.Error("CreateBooking: duplicate check failed: %v", err)
			return fmt.Errorf("%w: duplicate check failed: %v", ErrInternal, err)
		}
		if exists {
			uc.logger.Warn("CreateBooking: customer=%d already has an active booking for offering=%d",
				req.CustomerID, req.OfferingID)
			return ErrDuplicateBooking
		}

		// 4.4. Запрошенная дата не должна выходить за старт предложения
		if err := validateWithinSchedule(req.RequestedDate, offering); err != nil {
			uc.logger.Warn("CreateBooking: date %s is outside offering=%d schedule",
				req.RequestedDate.Format(domain.DateFormat), offering.ID)
			return err
		}

		// 4.5. Аллокатор решает: место или очередь
		assignment, err := uc.allocator.Allocate(txCtx, offering)
		if err != nil {
			uc.logger.Error("CreateBooking: allocation failed for offering=%d: %v", offering.ID, err)
			return fmt.Errorf("%w: allocation failed: %v", ErrInternal, err)
		}

		// 4.6. Фиксируем сумму на момент создания
		amount := pricing.ApplicablePrice(offering, req.RequestedDate)

		// 4.7. Создаем бронирование
		booking := &domain.Booking{
			Code:             code,
			OfferingID:       req.OfferingID,
			CustomerID:       req.CustomerID,
			RequestedDate:    req.RequestedDate,
			State:            assignment.State,
			WaitlistPosition: assignment.WaitlistPosition,
			Amount:           amount,
			Notes:            req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("CreateBooking: serialization retries exhausted for offering=%d", req.OfferingID)
			return nil, ErrTransientConflict
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, code=%s, state=%s",
		result.ID, result.Code, result.State)

	// Конвертируем в response
	return &Response{
		ID:               result.ID,
		Code:             result.Code,
		OfferingID:       result.OfferingID,
		CustomerID:       result.CustomerID,
		RequestedDate:    result.RequestedDate,
		State:            string(result.State),
		WaitlistPosition: result.WaitlistPosition,
		Amount:           result.Amount,
		Notes:            result.Notes,
		CreatedAt:        result.CreatedAt,
		UpdatedAt:        result.UpdatedAt,
	}, nil
}
