package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-OfferingService/internal/infra/storage/booking"
	offeringRepo "github.com/m04kA/SMC-OfferingService/internal/infra/storage/offering"
	"github.com/m04kA/SMC-OfferingService/internal/service/bookings/models"
)

// Service сервис чтения и простых переходов бронирований.
// Создание и отмена живут в отдельных usecase-слоях: там задействован
// аллокатор мест и сериализуемые транзакции.
type Service struct {
	bookingRepo  BookingRepository
	offeringRepo OfferingRepository
	txManager    TransactionManager
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	offeringRepo OfferingRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		offeringRepo: offeringRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetBooking: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetBooking: repository error for id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(b), nil
}

// GetCustomerBookings получает бронирования клиента с пагинацией.
// Отменённые скрыты, если не запрошены явно.
func (s *Service) GetCustomerBookings(ctx context.Context, req *models.GetCustomerBookingsRequest) (*models.BookingListResponse, error) {
	filter := domain.CustomerBookingsFilter{
		CustomerID:      req.CustomerID,
		IncludeInactive: req.IncludeInactive,
		Page:            normalizePage(req.Page),
		PageSize:        normalizePageSize(req.PageSize),
	}

	if req.Status != nil {
		status, ok := models.ToDomainBookingState(*req.Status)
		if !ok {
			s.logger.Warn("GetCustomerBookings: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.GetByCustomerWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetCustomerBookings: repository error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - repository error: %v", ErrInternal, err)
	}

	total, err := s.bookingRepo.CountByCustomerWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetCustomerBookings: count error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - count error: %v", ErrInternal, err)
	}

	totalPages := total / filter.PageSize
	if total%filter.PageSize > 0 {
		totalPages++
	}

	return &models.BookingListResponse{
		Bookings: models.FromDomainBookingList(bookings),
		Pagination: models.Pagination{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetOfferingBookings получает бронирования предложения.
// Порядок: сначала очередь по позиции, затем по времени создания.
func (s *Service) GetOfferingBookings(ctx context.Context, req *models.GetOfferingBookingsRequest) (*models.OfferingBookingListResponse, error) {
	if _, err := s.offeringRepo.GetByID(ctx, req.OfferingID); err != nil {
		if errors.Is(err, offeringRepo.ErrOfferingNotFound) {
			s.logger.Warn("GetOfferingBookings: offering id=%d not found", req.OfferingID)
			return nil, ErrOfferingNotFound
		}
		s.logger.Error("GetOfferingBookings: offering lookup error for id=%d: %v", req.OfferingID, err)
		return nil, fmt.Errorf("%w: GetOfferingBookings - offering lookup: %v", ErrInternal, err)
	}

	filter := domain.OfferingBookingsFilter{
		OfferingID:      req.OfferingID,
		IncludeInactive: req.IncludeInactive,
	}

	if req.Status != nil {
		status, ok := models.ToDomainBookingState(*req.Status)
		if !ok {
			s.logger.Warn("GetOfferingBookings: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.GetByOfferingWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetOfferingBookings: repository error for offering=%d: %v", req.OfferingID, err)
		return nil, fmt.Errorf("%w: GetOfferingBookings - repository error: %v", ErrInternal, err)
	}

	return &models.OfferingBookingListResponse{
		Bookings: models.FromDomainBookingList(bookings),
	}, nil
}

// MarkDone помечает подтверждённое бронирование завершённым.
// Место при этом не освобождается: услуга оказана.
func (s *Service) MarkDone(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("MarkBookingDone: id=%d", id)

	var result *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		b, err := s.getBookingForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		if !b.CanBeMarkedDone() {
			s.logger.Warn("MarkBookingDone: booking id=%d in state=%s cannot be marked done", id, b.State)
			return ErrInvalidStateTransition
		}

		if err := s.bookingRepo.UpdateState(txCtx, id, domain.BookingDone); err != nil {
			return fmt.Errorf("%w: MarkDone - update state: %v", ErrInternal, err)
		}

		b.State = domain.BookingDone
		result = b
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("MarkBookingDone: booking id=%d marked done", id)
	return models.FromDomainBooking(result), nil
}

// Update изменяет дату и заметки черновика бронирования.
// После подтверждения или постановки в очередь атрибуты заморожены.
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateBooking: id=%d", id)

	requestedDate, err := time.Parse(domain.DateFormat, req.RequestedDate)
	if err != nil {
		s.logger.Warn("UpdateBooking: invalid requestedDate=%s", req.RequestedDate)
		return nil, fmt.Errorf("%w: requestedDate must be in format %s", ErrInvalidInput, domain.DateFormat)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: notes are too long", ErrInvalidInput)
	}

	var result *domain.Booking

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		b, err := s.getBookingForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		if !b.CanBeUpdated() {
			s.logger.Warn("UpdateBooking: booking id=%d in state=%s is read-only", id, b.State)
			return ErrRestrictedWrite
		}

		o, err := s.offeringRepo.GetByID(txCtx, b.OfferingID)
		if err != nil {
			if errors.Is(err, offeringRepo.ErrOfferingNotFound) {
				return ErrOfferingNotFound
			}
			return fmt.Errorf("%w: Update - offering lookup: %v", ErrInternal, err)
		}

		if requestedDate.After(o.StartTime) {
			s.logger.Warn("UpdateBooking: booking id=%d requestedDate=%s is after offering start", id, req.RequestedDate)
			return fmt.Errorf("%w: requestedDate must not be after offering start time", ErrInvalidInput)
		}

		b.RequestedDate = requestedDate
		b.Notes = req.Notes

		if err := s.bookingRepo.Update(txCtx, b); err != nil {
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}

		result = b
		return nil
	})

	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(result), nil
}

func (s *Service) getBookingForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetBooking: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetBooking: repository error for id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: getBookingForUpdate - repository error: %v", ErrInternal, err)
	}
	return b, nil
}

func normalizePage(page int) int {
	if page < 1 {
		return domain.DefaultPage
	}
	return page
}

func normalizePageSize(size int) int {
	if size < 1 {
		return domain.DefaultPageSize
	}
	if size > domain.MaxPageSize {
		return domain.MaxPageSize
	}
	return size
}
