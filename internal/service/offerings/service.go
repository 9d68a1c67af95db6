package offerings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	offeringRepo "github.com/m04kA/SMC-OfferingService/internal/infra/storage/offering"
	"github.com/m04kA/SMC-OfferingService/internal/service/offerings/models"
)

const defaultCancellationReason = "offering cancelled"

// Service сервис жизненного цикла предложений.
// Переходы состояний: draft -> published -> registration_closed -> completed;
// cancelled достижимо из любого нетерминального состояния.
type Service struct {
	offeringRepo OfferingRepository
	bookingRepo  BookingRepository
	txManager    TransactionManager
	logger       Logger
}

// NewService создает новый экземпляр сервиса предложений
func NewService(
	offeringRepo OfferingRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		offeringRepo: offeringRepo,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// Create создает предложение в состоянии draft
func (s *Service) Create(ctx context.Context, req *models.CreateOfferingRequest) (*models.OfferingResponse, error) {
	s.logger.Info("CreateOffering: name=%q, capacity=%d, price=%.2f", req.Name, req.Capacity, req.Price)

	o := &domain.Offering{
		Name:              req.Name,
		Description:       req.Description,
		Capacity:          req.Capacity,
		Price:             req.Price,
		EarlyBirdPrice:    req.EarlyBirdPrice,
		EarlyBirdDeadline: req.EarlyBirdDeadline,
		DiscountPercent:   req.DiscountPercent,
		StartTime:         req.StartTime,
		State:             domain.OfferingDraft,
		Category:          req.Category,
		Tags:              req.Tags,
		Active:            true,
	}

	if err := validateOffering(o); err != nil {
		s.logger.Warn("CreateOffering: validation failed: %v", err)
		return nil, err
	}

	created, err := s.offeringRepo.Create(ctx, o)
	if err != nil {
		s.logger.Error("CreateOffering: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateOffering: successfully created offering id=%d", created.ID)
	return models.FromDomainOffering(created), nil
}

// Get получает предложение по ID
func (s *Service) Get(ctx context.Context, id int64) (*models.OfferingResponse, error) {
	o, err := s.getOffering(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return models.FromDomainOffering(o), nil
}

// List получает список предложений; архивные скрыты, если не запрошены явно
func (s *Service) List(ctx context.Context, req *models.ListOfferingsRequest) (*models.OfferingListResponse, error) {
	filter := domain.OfferingsFilter{
		Category:        req.Category,
		IncludeArchived: req.IncludeArchived,
	}

	if req.State != nil {
		state, ok := models.ToDomainOfferingState(*req.State)
		if !ok {
			s.logger.Warn("ListOfferings: invalid state=%s", *req.State)
			return nil, fmt.Errorf("%w: invalid state", ErrInvalidInput)
		}
		filter.State = &state
	}

	offerings, err := s.offeringRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ListOfferings: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainOfferingList(offerings), nil
}

// Update изменяет атрибуты предложения. Допустимо только в draft:
// после публикации условия, на которые уже опираются бронирования,
// фиксируются.
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateOfferingRequest) (*models.OfferingResponse, error) {
	s.logger.Info("UpdateOffering: id=%d", id)

	o, err := s.getOffering(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if !o.CanBeUpdated() {
		s.logger.Warn("UpdateOffering: offering id=%d is not editable in state=%s", id, o.State)
		return nil, ErrInvalidState
	}

	o.Name = req.Name
	o.Description = req.Description
	o.Capacity = req.Capacity
	o.Price = req.Price
	o.EarlyBirdPrice = req.EarlyBirdPrice
	o.EarlyBirdDeadline = req.EarlyBirdDeadline
	o.DiscountPercent = req.DiscountPercent
	o.StartTime = req.StartTime
	o.Category = req.Category
	o.Tags = req.Tags

	if err := validateOffering(o); err != nil {
		s.logger.Warn("UpdateOffering: validation failed for id=%d: %v", id, err)
		return nil, err
	}

	if err := s.offeringRepo.Update(ctx, o); err != nil {
		if errors.Is(err, offeringRepo.ErrOfferingNotFound) {
			return nil, ErrOfferingNotFound
		}
		s.logger.Error("UpdateOffering: repository error for id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainOffering(o), nil
}

// Publish публикует черновик предложения и открывает регистрацию.
// Требует заполненных цены и категории.
func (s *Service) Publish(ctx context.Context, id int64) (*models.OfferingResponse, error) {
	s.logger.Info("PublishOffering: id=%d", id)

	return s.transition(ctx, id, domain.OfferingPublished, func(o *domain.Offering) error {
		if o.State != domain.OfferingDraft {
			return ErrInvalidState
		}
		if o.Price <= 0 || o.Category == nil || *o.Category == "" {
			return ErrMissingRequiredData
		}
		return nil
	})
}

// CloseRegistration закрывает регистрацию опубликованного предложения
func (s *Service) CloseRegistration(ctx context.Context, id int64) (*models.OfferingResponse, error) {
	s.logger.Info("CloseRegistration: id=%d", id)

	return s.transition(ctx, id, domain.OfferingRegistrationClosed, func(o *domain.Offering) error {
		if o.State != domain.OfferingPublished {
			return ErrInvalidState
		}
		return nil
	})
}

// MarkCompleted помечает предложение завершённым
func (s *Service) MarkCompleted(ctx context.Context, id int64) (*models.OfferingResponse, error) {
	s.logger.Info("MarkCompleted: id=%d", id)

	return s.transition(ctx, id, domain.OfferingCompleted, func(o *domain.Offering) error {
		if o.State != domain.OfferingRegistrationClosed {
			return ErrInvalidState
		}
		return nil
	})
}

// Cancel отменяет предложение и каскадно отменяет все его нетерминальные
// бронирования. Продвижение очереди не выполняется - предложение
// снимается целиком. Всё происходит в одной сериализуемой транзакции.
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelOfferingRequest) (*models.CancelOfferingResponse, error) {
	s.logger.Info("CancelOffering: id=%d", id)

	reason := defaultCancellationReason
	if req != nil && req.Reason != nil && *req.Reason != "" {
		reason = *req.Reason
	}

	var cancelledBookings int64

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		o, err := s.getOffering(txCtx, id, true)
		if err != nil {
			return err
		}

		if !o.CanBeCancelled() {
			s.logger.Warn("CancelOffering: offering id=%d cannot be cancelled in state=%s", id, o.State)
			return ErrInvalidState
		}

		if err := s.offeringRepo.UpdateState(txCtx, id, domain.OfferingCancelled); err != nil {
			return fmt.Errorf("%w: Cancel - update state: %v", ErrInternal, err)
		}

		cancelledBookings, err = s.bookingRepo.CancelAllActiveByOffering(txCtx, id, reason)
		if err != nil {
			return fmt.Errorf("%w: Cancel - cascade cancel bookings: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("CancelOffering: offering id=%d cancelled, %d bookings cascade-cancelled",
		id, cancelledBookings)

	return &models.CancelOfferingResponse{
		State:             string(domain.OfferingCancelled),
		CancelledBookings: cancelledBookings,
	}, nil
}

// ResetToDraft возвращает опубликованное предложение в черновик.
// Допустимо только пока нет ни одного бронирования.
func (s *Service) ResetToDraft(ctx context.Context, id int64) (*models.OfferingResponse, error) {
	s.logger.Info("ResetToDraft: id=%d", id)

	var result *domain.Offering

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		o, err := s.getOffering(txCtx, id, true)
		if err != nil {
			return err
		}

		if o.State != domain.OfferingPublished {
			s.logger.Warn("ResetToDraft: offering id=%d is not published, state=%s", id, o.State)
			return ErrInvalidState
		}

		count, err := s.bookingRepo.CountByOffering(txCtx, id)
		if err != nil {
			return fmt.Errorf("%w: ResetToDraft - count bookings: %v", ErrInternal, err)
		}
		if count > 0 {
			s.logger.Warn("ResetToDraft: offering id=%d has %d bookings, refusing reset", id, count)
			return ErrInvalidState
		}

		if err := s.offeringRepo.UpdateState(txCtx, id, domain.OfferingDraft); err != nil {
			return fmt.Errorf("%w: ResetToDraft - update state: %v", ErrInternal, err)
		}

		o.State = domain.OfferingDraft
		result = o
		return nil
	})

	if err != nil {
		return nil, err
	}

	return models.FromDomainOffering(result), nil
}

// Archive скрывает предложение из выдачи по умолчанию, не меняя
// состояние жизненного цикла
func (s *Service) Archive(ctx context.Context, id int64) error {
	return s.setActive(ctx, id, false)
}

// Unarchive возвращает предложение в выдачу по умолчанию
func (s *Service) Unarchive(ctx context.Context, id int64) error {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id int64, active bool) error {
	s.logger.Info("SetActive: id=%d, active=%t", id, active)

	if err := s.offeringRepo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, offeringRepo.ErrOfferingNotFound) {
			return ErrOfferingNotFound
		}
		s.logger.Error("SetActive: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: SetActive - repository error: %v", ErrInternal, err)
	}

	return nil
}

// transition выполняет переход состояния под guard-проверкой внутри
// сериализуемой транзакции
func (s *Service) transition(
	ctx context.Context,
	id int64,
	to domain.OfferingState,
	guard func(o *domain.Offering) error,
) (*models.OfferingResponse, error) {
	var result *domain.Offering

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		o, err := s.getOffering(txCtx, id, true)
		if err != nil {
			return err
		}

		if err := guard(o); err != nil {
			s.logger.Warn("Transition: offering id=%d, %s -> %s rejected: %v", id, o.State, to, err)
			return err
		}

		if err := s.offeringRepo.UpdateState(txCtx, id, to); err != nil {
			return fmt.Errorf("%w: transition - update state: %v", ErrInternal, err)
		}

		o.State = to
		result = o
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Transition: offering id=%d moved to state=%s", id, to)
	return models.FromDomainOffering(result), nil
}

func (s *Service) getOffering(ctx context.Context, id int64, forUpdate bool) (*domain.Offering, error) {
	var (
		o   *domain.Offering
		err error
	)

	if forUpdate {
		o, err = s.offeringRepo.GetByIDForUpdate(ctx, id)
	} else {
		o, err = s.offeringRepo.GetByID(ctx, id)
	}

	if err != nil {
		if errors.Is(err, offeringRepo.ErrOfferingNotFound) {
			s.logger.Warn("GetOffering: offering id=%d not found", id)
			return nil, ErrOfferingNotFound
		}
		s.logger.Error("GetOffering: repository error for id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: getOffering - repository error: %v", ErrInternal, err)
	}

	return o, nil
}

// validateOffering проверяет инварианты предложения:
// capacity >= 0, ранняя цена ниже базовой, дедлайн ранней цены до начала,
// скидка в пределах 0-100
func validateOffering(o *domain.Offering) error {
	if o.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(o.Name) > domain.MaxNameLength {
		return fmt.Errorf("%w: name is too long", ErrInvalidInput)
	}
	if o.Capacity < 0 {
		return fmt.Errorf("%w: capacity must be non-negative", ErrInvalidInput)
	}
	if o.Price < 0 {
		return fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	}
	if o.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if o.EarlyBirdPrice != nil {
		if o.EarlyBirdDeadline == nil {
			return fmt.Errorf("%w: earlyBirdDeadline is required when earlyBirdPrice is set", ErrInvalidInput)
		}
		if *o.EarlyBirdPrice >= o.Price {
			return fmt.Errorf("%w: earlyBirdPrice must be lower than price", ErrInvalidInput)
		}
	}
	if o.EarlyBirdDeadline != nil && !o.EarlyBirdDeadline.Before(o.StartTime) {
		return fmt.Errorf("%w: earlyBirdDeadline must be before startTime", ErrInvalidInput)
	}

	if o.DiscountPercent != nil &&
		(*o.DiscountPercent < domain.MinDiscountPercent || *o.DiscountPercent > domain.MaxDiscountPercent) {
		return fmt.Errorf("%w: discountPercent must be within [0, 100]", ErrInvalidInput)
	}

	return nil
}
