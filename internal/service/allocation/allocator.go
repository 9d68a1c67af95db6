// Package allocation ведение мест и очереди ожидания предложения.
//
// Все операции аллокатора для одного предложения должны выполняться
// внутри одной SERIALIZABLE-транзакции: чтение бронирований предложения
// блокирует его строки (FOR UPDATE), поэтому конкурирующие воркеры над
// одним предложением сериализуются, а разные предложения друг другу
// не мешают. Нарушение этого правила ведет к овербукингу или дырам в
// позициях очереди.
package allocation

import (
	"context"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	"github.com/m04kA/SMC-OfferingService/internal/service/pricing"
	"github.com/m04kA/SMC-OfferingService/pkg/dbmetrics"
)

// Assignment результат размещения нового бронирования
type Assignment struct {
	State            domain.BookingState
	WaitlistPosition *int // Заполнена только для waitlisted
}

// Allocator распределяет места предложения между бронированиями
type Allocator struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewAllocator создает новый экземпляр аллокатора
func NewAllocator(bookingRepo BookingRepository, logger Logger) *Allocator {
	return &Allocator{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// Allocate решает судьбу нового бронирования: confirmed, пока есть
// свободные места, иначе - хвост очереди ожидания
func (a *Allocator) Allocate(ctx context.Context, offering *domain.Offering) (Assignment, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return Assignment{}, ErrNotInTransaction
	}

	occupied, waitlisted, err := a.loadCounts(ctx, offering.ID)
	if err != nil {
		return Assignment{}, err
	}

	if occupied < offering.Capacity {
		a.logger.Info("Allocate: offering=%d occupied %d/%d, assigning confirmed",
			offering.ID, occupied+1, offering.Capacity)
		return Assignment{State: domain.BookingConfirmed}, nil
	}

	position := waitlisted + 1
	a.logger.Info("Allocate: offering=%d at capacity %d, waitlisting at position %d",
		offering.ID, offering.Capacity, position)

	return Assignment{
		State:            domain.BookingWaitlisted,
		WaitlistPosition: &position,
	}, nil
}

// Release освобождает одно подтверждённое место и продвигает голову
// очереди, если она есть. Сумма продвигаемого бронирования
// пересчитывается по его исходной requested_date. Позиции остальных
// сдвигаются вниз, сохраняя сплошную нумерацию 1..N.
func (a *Allocator) Release(ctx context.Context, offering *domain.Offering) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}

	head, err := a.waitlistHead(ctx, offering.ID)
	if err != nil {
		return err
	}
	if head == nil {
		a.logger.Info("Release: offering=%d waitlist empty, nothing to promote", offering.ID)
		return nil
	}

	amount := pricing.ApplicablePrice(offering, head.RequestedDate)

	if err := a.bookingRepo.Promote(ctx, head.ID, amount); err != nil {
		return fmt.Errorf("%w: Release - promote booking id=%d: %v", ErrInternal, head.ID, err)
	}

	if err := a.bookingRepo.ShiftWaitlistPositions(ctx, offering.ID, *head.WaitlistPosition); err != nil {
		return fmt.Errorf("%w: Release - shift waitlist positions: %v", ErrInternal, err)
	}

	a.logger.Info("Release: offering=%d promoted booking id=%d (code=%s) from position %d, amount=%.2f",
		offering.ID, head.ID, head.Code, *head.WaitlistPosition, amount)

	return nil
}

// RemoveFromWaitlist закрывает дыру после ухода бронирования из очереди.
// Мест это не освобождает, поэтому продвижения не происходит.
func (a *Allocator) RemoveFromWaitlist(ctx context.Context, offeringID int64, position int) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}

	if err := a.bookingRepo.ShiftWaitlistPositions(ctx, offeringID, position); err != nil {
		return fmt.Errorf("%w: RemoveFromWaitlist - shift waitlist positions: %v", ErrInternal, err)
	}

	a.logger.Info("RemoveFromWaitlist: offering=%d closed gap at position %d", offeringID, position)

	return nil
}

// loadCounts читает бронирования предложения под блокировкой и считает
// занятые места и длину очереди. Место удерживают confirmed и done:
// завершённое бронирование его не освобождает
func (a *Allocator) loadCounts(ctx context.Context, offeringID int64) (occupied, waitlisted int, err error) {
	bookings, err := a.bookingRepo.GetByOfferingWithFilter(ctx, domain.OfferingBookingsFilter{
		OfferingID: offeringID,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("%w: loadCounts - get bookings: %v", ErrInternal, err)
	}

	for _, b := range bookings {
		switch {
		case b.HoldsSeat():
			occupied++
		case b.IsWaitlisted():
			waitlisted++
		}
	}

	return occupied, waitlisted, nil
}

// waitlistHead возвращает бронирование с минимальной позицией в очереди
// или nil, если очередь пуста
func (a *Allocator) waitlistHead(ctx context.Context, offeringID int64) (*domain.Booking, error) {
	bookings, err := a.bookingRepo.GetByOfferingWithFilter(ctx, domain.OfferingBookingsFilter{
		OfferingID: offeringID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: waitlistHead - get bookings: %v", ErrInternal, err)
	}

	queue := make([]*domain.Booking, 0)
	for _, b := range bookings {
		if b.IsWaitlisted() && b.WaitlistPosition != nil {
			queue = append(queue, b)
		}
	}
	if len(queue) == 0 {
		return nil, nil
	}

	sort.Slice(queue, func(i, j int) bool {
		return *queue[i].WaitlistPosition < *queue[j].WaitlistPosition
	})

	return queue[0], nil
}
