package allocation

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	"github.com/m04kA/SMC-OfferingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-OfferingService/pkg/ptr"
)

// nopTx заглушка транзакции: аллокатор проверяет только факт её наличия
// в контексте, fake-репозиторий в БД не ходит
type nopTx struct{}

func (nopTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (nopTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (nopTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }
func (nopTx) Commit() error                                                    { return nil }
func (nopTx) Rollback() error                                                  { return nil }

func txContext() context.Context {
	return dbmetrics.ContextWithExecutor(context.Background(), nopTx{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeBookingRepo struct {
	bookings []*domain.Booking
}

func (f *fakeBookingRepo) GetByOfferingWithFilter(_ context.Context, filter domain.OfferingBookingsFilter) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0)
	for _, b := range f.bookings {
		if b.OfferingID == filter.OfferingID && b.State != domain.BookingCancelled {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) Promote(_ context.Context, id int64, amount float64) error {
	for _, b := range f.bookings {
		if b.ID == id {
			b.State = domain.BookingConfirmed
			b.WaitlistPosition = nil
			b.Amount = amount
			return nil
		}
	}
	return nil
}

func (f *fakeBookingRepo) ShiftWaitlistPositions(_ context.Context, offeringID int64, above int) error {
	for _, b := range f.bookings {
		if b.OfferingID == offeringID && b.State == domain.BookingWaitlisted &&
			b.WaitlistPosition != nil && *b.WaitlistPosition > above {
			*b.WaitlistPosition--
		}
	}
	return nil
}

func (f *fakeBookingRepo) waitlistPositions(offeringID int64) []int {
	positions := make([]int, 0)
	for _, b := range f.bookings {
		if b.OfferingID == offeringID && b.State == domain.BookingWaitlisted && b.WaitlistPosition != nil {
			positions = append(positions, *b.WaitlistPosition)
		}
	}
	return positions
}

func TestAllocate_ConfirmsWhileCapacityRemains(t *testing.T) {
	repo := &fakeBookingRepo{}
	alloc := NewAllocator(repo, nopLogger{})
	offering := &domain.Offering{ID: 1, Capacity: 2}

	got, err := alloc.Allocate(txContext(), offering)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.State)
	assert.Nil(t, got.WaitlistPosition)
}

func TestAllocate_WaitlistsWhenFull(t *testing.T) {
	repo := &fakeBookingRepo{bookings: []*domain.Booking{
		{ID: 1, OfferingID: 1, State: domain.BookingConfirmed},
		{ID: 2, OfferingID: 1, State: domain.BookingConfirmed},
	}}
	alloc := NewAllocator(repo, nopLogger{})
	offering := &domain.Offering{ID: 1, Capacity: 2}

	got, err := alloc.Allocate(txContext(), offering)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingWaitlisted, got.State)
	require.NotNil(t, got.WaitlistPosition)
	assert.Equal(t, 1, *got.WaitlistPosition)
}

func TestAllocate_WaitlistPositionGrowsWithQueue(t *testing.T) {
	repo := &fakeBookingRepo{bookings: []*domain.Booking{
		{ID: 1, OfferingID: 1, State: domain.BookingConfirmed},
		{ID: 2, OfferingID: 1, State: domain.BookingWaitlisted, WaitlistPosition: ptr.Ptr(1)},
		{ID: 3, OfferingID: 1, State: domain.BookingWaitlisted, WaitlistPosition: ptr.Ptr(2)},
	}}
	alloc := NewAllocator(repo, nopLogger{})
	offering := &domain.Offering{ID: 1, Capacity: 1}

	got, err := alloc.Allocate(txContext(), offering)
	require.NoError(t, err)
	require.NotNil(t, got.WaitlistPosition)
	assert.Equal(t, 3, *got.WaitlistPosition)
}

func TestAllocate_DoneBookingsKeepTheirSeat(t *testing.T) {
	// Завершённое бронирование не освобождает место: новый запрос
	// встаёт в хвост очереди, а не обходит её голову
	repo := &fakeBookingRepo{bookings: []*domain.Booking{
		{ID: 1, OfferingID: 1, State: domain.BookingDone},
		{ID: 2, OfferingID: 1, State: domain.BookingWaitlisted, WaitlistPosition: ptr.Ptr(1)},
	}}
	alloc := NewAllocator(repo, nopLogger{})
	offering := &domain.Offering{ID: 1, Capacity: 1}

	got, err := alloc.Allocate(txContext(), offering)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingWaitlisted, got.State)
	require.NotNil(t, got.WaitlistPosition)
	assert.Equal(t, 2, *got.WaitlistPosition)
	assert.Equal(t, []int{1}, repo.waitlistPositions(1))
}

func TestAllocate_IgnoresOtherOfferings(t *testing.T) {
	repo := &fakeBookingRepo{bookings: []*domain.Booking{
		{ID: 1, OfferingID: 99, State: domain.BookingConfirmed},
		{ID: 2, OfferingID: 99, State: domain.BookingConfirmed},
	}}
	alloc := NewAllocator(repo, nopLogger{})
	offering := &domain.Offering{ID: 1, Capacity: 1}

	got, err := alloc.Allocate(txContext(), offering)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.State)
}

func TestAllocate_RequiresTransaction(t *testing.T) {
	alloc := NewAllocator(&fakeBookingRepo{}, nopLogger{})

	_, err := alloc.Allocate(context.Background(), &domain.Offering{ID: 1, Capacity: 1})
	assert.ErrorIs(t, err, ErrNotInTransaction)
}

func TestRelease_PromotesHeadAndShiftsQueue(t *testing.T) {
	requested := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeBookingRepo{bookings: []*domain.Booking{
		{ID: 1, OfferingID: 1, State: domain.BookingConfirmed},
		{ID: 2, OfferingID: 1, State: domain.BookingWaitlisted, WaitlistPosition: ptr.Ptr(1), RequestedDate: requested},
		{ID: 3, OfferingID: 1, State: domain.BookingWaitlisted, WaitlistPosition: ptr.Ptr(2)},
		{ID: 4, OfferingID: 1, State: domain.BookingWaitlisted, WaitlistPosition: ptr.Ptr(3)},
	}}
	alloc := NewAllocator(repo, nopLogger{})

	deadline := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	offering := &domain.Offering{
		ID:                1,
		Capacity:          2,
		Price:             100,
		EarlyBirdPrice:    ptr.Ptr(80.0),
		EarlyBirdDeadline: &deadline,
	}

	require.NoError(t, alloc.Release(txContext(), offering))

	// Голова очереди подтверждена, сумма пересчитана по её requested_date
	promoted := repo.bookings[1]
	assert.Equal(t, domain.BookingConfirmed, promoted.State)
	assert.Nil(t, promoted.WaitlistPosition)
	assert.InDelta(t, 80.0, promoted.Amount, 1e-9)

	// Очередь осталась сплошной: 1, 2
	assert.ElementsMatch(t, []int{1, 2}, repo.waitlistPositions(1))
}

func TestRelease_NoopOnEmptyWaitlist(t *testing.T) {
	repo := &fakeBookingRepo{bookings: []*domain.Booking{
		{ID: 1, OfferingID: 1, State: domain.BookingConfirmed},
	}}
	alloc := NewAllocator(repo, nopLogger{})

	require.NoError(t, alloc.Release(txContext(), &domain.Offering{ID: 1, Capacity: 2, Price: 100}))
	assert.Equal(t, domain.BookingConfirmed, repo.bookings[0].State)
}

func TestRemoveFromWaitlist_ClosesGap(t *testing.T) {
	repo := &fakeBookingRepo{bookings: []*domain.Booking{
		{ID: 2, OfferingID: 1, State: domain.BookingWaitlisted, WaitlistPosition: ptr.Ptr(1)},
		{ID: 3, OfferingID: 1, State: domain.BookingWaitlisted, WaitlistPosition: ptr.Ptr(3)},
		{ID: 4, OfferingID: 1, State: domain.BookingWaitlisted, WaitlistPosition: ptr.Ptr(4)},
	}}
	alloc := NewAllocator(repo, nopLogger{})

	// Позиция 2 только что отменена вызывающим кодом
	require.NoError(t, alloc.RemoveFromWaitlist(txContext(), 1, 2))

	assert.ElementsMatch(t, []int{1, 2, 3}, repo.waitlistPositions(1))
}
