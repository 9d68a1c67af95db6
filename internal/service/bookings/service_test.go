package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-OfferingService/internal/infra/storage/booking"
	offeringRepo "github.com/m04kA/SMC-OfferingService/internal/infra/storage/offering"
	"github.com/m04kA/SMC-OfferingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-OfferingService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeBookingRepo struct {
	bookings map[int64]*domain.Booking
}

func newFakeBookingRepo(bookings ...*domain.Booking) *fakeBookingRepo {
	repo := &fakeBookingRepo{bookings: make(map[int64]*domain.Booking)}
	for _, b := range bookings {
		cp := *b
		repo.bookings[b.ID] = &cp
	}
	return repo
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeBookingRepo) GetByCustomerWithFilter(_ context.Context, filter domain.CustomerBookingsFilter) ([]*domain.Booking, error) {
	matched := f.matchCustomer(filter)

	offset := (filter.Page - 1) * filter.PageSize
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (f *fakeBookingRepo) CountByCustomerWithFilter(_ context.Context, filter domain.CustomerBookingsFilter) (int, error) {
	return len(f.matchCustomer(filter)), nil
}

func (f *fakeBookingRepo) matchCustomer(filter domain.CustomerBookingsFilter) []*domain.Booking {
	out := make([]*domain.Booking, 0)
	for id := int64(1); id <= int64(len(f.bookings)); id++ {
		b, ok := f.bookings[id]
		if !ok || b.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != nil && b.State != *filter.Status {
			continue
		}
		if !filter.IncludeInactive && b.State == domain.BookingCancelled {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out
}

func (f *fakeBookingRepo) GetByOfferingWithFilter(_ context.Context, filter domain.OfferingBookingsFilter) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0)
	for id := int64(1); id <= int64(len(f.bookings)); id++ {
		b, ok := f.bookings[id]
		if !ok || b.OfferingID != filter.OfferingID {
			continue
		}
		if filter.Status != nil && b.State != *filter.Status {
			continue
		}
		if !filter.IncludeInactive && b.State == domain.BookingCancelled {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeBookingRepo) UpdateState(_ context.Context, id int64, state domain.BookingState) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.State = state
	return nil
}

func (f *fakeBookingRepo) Update(_ context.Context, b *domain.Booking) error {
	if _, ok := f.bookings[b.ID]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

type fakeOfferingRepo struct {
	offerings map[int64]*domain.Offering
}

func (f *fakeOfferingRepo) GetByID(_ context.Context, id int64) (*domain.Offering, error) {
	o, ok := f.offerings[id]
	if !ok {
		return nil, offeringRepo.ErrOfferingNotFound
	}
	cp := *o
	return &cp, nil
}

func testOffering() *domain.Offering {
	return &domain.Offering{
		ID:        1,
		Name:      "Go Workshop",
		Capacity:  10,
		Price:     100,
		StartTime: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		State:     domain.OfferingPublished,
		Active:    true,
	}
}

func testBooking(id int64, state domain.BookingState) *domain.Booking {
	return &domain.Booking{
		ID:            id,
		Code:          "BOOK/2026/0001",
		OfferingID:    1,
		CustomerID:    42,
		RequestedDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		State:         state,
		Amount:        100,
	}
}

func newService(br *fakeBookingRepo, or *fakeOfferingRepo) *Service {
	if or == nil {
		or = &fakeOfferingRepo{offerings: map[int64]*domain.Offering{1: testOffering()}}
	}
	return NewService(br, or, fakeTxManager{}, nopLogger{})
}

func TestGetByID(t *testing.T) {
	svc := newService(newFakeBookingRepo(testBooking(1, domain.BookingConfirmed)), nil)

	resp, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "BOOK/2026/0001", resp.Code)
	assert.Equal(t, "2026-05-01", resp.RequestedDate)

	_, err = svc.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetCustomerBookings(t *testing.T) {
	cancelled := testBooking(3, domain.BookingCancelled)
	repo := newFakeBookingRepo(
		testBooking(1, domain.BookingConfirmed),
		testBooking(2, domain.BookingWaitlisted),
		cancelled,
	)
	svc := newService(repo, nil)
	ctx := context.Background()

	t.Run("hides cancelled by default", func(t *testing.T) {
		resp, err := svc.GetCustomerBookings(ctx, &models.GetCustomerBookingsRequest{CustomerID: 42})
		require.NoError(t, err)
		assert.Len(t, resp.Bookings, 2)
		assert.Equal(t, 2, resp.Pagination.TotalItems)
	})

	t.Run("includes cancelled on request", func(t *testing.T) {
		resp, err := svc.GetCustomerBookings(ctx, &models.GetCustomerBookingsRequest{
			CustomerID:      42,
			IncludeInactive: true,
		})
		require.NoError(t, err)
		assert.Len(t, resp.Bookings, 3)
	})

	t.Run("filters by status", func(t *testing.T) {
		resp, err := svc.GetCustomerBookings(ctx, &models.GetCustomerBookingsRequest{
			CustomerID: 42,
			Status:     ptr.Ptr(string(domain.BookingWaitlisted)),
		})
		require.NoError(t, err)
		require.Len(t, resp.Bookings, 1)
		assert.Equal(t, int64(2), resp.Bookings[0].ID)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := svc.GetCustomerBookings(ctx, &models.GetCustomerBookingsRequest{
			CustomerID: 42,
			Status:     ptr.Ptr("pending"),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("paginates and reports total pages", func(t *testing.T) {
		resp, err := svc.GetCustomerBookings(ctx, &models.GetCustomerBookingsRequest{
			CustomerID: 42,
			Page:       2,
			PageSize:   1,
		})
		require.NoError(t, err)
		require.Len(t, resp.Bookings, 1)
		assert.Equal(t, int64(2), resp.Bookings[0].ID)
		assert.Equal(t, 2, resp.Pagination.TotalPages)
	})

	t.Run("clamps oversized page size", func(t *testing.T) {
		resp, err := svc.GetCustomerBookings(ctx, &models.GetCustomerBookingsRequest{
			CustomerID: 42,
			PageSize:   10000,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.MaxPageSize, resp.Pagination.PageSize)
	})
}

func TestGetOfferingBookings(t *testing.T) {
	repo := newFakeBookingRepo(
		testBooking(1, domain.BookingConfirmed),
		testBooking(2, domain.BookingCancelled),
	)
	svc := newService(repo, nil)
	ctx := context.Background()

	resp, err := svc.GetOfferingBookings(ctx, &models.GetOfferingBookingsRequest{OfferingID: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)

	_, err = svc.GetOfferingBookings(ctx, &models.GetOfferingBookingsRequest{OfferingID: 404})
	assert.ErrorIs(t, err, ErrOfferingNotFound)
}

func TestMarkDone(t *testing.T) {
	t.Run("marks confirmed booking done", func(t *testing.T) {
		svc := newService(newFakeBookingRepo(testBooking(1, domain.BookingConfirmed)), nil)

		resp, err := svc.MarkDone(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, string(domain.BookingDone), resp.State)
	})

	t.Run("rejects non-confirmed states", func(t *testing.T) {
		for _, state := range []domain.BookingState{
			domain.BookingDraft,
			domain.BookingWaitlisted,
			domain.BookingDone,
			domain.BookingCancelled,
		} {
			svc := newService(newFakeBookingRepo(testBooking(1, state)), nil)

			_, err := svc.MarkDone(context.Background(), 1)
			assert.ErrorIs(t, err, ErrInvalidStateTransition, "state %s", state)
		}
	})
}

func TestUpdate(t *testing.T) {
	t.Run("updates draft date and notes", func(t *testing.T) {
		repo := newFakeBookingRepo(testBooking(1, domain.BookingDraft))
		svc := newService(repo, nil)

		resp, err := svc.Update(context.Background(), 1, &models.UpdateBookingRequest{
			RequestedDate: "2026-05-15",
			Notes:         ptr.Ptr("window seat"),
		})
		require.NoError(t, err)
		assert.Equal(t, "2026-05-15", resp.RequestedDate)
		require.NotNil(t, resp.Notes)
		assert.Equal(t, "window seat", *resp.Notes)
	})

	t.Run("rejects writes outside draft", func(t *testing.T) {
		svc := newService(newFakeBookingRepo(testBooking(1, domain.BookingConfirmed)), nil)

		_, err := svc.Update(context.Background(), 1, &models.UpdateBookingRequest{
			RequestedDate: "2026-05-15",
		})
		assert.ErrorIs(t, err, ErrRestrictedWrite)
	})

	t.Run("rejects date after offering start", func(t *testing.T) {
		svc := newService(newFakeBookingRepo(testBooking(1, domain.BookingDraft)), nil)

		_, err := svc.Update(context.Background(), 1, &models.UpdateBookingRequest{
			RequestedDate: "2026-07-01",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		svc := newService(newFakeBookingRepo(testBooking(1, domain.BookingDraft)), nil)

		_, err := svc.Update(context.Background(), 1, &models.UpdateBookingRequest{
			RequestedDate: "15.05.2026",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
