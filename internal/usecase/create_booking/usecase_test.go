package create_booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	offeringRepo "github.com/m04kA/SMC-OfferingService/internal/infra/storage/offering"
	"github.com/m04kA/SMC-OfferingService/internal/service/allocation"
	"github.com/m04kA/SMC-OfferingService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// fakeTxManager сериализует транзакции мьютексом, имитируя
// SERIALIZABLE-изоляцию вокруг строк одного предложения
type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fixedTimeProvider struct {
	now time.Time
}

func (p fixedTimeProvider) Now() time.Time { return p.now }

type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*domain.Booking
	offering *domain.Offering
	seq      int64
	calls    []string
}

func (f *fakeStore) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, event)
}

func newFakeStore(o *domain.Offering) *fakeStore {
	return &fakeStore{
		bookings: make(map[int64]*domain.Booking),
		offering: o,
	}
}

func (f *fakeStore) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	f.bookings[b.ID] = &cp
	return b, nil
}

func (f *fakeStore) ExistsActiveByCustomerAndOffering(_ context.Context, customerID, offeringID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.CustomerID == customerID && b.OfferingID == offeringID && b.State != domain.BookingCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetByIDForUpdate(_ context.Context, id int64) (*domain.Offering, error) {
	if f.offering == nil || f.offering.ID != id {
		return nil, offeringRepo.ErrOfferingNotFound
	}
	cp := *f.offering
	return &cp, nil
}

func (f *fakeStore) Next(_ context.Context, _ string, _ int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.calls = append(f.calls, "sequence next")
	return f.seq, nil
}

// recordingTxManager отмечает границы транзакции в журнале вызовов store
type recordingTxManager struct {
	store *fakeStore
}

func (m *recordingTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.store.record("tx begin")
	defer m.store.record("tx end")
	return fn(ctx)
}

// fakeAllocator повторяет решение настоящего аллокатора поверх fakeStore
type fakeAllocator struct {
	store *fakeStore
}

func (a *fakeAllocator) Allocate(_ context.Context, offering *domain.Offering) (allocation.Assignment, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	confirmed, waitlisted := 0, 0
	for _, b := range a.store.bookings {
		if b.OfferingID != offering.ID {
			continue
		}
		switch b.State {
		case domain.BookingConfirmed, domain.BookingDone:
			confirmed++
		case domain.BookingWaitlisted:
			waitlisted++
		}
	}

	if confirmed < offering.Capacity {
		return allocation.Assignment{State: domain.BookingConfirmed}, nil
	}
	return allocation.Assignment{
		State:            domain.BookingWaitlisted,
		WaitlistPosition: ptr.Ptr(waitlisted + 1),
	}, nil
}

func testOffering(capacity int) *domain.Offering {
	return &domain.Offering{
		ID:        1,
		Name:      "Go Workshop",
		Capacity:  capacity,
		Price:     100,
		StartTime: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		State:     domain.OfferingPublished,
		Category:  ptr.Ptr("workshop"),
		Active:    true,
	}
}

func newUseCase(store *fakeStore, now time.Time) *UseCase {
	uc := NewUseCase(store, store, store, &fakeAllocator{store: store}, &fakeTxManager{}, nopLogger{})
	uc.timeProvider = fixedTimeProvider{now: now}
	return uc
}

func testRequest(customerID int64) *Request {
	return &Request{
		CustomerID:    customerID,
		OfferingID:    1,
		RequestedDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestExecute_ConfirmsUntilCapacityThenWaitlists(t *testing.T) {
	store := newFakeStore(testOffering(2))
	uc := newUseCase(store, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := uc.Execute(ctx, testRequest(1))
	require.NoError(t, err)
	assert.Equal(t, string(domain.BookingConfirmed), first.State)
	assert.Nil(t, first.WaitlistPosition)
	assert.Equal(t, "BOOK/2026/0001", first.Code)
	assert.Equal(t, 100.0, first.Amount)

	second, err := uc.Execute(ctx, testRequest(2))
	require.NoError(t, err)
	assert.Equal(t, string(domain.BookingConfirmed), second.State)
	assert.Equal(t, "BOOK/2026/0002", second.Code)

	third, err := uc.Execute(ctx, testRequest(3))
	require.NoError(t, err)
	assert.Equal(t, string(domain.BookingWaitlisted), third.State)
	require.NotNil(t, third.WaitlistPosition)
	assert.Equal(t, 1, *third.WaitlistPosition)

	fourth, err := uc.Execute(ctx, testRequest(4))
	require.NoError(t, err)
	require.NotNil(t, fourth.WaitlistPosition)
	assert.Equal(t, 2, *fourth.WaitlistPosition)
}

func TestExecute_FreezesEarlyBirdAmount(t *testing.T) {
	offering := testOffering(5)
	offering.EarlyBirdPrice = ptr.Ptr(80.0)
	offering.EarlyBirdDeadline = ptr.Ptr(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC))

	store := newFakeStore(offering)
	uc := newUseCase(store, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), testRequest(1))
	require.NoError(t, err)
	assert.Equal(t, 80.0, resp.Amount)
}

func TestExecute_RejectsDuplicateActiveBooking(t *testing.T) {
	store := newFakeStore(testOffering(5))
	uc := newUseCase(store, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := uc.Execute(ctx, testRequest(1))
	require.NoError(t, err)

	_, err = uc.Execute(ctx, testRequest(1))
	assert.ErrorIs(t, err, ErrDuplicateBooking)
}

func TestExecute_AllowsRebookingAfterCancellation(t *testing.T) {
	store := newFakeStore(testOffering(5))
	uc := newUseCase(store, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := uc.Execute(ctx, testRequest(1))
	require.NoError(t, err)

	store.mu.Lock()
	store.bookings[first.ID].State = domain.BookingCancelled
	store.mu.Unlock()

	_, err = uc.Execute(ctx, testRequest(1))
	assert.NoError(t, err)
}

func TestExecute_RejectsWhenNotAcceptingBookings(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(o *domain.Offering)
		now    time.Time
	}{
		{
			name:   "draft offering",
			mutate: func(o *domain.Offering) { o.State = domain.OfferingDraft },
			now:    now,
		},
		{
			name:   "registration closed",
			mutate: func(o *domain.Offering) { o.State = domain.OfferingRegistrationClosed },
			now:    now,
		},
		{
			name:   "cancelled offering",
			mutate: func(o *domain.Offering) { o.State = domain.OfferingCancelled },
			now:    now,
		},
		{
			name:   "start time already passed",
			mutate: func(o *domain.Offering) {},
			now:    time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offering := testOffering(5)
			tt.mutate(offering)
			uc := newUseCase(newFakeStore(offering), tt.now)

			_, err := uc.Execute(context.Background(), testRequest(1))
			assert.ErrorIs(t, err, ErrOfferingNotAcceptingBookings)
		})
	}
}

func TestExecute_RejectsDateAfterOfferingStart(t *testing.T) {
	store := newFakeStore(testOffering(5))
	uc := newUseCase(store, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))

	req := testRequest(1)
	req.RequestedDate = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrDateOutsideSchedule)
}

func TestExecute_OfferingNotFound(t *testing.T) {
	store := newFakeStore(testOffering(5))
	uc := newUseCase(store, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))

	req := testRequest(1)
	req.OfferingID = 404

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrOfferingNotFound)
}

func TestExecute_ZeroCapacityGoesStraightToWaitlist(t *testing.T) {
	store := newFakeStore(testOffering(0))
	uc := newUseCase(store, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), testRequest(1))
	require.NoError(t, err)
	assert.Equal(t, string(domain.BookingWaitlisted), resp.State)
	require.NotNil(t, resp.WaitlistPosition)
	assert.Equal(t, 1, *resp.WaitlistPosition)
}

// Номер выдаётся до входа в критическую секцию: иначе строка счётчика
// сериализовала бы бронирования независимых друг от друга предложений
func TestExecute_IssuesCodeBeforeCriticalSection(t *testing.T) {
	store := newFakeStore(testOffering(1))
	uc := NewUseCase(store, store, store, &fakeAllocator{store: store}, &recordingTxManager{store: store}, nopLogger{})
	uc.timeProvider = fixedTimeProvider{now: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)}

	resp, err := uc.Execute(context.Background(), testRequest(1))
	require.NoError(t, err)
	assert.Equal(t, "BOOK/2026/0001", resp.Code)
	assert.Equal(t, []string{"sequence next", "tx begin", "tx end"}, store.calls)
}

// Конкурирующие запросы на единственное место: ровно один должен
// получить confirmed, остальные выстраиваются в очередь без дыр
func TestExecute_ConcurrentRequestsNeverOverbook(t *testing.T) {
	const workers = 10

	store := newFakeStore(testOffering(1))
	uc := newUseCase(store, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	results := make([]*Response, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = uc.Execute(context.Background(), testRequest(int64(i+1)))
		}(i)
	}
	wg.Wait()

	confirmed := 0
	positions := make(map[int]int)
	codes := make(map[string]bool)

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i], "worker %d", i)
		resp := results[i]

		require.False(t, codes[resp.Code], "duplicate code %s", resp.Code)
		codes[resp.Code] = true

		switch resp.State {
		case string(domain.BookingConfirmed):
			confirmed++
		case string(domain.BookingWaitlisted):
			require.NotNil(t, resp.WaitlistPosition)
			positions[*resp.WaitlistPosition]++
		default:
			t.Fatalf("unexpected state %s", resp.State)
		}
	}

	assert.Equal(t, 1, confirmed)
	require.Len(t, positions, workers-1)
	for pos := 1; pos <= workers-1; pos++ {
		assert.Equal(t, 1, positions[pos], fmt.Sprintf("position %d", pos))
	}
}
