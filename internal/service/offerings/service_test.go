package offerings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	offeringRepo "github.com/m04kA/SMC-OfferingService/internal/infra/storage/offering"
	"github.com/m04kA/SMC-OfferingService/internal/service/offerings/models"
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

type fakeOfferingRepo struct {
	nextID    int64
	offerings map[int64]*domain.Offering
}

func newFakeOfferingRepo() *fakeOfferingRepo {
	return &fakeOfferingRepo{offerings: make(map[int64]*domain.Offering)}
}

func (f *fakeOfferingRepo) Create(_ context.Context, o *domain.Offering) (*domain.Offering, error) {
	f.nextID++
	o.ID = f.nextID
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	f.offerings[o.ID] = &cp
	return o, nil
}

func (f *fakeOfferingRepo) GetByID(_ context.Context, id int64) (*domain.Offering, error) {
	o, ok := f.offerings[id]
	if !ok {
		return nil, offeringRepo.ErrOfferingNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOfferingRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Offering, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeOfferingRepo) List(_ context.Context, filter domain.OfferingsFilter) ([]*domain.Offering, error) {
	out := make([]*domain.Offering, 0)
	for _, o := range f.offerings {
		if filter.State != nil && o.State != *filter.State {
			continue
		}
		if !filter.IncludeArchived && !o.Active {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeOfferingRepo) Update(_ context.Context, o *domain.Offering) error {
	if _, ok := f.offerings[o.ID]; !ok {
		return offeringRepo.ErrOfferingNotFound
	}
	cp := *o
	f.offerings[o.ID] = &cp
	return nil
}

func (f *fakeOfferingRepo) UpdateState(_ context.Context, id int64, state domain.OfferingState) error {
	o, ok := f.offerings[id]
	if !ok {
		return offeringRepo.ErrOfferingNotFound
	}
	o.State = state
	return nil
}

func (f *fakeOfferingRepo) SetActive(_ context.Context, id int64, active bool) error {
	o, ok := f.offerings[id]
	if !ok {
		return offeringRepo.ErrOfferingNotFound
	}
	o.Active = active
	return nil
}

type fakeBookingCounter struct {
	countByOffering map[int64]int
	cancelled       map[int64]int64
}

func newFakeBookingCounter() *fakeBookingCounter {
	return &fakeBookingCounter{
		countByOffering: make(map[int64]int),
		cancelled:       make(map[int64]int64),
	}
}

func (f *fakeBookingCounter) CountByOffering(_ context.Context, offeringID int64) (int, error) {
	return f.countByOffering[offeringID], nil
}

func (f *fakeBookingCounter) CancelAllActiveByOffering(_ context.Context, offeringID int64, _ string) (int64, error) {
	n := int64(f.countByOffering[offeringID])
	f.cancelled[offeringID] = n
	return n, nil
}

func newService(or *fakeOfferingRepo, br *fakeBookingCounter) *Service {
	return NewService(or, br, fakeTxManager{}, nopLogger{})
}

func validCreateRequest() *models.CreateOfferingRequest {
	return &models.CreateOfferingRequest{
		Name:      "Go Workshop",
		Capacity:  10,
		Price:     100,
		StartTime: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		Category:  ptr.Ptr("workshop"),
	}
}

func TestCreate_DraftWithValidData(t *testing.T) {
	svc := newService(newFakeOfferingRepo(), newFakeBookingCounter())

	resp, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, string(domain.OfferingDraft), resp.State)
	assert.True(t, resp.Active)
}

func TestCreate_RejectsBrokenPricingInvariants(t *testing.T) {
	svc := newService(newFakeOfferingRepo(), newFakeBookingCounter())
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(*models.CreateOfferingRequest)
	}{
		{
			name: "early bird price not below base price",
			mutate: func(r *models.CreateOfferingRequest) {
				r.EarlyBirdPrice = ptr.Ptr(100.0)
				r.EarlyBirdDeadline = ptr.Ptr(start.AddDate(0, -1, 0))
			},
		},
		{
			name: "early bird deadline after start time",
			mutate: func(r *models.CreateOfferingRequest) {
				r.EarlyBirdPrice = ptr.Ptr(80.0)
				r.EarlyBirdDeadline = ptr.Ptr(start.AddDate(0, 1, 0))
			},
		},
		{
			name: "early bird price without deadline",
			mutate: func(r *models.CreateOfferingRequest) {
				r.EarlyBirdPrice = ptr.Ptr(80.0)
			},
		},
		{
			name:   "negative capacity",
			mutate: func(r *models.CreateOfferingRequest) { r.Capacity = -1 },
		},
		{
			name:   "discount above 100",
			mutate: func(r *models.CreateOfferingRequest) { r.DiscountPercent = ptr.Ptr(120.0) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)

			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestPublish(t *testing.T) {
	t.Run("publishes a complete draft", func(t *testing.T) {
		repo := newFakeOfferingRepo()
		svc := newService(repo, newFakeBookingCounter())

		created, err := svc.Create(context.Background(), validCreateRequest())
		require.NoError(t, err)

		resp, err := svc.Publish(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.OfferingPublished), resp.State)
	})

	t.Run("fails without category", func(t *testing.T) {
		repo := newFakeOfferingRepo()
		svc := newService(repo, newFakeBookingCounter())

		req := validCreateRequest()
		req.Category = nil
		created, err := svc.Create(context.Background(), req)
		require.NoError(t, err)

		_, err = svc.Publish(context.Background(), created.ID)
		assert.ErrorIs(t, err, ErrMissingRequiredData)
	})

	t.Run("fails from non-draft state", func(t *testing.T) {
		repo := newFakeOfferingRepo()
		svc := newService(repo, newFakeBookingCounter())

		created, err := svc.Create(context.Background(), validCreateRequest())
		require.NoError(t, err)

		_, err = svc.Publish(context.Background(), created.ID)
		require.NoError(t, err)

		_, err = svc.Publish(context.Background(), created.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("fails for unknown offering", func(t *testing.T) {
		svc := newService(newFakeOfferingRepo(), newFakeBookingCounter())

		_, err := svc.Publish(context.Background(), 404)
		assert.ErrorIs(t, err, ErrOfferingNotFound)
	})
}

func TestLifecycleTransitions(t *testing.T) {
	repo := newFakeOfferingRepo()
	svc := newService(repo, newFakeBookingCounter())
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	// closeRegistration допустим только из published
	_, err = svc.CloseRegistration(ctx, created.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Publish(ctx, created.ID)
	require.NoError(t, err)

	// markCompleted допустим только из registration_closed
	_, err = svc.MarkCompleted(ctx, created.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	resp, err := svc.CloseRegistration(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.OfferingRegistrationClosed), resp.State)

	resp, err = svc.MarkCompleted(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.OfferingCompleted), resp.State)

	// completed - терминальное состояние
	_, err = svc.Cancel(ctx, created.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancel_CascadesBookings(t *testing.T) {
	repo := newFakeOfferingRepo()
	bookings := newFakeBookingCounter()
	svc := newService(repo, bookings)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	_, err = svc.Publish(ctx, created.ID)
	require.NoError(t, err)

	bookings.countByOffering[created.ID] = 3

	resp, err := svc.Cancel(ctx, created.ID, &models.CancelOfferingRequest{Reason: ptr.Ptr("venue unavailable")})
	require.NoError(t, err)
	assert.Equal(t, string(domain.OfferingCancelled), resp.State)
	assert.Equal(t, int64(3), resp.CancelledBookings)
	assert.Equal(t, int64(3), bookings.cancelled[created.ID])
}

func TestResetToDraft(t *testing.T) {
	t.Run("resets published offering without bookings", func(t *testing.T) {
		repo := newFakeOfferingRepo()
		svc := newService(repo, newFakeBookingCounter())
		ctx := context.Background()

		created, err := svc.Create(ctx, validCreateRequest())
		require.NoError(t, err)
		_, err = svc.Publish(ctx, created.ID)
		require.NoError(t, err)

		resp, err := svc.ResetToDraft(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.OfferingDraft), resp.State)
	})

	t.Run("refuses when bookings exist", func(t *testing.T) {
		repo := newFakeOfferingRepo()
		bookings := newFakeBookingCounter()
		svc := newService(repo, bookings)
		ctx := context.Background()

		created, err := svc.Create(ctx, validCreateRequest())
		require.NoError(t, err)
		_, err = svc.Publish(ctx, created.ID)
		require.NoError(t, err)

		bookings.countByOffering[created.ID] = 1

		_, err = svc.ResetToDraft(ctx, created.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("refuses from draft", func(t *testing.T) {
		repo := newFakeOfferingRepo()
		svc := newService(repo, newFakeBookingCounter())
		ctx := context.Background()

		created, err := svc.Create(ctx, validCreateRequest())
		require.NoError(t, err)

		_, err = svc.ResetToDraft(ctx, created.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestUpdate_DraftOnly(t *testing.T) {
	repo := newFakeOfferingRepo()
	svc := newService(repo, newFakeBookingCounter())
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	upd := &models.UpdateOfferingRequest{
		Name:      "Go Workshop, extended",
		Capacity:  20,
		Price:     150,
		StartTime: time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC),
		Category:  ptr.Ptr("workshop"),
	}

	resp, err := svc.Update(ctx, created.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, 20, resp.Capacity)

	_, err = svc.Publish(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, upd)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestArchive_HidesFromDefaultListing(t *testing.T) {
	repo := newFakeOfferingRepo()
	svc := newService(repo, newFakeBookingCounter())
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Archive(ctx, created.ID))

	visible, err := svc.List(ctx, &models.ListOfferingsRequest{})
	require.NoError(t, err)
	assert.Empty(t, visible.Offerings)

	all, err := svc.List(ctx, &models.ListOfferingsRequest{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, all.Offerings, 1)
}
