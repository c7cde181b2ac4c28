package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"travelbooking/internal/domain"
	"travelbooking/internal/repository"
)

// Mock repositories
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if b != nil && b.ID == uuid.Nil {
		b.ID = uuid.New() // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Update(ctx context.Context, b *domain.Booking, prev domain.BookingStatus) error {
	return m.Called(ctx, b, prev).Error(0)
}

func (m *MockBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockListingReader struct {
	mock.Mock
}

func (m *MockListingReader) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) NotifyBookingCreated(ctx context.Context, email, bookingID string) error {
	return m.Called(ctx, email, bookingID).Error(0)
}

type recordingEvents struct {
	created []*domain.Booking
}

func (r *recordingEvents) BookingCreated(b *domain.Booking) {
	r.created = append(r.created, b)
}

type deps struct {
	bookings *MockBookingRepository
	listings *MockListingReader
	notifs   *MockNotificationSender
	events   *recordingEvents
}

func newService() (*Service, deps) {
	d := deps{
		bookings: new(MockBookingRepository),
		listings: new(MockListingReader),
		notifs:   new(MockNotificationSender),
		events:   &recordingEvents{},
	}
	log, _ := logtest.NewNullLogger()
	return NewService(d.bookings, d.listings, d.notifs, d.events, log), d
}

func validRequest(listingID uuid.UUID) CreateBookingRequest {
	amount := 10000.0
	return CreateBookingRequest{
		ListingID:      listingID,
		PassengerName:  "Ada",
		PassengerEmail: "ada@example.com",
		NumSeats:       2,
		BookingDate:    time.Now(),
		AmountPaid:     &amount,
		Status:         "confirmed",
	}
}

func TestCreateBooking_StartsPendingAndNotifies(t *testing.T) {
	svc, d := newService()
	listing := &domain.Listing{ID: uuid.New(), OperatorID: uuid.New()}

	d.listings.On("GetByID", mock.Anything, listing.ID).Return(listing, nil)
	d.bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil)
	d.notifs.On("NotifyBookingCreated", mock.Anything, "ada@example.com", mock.AnythingOfType("string")).Return(nil)

	b, err := svc.CreateBooking(context.Background(), validRequest(listing.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.InDelta(t, 10000, b.AmountPaid, 0.001)

	d.notifs.AssertCalled(t, "NotifyBookingCreated", mock.Anything, "ada@example.com", b.ID.String())
	require.Len(t, d.events.created, 1)
	assert.Equal(t, listing.OperatorID, d.events.created[0].Listing.OperatorID)
}

func TestCreateBooking_NotificationFailureDoesNotFailBooking(t *testing.T) {
	svc, d := newService()
	listingID := uuid.New()

	d.listings.On("GetByID", mock.Anything, listingID).Return(&domain.Listing{ID: listingID}, nil)
	d.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.notifs.On("NotifyBookingCreated", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("queue full"))

	b, err := svc.CreateBooking(context.Background(), validRequest(listingID))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, b.ID)
}

func TestCreateBooking_UnknownListing(t *testing.T) {
	svc, d := newService()
	listingID := uuid.New()
	d.listings.On("GetByID", mock.Anything, listingID).Return(nil, domain.ErrNotFound)

	_, err := svc.CreateBooking(context.Background(), validRequest(listingID))
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	d.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBooking_DuplicatePassenger(t *testing.T) {
	svc, d := newService()
	listingID := uuid.New()

	d.listings.On("GetByID", mock.Anything, listingID).Return(&domain.Listing{ID: listingID}, nil)
	d.bookings.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	_, err := svc.CreateBooking(context.Background(), validRequest(listingID))
	assert.ErrorIs(t, err, ErrDuplicateBooking)
	d.notifs.AssertNotCalled(t, "NotifyBookingCreated", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, d.events.created)
}

func TestPatch_StatusGuard(t *testing.T) {
	cases := []struct {
		name    string
		current domain.BookingStatus
		next    string
		wantErr error
	}{
		{name: "pending to cancelled", current: domain.BookingPending, next: "cancelled"},
		{name: "confirmed to cancelled", current: domain.BookingConfirmed, next: "cancelled"},
		{name: "unchanged", current: domain.BookingPending, next: "pending"},
		{name: "pending to confirmed", current: domain.BookingPending, next: "confirmed", wantErr: ErrStatusTransition},
		{name: "cancelled to pending", current: domain.BookingCancelled, next: "pending", wantErr: ErrStatusTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, d := newService()
			id := uuid.New()
			existing := &domain.Booking{ID: id, Status: tc.current}
			d.bookings.On("GetByID", mock.Anything, id).Return(existing, nil)
			d.bookings.On("Update", mock.Anything, existing, tc.current).Return(nil)

			next := tc.next
			b, err := svc.Patch(context.Background(), id, PatchBookingRequest{Status: &next})
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.ErrorIs(t, err, domain.ErrBadRequest)
				d.bookings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.BookingStatus(tc.next), b.Status)
		})
	}
}

func TestReplace_KeepsStatusWhenOmitted(t *testing.T) {
	svc, d := newService()
	id := uuid.New()
	listingID := uuid.New()
	existing := &domain.Booking{ID: id, ListingID: listingID, Status: domain.BookingConfirmed}
	d.bookings.On("GetByID", mock.Anything, id).Return(existing, nil)
	d.bookings.On("Update", mock.Anything, existing, domain.BookingConfirmed).Return(nil)

	req := validRequest(listingID)
	req.Status = ""
	req.PassengerName = "Grace"

	b, err := svc.Replace(context.Background(), id, req)
	require.NoError(t, err)
	assert.Equal(t, "Grace", b.PassengerName)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
}

func TestGetAndDelete_NotFound(t *testing.T) {
	svc, d := newService()
	id := uuid.New()
	d.bookings.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)
	d.bookings.On("Delete", mock.Anything, id).Return(domain.ErrNotFound)

	_, err := svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), id), ErrBookingNotFound)
}
