package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelbooking/internal/domain"
	"travelbooking/internal/repository"
)

type Service struct {
	bookings BookingRepository
	listings ListingReader
	notifs   NotificationSender
	events   EventPublisher
	log      logrus.FieldLogger
}

func NewService(
	bookings BookingRepository,
	listings ListingReader,
	notifs NotificationSender,
	events EventPublisher,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		bookings: bookings,
		listings: listings,
		notifs:   notifs,
		events:   events,
		log:      log.WithField("module", "booking"),
	}
}

func (s *Service) listing(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errUnknownListingRef
	}
	return l, err
}

// CreateBooking stores a pending booking and queues the confirmation
// email. A requested status other than pending is ignored.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	l, err := s.listing(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{}
	req.asPatch().apply(b)
	b.Status = domain.BookingPending

	if err := s.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrDuplicateBooking
		}
		return nil, err
	}
	b.Listing = l

	entry := s.log.WithFields(logrus.Fields{"booking_id": b.ID, "listing_id": b.ListingID})
	entry.Info("booking created")

	if s.notifs != nil {
		if err := s.notifs.NotifyBookingCreated(ctx, b.PassengerEmail, b.ID.String()); err != nil {
			entry.WithError(err).Warn("booking notification not enqueued")
		}
	}
	if s.events != nil {
		s.events.BookingCreated(b)
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]domain.Booking, error) {
	f := repository.BookingFilter{
		Status: domain.BookingStatus(q.Status),
		Page:   repository.Page{Limit: q.Limit, Offset: q.Offset},
	}
	if q.ListingID != "" {
		id, err := uuid.Parse(q.ListingID)
		if err != nil {
			return nil, &domain.ValidationError{Fields: map[string]string{"listing_id": "uuid"}}
		}
		f.ListingID = &id
	}

	items, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Booking{}
	}
	return items, nil
}

func (s *Service) Replace(ctx context.Context, id uuid.UUID, req CreateBookingRequest) (*domain.Booking, error) {
	return s.Patch(ctx, id, req.asPatch())
}

// Patch applies the present fields. Status may only move to cancelled;
// confirmation is owned by payment verification.
func (s *Service) Patch(ctx context.Context, id uuid.UUID, req PatchBookingRequest) (*domain.Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		next := domain.BookingStatus(*req.Status)
		if next != b.Status && next != domain.BookingCancelled {
			return nil, ErrStatusTransition
		}
	}
	if req.ListingID != nil && *req.ListingID != b.ListingID {
		l, err := s.listing(ctx, *req.ListingID)
		if err != nil {
			return nil, err
		}
		b.Listing = l
	}

	prev := b.Status
	req.apply(b)
	if err := s.bookings.Update(ctx, b, prev); err != nil {
		switch {
		case errors.Is(err, repository.ErrStale):
			return nil, ErrBookingChanged
		case errors.Is(err, domain.ErrNotFound):
			return nil, ErrBookingNotFound
		}
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrDuplicateBooking
		}
		return nil, err
	}
	return b, nil
}

// Delete removes the booking and its payment.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.bookings.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}
	s.log.WithField("booking_id", id).Info("booking deleted")
	return nil
}
