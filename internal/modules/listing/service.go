package listing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelbooking/internal/domain"
	"travelbooking/internal/repository"
)

type Service struct {
	repo ListingRepository
	log  logrus.FieldLogger
}

func NewService(repo ListingRepository, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, log: log.WithField("module", "listing")}
}

func notFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return ErrListingNotFound
	}
	return err
}

// Create publishes a listing owned by operatorID.
func (s *Service) Create(ctx context.Context, operatorID uuid.UUID, req CreateListingRequest) (*domain.Listing, error) {
	l := &domain.Listing{OperatorID: operatorID}
	req.asPatch().apply(l)
	if l.AvailableSeats > l.TotalSeats {
		return nil, seatsError()
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"listing_id": l.ID, "operator_id": operatorID}).Info("listing created")
	return s.repo.GetByID(ctx, l.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]domain.Listing, error) {
	items, err := s.repo.List(ctx, repository.ListingFilter{
		TransportType: domain.TransportType(q.TransportType),
		Origin:        q.Origin,
		Destination:   q.Destination,
		Status:        domain.ListingStatus(q.Status),
		Page:          repository.Page{Limit: q.Limit, Offset: q.Offset},
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Listing{}
	}
	return items, nil
}

// Replace overwrites every writable field.
func (s *Service) Replace(ctx context.Context, id uuid.UUID, req CreateListingRequest) (*domain.Listing, error) {
	return s.Patch(ctx, id, req.asPatch())
}

func (s *Service) Patch(ctx context.Context, id uuid.UUID, req PatchListingRequest) (*domain.Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	req.apply(l)
	if l.AvailableSeats > l.TotalSeats {
		return nil, seatsError()
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Delete removes the listing together with its bookings, payments and reviews.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.log.WithField("listing_id", id).Info("listing deleted")
	return nil
}
