package review

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"travelbooking/internal/domain"
	"travelbooking/internal/repository"
)

type ListingGate interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
}

type Service struct {
	reviews  *repository.ReviewRepository
	listings ListingGate
}

func NewService(reviews *repository.ReviewRepository, listings ListingGate) *Service {
	return &Service{reviews: reviews, listings: listings}
}

func (s *Service) checkListing(ctx context.Context, id uuid.UUID) error {
	_, err := s.listings.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return errUnknownListing
	}
	return err
}

func (s *Service) Create(ctx context.Context, req CreateReviewRequest) (*domain.Review, error) {
	if err := s.checkListing(ctx, req.ListingID); err != nil {
		return nil, err
	}

	rv := &domain.Review{
		ListingID:    req.ListingID,
		ReviewerName: req.ReviewerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}
	return s.reviews.GetByID(ctx, rv.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	rv, err := s.reviews.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	return rv, err
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]domain.Review, error) {
	f := repository.ReviewFilter{Page: repository.Page{Limit: q.Limit, Offset: q.Offset}}
	if q.ListingID != "" {
		id, err := uuid.Parse(q.ListingID)
		if err != nil {
			return nil, &domain.ValidationError{Fields: map[string]string{"listing_id": "uuid"}}
		}
		f.ListingID = &id
	}

	items, err := s.reviews.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Review{}
	}
	return items, nil
}

func (s *Service) Replace(ctx context.Context, id uuid.UUID, req CreateReviewRequest) (*domain.Review, error) {
	return s.Patch(ctx, id, PatchReviewRequest{
		ListingID:    &req.ListingID,
		ReviewerName: &req.ReviewerName,
		Rating:       &req.Rating,
		Comment:      &req.Comment,
	})
}

func (s *Service) Patch(ctx context.Context, id uuid.UUID, req PatchReviewRequest) (*domain.Review, error) {
	rv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ListingID != nil && *req.ListingID != rv.ListingID {
		if err := s.checkListing(ctx, *req.ListingID); err != nil {
			return nil, err
		}
		rv.ListingID = *req.ListingID
	}
	if req.ReviewerName != nil {
		rv.ReviewerName = *req.ReviewerName
	}
	if req.Rating != nil {
		rv.Rating = *req.Rating
	}
	if req.Comment != nil {
		rv.Comment = *req.Comment
	}

	if err := s.reviews.Update(ctx, rv); err != nil {
		return nil, err
	}
	return s.reviews.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.reviews.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return ErrReviewNotFound
	}
	return err
}
