package listing

import (
	"context"

	"github.com/google/uuid"

	"travelbooking/internal/domain"
	"travelbooking/internal/repository"
)

type ListingRepository interface {
	Create(ctx context.Context, l *domain.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	List(ctx context.Context, f repository.ListingFilter) ([]domain.Listing, error)
	Update(ctx context.Context, l *domain.Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
}
