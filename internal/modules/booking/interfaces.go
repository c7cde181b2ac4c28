package booking

import (
	"context"

	"github.com/google/uuid"

	"travelbooking/internal/domain"
	"travelbooking/internal/repository"
)

// BookingRepository defines the interface for booking operations
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking, prev domain.BookingStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ListingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
}

type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, email, bookingID string) error
}

// EventPublisher feeds the operator live view.
type EventPublisher interface {
	BookingCreated(b *domain.Booking)
}
