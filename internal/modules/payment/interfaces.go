package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"travelbooking/internal/domain"
	"travelbooking/internal/pkg/chapa"
	"travelbooking/internal/repository"
)

type bookingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
}

type paymentRepo interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByTxRef(ctx context.Context, txRef string) (*domain.Payment, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*domain.Payment, error)
	Rearm(ctx context.Context, id uuid.UUID, prevTxRef, txRef string, amount float64) (bool, error)
	SetCheckoutURL(ctx context.Context, txRef, checkoutURL string) error
	MarkFailed(ctx context.Context, txRef, reason string) (bool, error)
	Complete(ctx context.Context, txRef, externalID string, verifiedAt time.Time) (repository.Completion, error)
}

// Gateway is the hosted checkout provider.
type Gateway interface {
	Initialize(ctx context.Context, req chapa.InitializeRequest) (*chapa.InitializeResult, error)
	Verify(ctx context.Context, txRef string) (*chapa.VerifyResult, error)
}

type Notifier interface {
	NotifyPaymentConfirmed(ctx context.Context, email, bookingID, amount string) error
}

type EventPublisher interface {
	BookingConfirmed(b *domain.Booking)
}
