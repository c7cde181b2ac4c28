package booking

import (
	"fmt"

	"travelbooking/internal/domain"
)

var (
	ErrBookingNotFound   = fmt.Errorf("booking not found: %w", domain.ErrNotFound)
	ErrDuplicateBooking  = fmt.Errorf("passenger already booked on this listing: %w", domain.ErrConflict)
	ErrBookingChanged    = fmt.Errorf("booking changed while it was being edited, reload and retry: %w", domain.ErrConflict)
	ErrStatusTransition  = fmt.Errorf("status can only be changed to cancelled; confirmation happens through payment: %w", domain.ErrBadRequest)
	errUnknownListingRef = &domain.ValidationError{Fields: map[string]string{"listing_id": "does not exist"}}
)
