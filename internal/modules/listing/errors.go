package listing

import (
	"fmt"

	"travelbooking/internal/domain"
)

var ErrListingNotFound = fmt.Errorf("listing not found: %w", domain.ErrNotFound)

func seatsError() error {
	return &domain.ValidationError{Fields: map[string]string{
		"available_seats": "must not exceed total_seats",
	}}
}
