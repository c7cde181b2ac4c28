package review

import (
	"fmt"

	"travelbooking/internal/domain"
)

var (
	ErrReviewNotFound = fmt.Errorf("review not found: %w", domain.ErrNotFound)
	errUnknownListing = &domain.ValidationError{Fields: map[string]string{"listing_id": "does not exist"}}
)
