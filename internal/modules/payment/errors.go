package payment

import (
	"fmt"

	"travelbooking/internal/domain"
)

var (
	ErrBookingNotFound    = fmt.Errorf("booking not found: %w", domain.ErrNotFound)
	ErrPaymentNotFound    = fmt.Errorf("payment not found: %w", domain.ErrNotFound)
	ErrAlreadyProcessed   = fmt.Errorf("payment already processed for this booking: %w", domain.ErrConflict)
	ErrPaymentFailed      = fmt.Errorf("payment attempt has failed, initiate a new one: %w", domain.ErrConflict)
	ErrTxRefRequired      = fmt.Errorf("tx_ref is required: %w", domain.ErrBadRequest)
	ErrInitiateFailed     = fmt.Errorf("failed to initiate payment: %w", domain.ErrUpstream)
	ErrVerificationFailed = fmt.Errorf("payment verification failed: %w", domain.ErrUpstream)
)
