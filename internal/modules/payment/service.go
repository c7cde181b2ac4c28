package payment

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelbooking/internal/domain"
	"travelbooking/internal/pkg/chapa"
	"travelbooking/internal/repository"
)

const (
	msgVerified        = "Payment verified successfully"
	msgAlreadyVerified = "Payment already verified"
	msgBookingClosed   = "Payment verified but the booking is no longer pending"
)

// URLs are the two addresses handed to the gateway on initialize.
type URLs struct {
	Callback string
	Return   string
}

type Service struct {
	payments paymentRepo
	bookings bookingReader
	gateway  Gateway
	notifier Notifier
	events   EventPublisher
	currency string
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(
	payments paymentRepo,
	bookings bookingReader,
	gateway Gateway,
	notifier Notifier,
	events EventPublisher,
	currency string,
	log logrus.FieldLogger,
) *Service {
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return &Service{
		payments: payments,
		bookings: bookings,
		gateway:  gateway,
		notifier: notifier,
		events:   events,
		currency: currency,
		log:      log.WithField("module", "payment"),
		now:      time.Now,
	}
}

func newTxRef() string {
	return "tx-" + uuid.NewString()
}

// Initiate opens a checkout for a pending booking. The booking keeps its
// single Payment row. A pending attempt that already has a checkout is
// returned as is, so its tx_ref stays valid; a failed or unfinished attempt
// is re-armed with a fresh tx_ref.
func (s *Service) Initiate(ctx context.Context, bookingID uuid.UUID, urls URLs) (*InitiateResponse, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if b.Status != domain.BookingPending {
		return nil, ErrAlreadyProcessed
	}

	txRef := newTxRef()
	live, err := s.armPayment(ctx, b, txRef)
	if err != nil {
		return nil, err
	}
	if live != nil {
		s.log.WithFields(logrus.Fields{"booking_id": b.ID, "tx_ref": live.TxRef}).Info("payment checkout reused")
		return live, nil
	}

	entry := s.log.WithFields(logrus.Fields{"booking_id": b.ID, "tx_ref": txRef})

	first, last := splitName(b.PassengerName)
	res, err := s.gateway.Initialize(ctx, chapa.InitializeRequest{
		Amount:      domain.FormatAmount(b.AmountPaid),
		Currency:    s.currency,
		Email:       b.PassengerEmail,
		FirstName:   first,
		LastName:    last,
		TxRef:       txRef,
		CallbackURL: urls.Callback,
		ReturnURL:   urls.Return,
		Customization: &chapa.Customization{
			Title:       "Travel Booking",
			Description: "Payment for travel booking",
		},
	})
	if err != nil {
		entry.WithError(err).Warn("payment initialize failed")
		if _, mErr := s.payments.MarkFailed(ctx, txRef, err.Error()); mErr != nil {
			entry.WithError(mErr).Error("mark payment failed")
		}
		return nil, ErrInitiateFailed
	}

	if err := s.payments.SetCheckoutURL(ctx, txRef, res.CheckoutURL); err != nil {
		entry.WithError(err).Warn("checkout url not recorded")
	}
	entry.Info("payment initiated")
	return &InitiateResponse{CheckoutURL: res.CheckoutURL, TxRef: txRef}, nil
}

// armPayment makes txRef the booking's current attempt. When the existing
// attempt is still live it is returned instead and txRef is unused.
func (s *Service) armPayment(ctx context.Context, b *domain.Booking, txRef string) (*InitiateResponse, error) {
	existing, err := s.payments.GetByBookingID(ctx, b.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		p := &domain.Payment{
			BookingID: b.ID,
			TxRef:     txRef,
			Amount:    b.AmountPaid,
			Currency:  s.currency,
			Status:    domain.PaymentPending,
			Attempts:  1,
		}
		if err := s.payments.Create(ctx, p); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, ErrAlreadyProcessed
			}
			return nil, err
		}
		return nil, nil
	case err != nil:
		return nil, err
	}

	switch {
	case existing.Status == domain.PaymentCompleted:
		return nil, ErrAlreadyProcessed
	case existing.Status == domain.PaymentPending && existing.CheckoutURL != "" && existing.Amount == b.AmountPaid:
		return &InitiateResponse{CheckoutURL: existing.CheckoutURL, TxRef: existing.TxRef}, nil
	}

	ok, err := s.payments.Rearm(ctx, existing.ID, existing.TxRef, txRef, b.AmountPaid)
	if err != nil {
		return nil, err
	}
	if !ok {
		// another initiate or a verify moved the row first
		return nil, ErrAlreadyProcessed
	}
	return nil, nil
}

// Verify reconciles a tx_ref with the gateway. Only the call that moves the
// payment out of pending produces side effects.
func (s *Service) Verify(ctx context.Context, txRef string) (*VerifyResponse, error) {
	txRef = strings.TrimSpace(txRef)
	if txRef == "" {
		return nil, ErrTxRefRequired
	}

	p, err := s.payments.GetByTxRef(ctx, txRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	switch p.Status {
	case domain.PaymentCompleted:
		return &VerifyResponse{Message: msgAlreadyVerified}, nil
	case domain.PaymentFailed:
		return nil, ErrPaymentFailed
	}

	entry := s.log.WithFields(logrus.Fields{"booking_id": p.BookingID, "tx_ref": txRef})

	res, err := s.gateway.Verify(ctx, txRef)
	if reason := rejectReason(res, err, p.Amount); reason != "" {
		entry.WithField("reason", reason).Warn("payment verification failed")
		if _, mErr := s.payments.MarkFailed(ctx, txRef, reason); mErr != nil {
			entry.WithError(mErr).Error("mark payment failed")
		}
		return nil, ErrVerificationFailed
	}

	done, err := s.payments.Complete(ctx, txRef, res.Reference, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !done.Changed {
		cur, err := s.payments.GetByTxRef(ctx, txRef)
		if err != nil {
			return nil, err
		}
		if cur.Status == domain.PaymentCompleted {
			return &VerifyResponse{Message: msgAlreadyVerified}, nil
		}
		return nil, ErrPaymentFailed
	}

	if !done.BookingConfirmed {
		entry.Error("payment completed for a booking that is no longer pending, refund required")
		return &VerifyResponse{Message: msgBookingClosed}, nil
	}

	entry.Info("payment completed")
	s.afterConfirm(ctx, done, entry)
	return &VerifyResponse{Message: msgVerified}, nil
}

// afterConfirm queues the receipt from the committed completion, then
// reloads the booking for the operator feed.
func (s *Service) afterConfirm(ctx context.Context, done repository.Completion, entry logrus.FieldLogger) {
	if s.notifier != nil {
		err := s.notifier.NotifyPaymentConfirmed(ctx, done.PassengerEmail, done.BookingID.String(), domain.FormatAmount(done.Amount))
		if err != nil {
			entry.WithError(err).Error("payment confirmation not enqueued")
		}
	}
	if s.events == nil {
		return
	}
	b, err := s.bookings.GetByID(ctx, done.BookingID)
	if err != nil {
		entry.WithError(err).Warn("confirmed booking not published")
		return
	}
	s.events.BookingConfirmed(b)
}

func rejectReason(res *chapa.VerifyResult, err error, expected float64) string {
	if err != nil {
		return err.Error()
	}
	if !res.Succeeded() {
		return "gateway status " + res.Status
	}
	if res.Amount != "" && !amountEqual(res.Amount, domain.FormatAmount(expected)) {
		return "amount mismatch: got " + res.Amount
	}
	return ""
}

func amountEqual(a, b string) bool {
	x, ok := new(big.Rat).SetString(strings.TrimSpace(a))
	if !ok {
		return false
	}
	y, ok := new(big.Rat).SetString(strings.TrimSpace(b))
	if !ok {
		return false
	}
	return x.Cmp(y) == 0
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
