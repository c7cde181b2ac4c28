package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelbooking/internal/domain"
	"travelbooking/internal/pkg/chapa"
	"travelbooking/internal/repository"
)

// store keeps bookings and payments together so Complete can flip both
// under one lock, like the database transaction does.
type store struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]domain.Booking
	payments map[uuid.UUID]domain.Payment
	creates  int
	// getErr fails booking reads once a payment has completed.
	getErr error
}

func newStore() *store {
	return &store{
		bookings: map[uuid.UUID]domain.Booking{},
		payments: map[uuid.UUID]domain.Payment{},
	}
}

func (s *store) addBooking(status domain.BookingStatus, amount float64) domain.Booking {
	b := domain.Booking{
		ID:             uuid.New(),
		ListingID:      uuid.New(),
		PassengerName:  "Ada Obi",
		PassengerEmail: "ada@example.com",
		NumSeats:       1,
		AmountPaid:     amount,
		Status:         status,
	}
	s.mu.Lock()
	s.bookings[b.ID] = b
	s.mu.Unlock()
	return b
}

func (s *store) booking(id uuid.UUID) domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

func (s *store) paymentFor(bookingID uuid.UUID) (domain.Payment, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found domain.Payment
	n := 0
	for _, p := range s.payments {
		if p.BookingID == bookingID {
			found = p
			n++
		}
	}
	return found, n
}

func (s *store) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		for _, p := range s.payments {
			if p.BookingID == id && p.Status == domain.PaymentCompleted {
				return nil, s.getErr
			}
		}
	}
	b, ok := s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (s *store) Create(_ context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.payments {
		if existing.BookingID == p.BookingID || existing.TxRef == p.TxRef {
			return domain.ErrConflict
		}
	}
	p.ID = uuid.New()
	s.payments[p.ID] = *p
	s.creates++
	return nil
}

func (s *store) find(txRef string) (domain.Payment, bool) {
	for _, p := range s.payments {
		if p.TxRef == txRef {
			return p, true
		}
	}
	return domain.Payment{}, false
}

func (s *store) GetByTxRef(_ context.Context, txRef string) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.find(txRef)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *store) GetByBookingID(_ context.Context, bookingID uuid.UUID) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.BookingID == bookingID {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *store) Rearm(_ context.Context, id uuid.UUID, prevTxRef, txRef string, amount float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok || p.TxRef != prevTxRef || p.Status == domain.PaymentCompleted {
		return false, nil
	}
	p.TxRef, p.Amount, p.Status = txRef, amount, domain.PaymentPending
	p.Attempts++
	p.CheckoutURL, p.FailureReason, p.ChapaTransactionID = "", "", nil
	s.payments[id] = p
	return true, nil
}

func (s *store) SetCheckoutURL(_ context.Context, txRef, checkoutURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.find(txRef)
	if !ok {
		return domain.ErrNotFound
	}
	p.CheckoutURL = checkoutURL
	s.payments[p.ID] = p
	return nil
}

func (s *store) MarkFailed(_ context.Context, txRef, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.find(txRef)
	if !ok || p.Status != domain.PaymentPending {
		return false, nil
	}
	p.Status, p.FailureReason = domain.PaymentFailed, reason
	s.payments[p.ID] = p
	return true, nil
}

func (s *store) Complete(_ context.Context, txRef, externalID string, verifiedAt time.Time) (repository.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.find(txRef)
	if !ok || p.Status != domain.PaymentPending {
		return repository.Completion{}, nil
	}
	p.Status = domain.PaymentCompleted
	p.ChapaTransactionID = &externalID
	p.VerifiedAt = &verifiedAt
	s.payments[p.ID] = p

	b := s.bookings[p.BookingID]
	confirmed := b.Status == domain.BookingPending
	if confirmed {
		b.Status = domain.BookingConfirmed
		s.bookings[b.ID] = b
	}
	return repository.Completion{
		Changed:          true,
		BookingConfirmed: confirmed,
		BookingID:        b.ID,
		PassengerEmail:   b.PassengerEmail,
		Amount:           p.Amount,
	}, nil
}

func (s *store) setBookingStatus(id uuid.UUID, status domain.BookingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bookings[id]
	b.Status = status
	s.bookings[id] = b
}

type fakeGateway struct {
	mu          sync.Mutex
	initErr     error
	verifyErr   error
	status      string
	amount      string
	initCalls   []chapa.InitializeRequest
	verifyCalls int
	verifyDelay time.Duration
}

func (g *fakeGateway) Initialize(_ context.Context, req chapa.InitializeRequest) (*chapa.InitializeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initCalls = append(g.initCalls, req)
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &chapa.InitializeResult{CheckoutURL: "https://checkout.chapa.co/" + req.TxRef}, nil
}

func (g *fakeGateway) Verify(_ context.Context, txRef string) (*chapa.VerifyResult, error) {
	time.Sleep(g.verifyDelay)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	status := g.status
	if status == "" {
		status = "success"
	}
	return &chapa.VerifyResult{Status: status, Reference: "CH-REF-1", TxRef: txRef, Amount: g.amount}, nil
}

type sentNotice struct {
	email, bookingID, amount string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotice
	err  error
}

func (n *fakeNotifier) NotifyPaymentConfirmed(_ context.Context, email, bookingID, amount string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentNotice{email, bookingID, amount})
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeEvents struct {
	mu        sync.Mutex
	confirmed []uuid.UUID
}

func (e *fakeEvents) BookingConfirmed(b *domain.Booking) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.confirmed = append(e.confirmed, b.ID)
}

type fixture struct {
	store    *store
	gateway  *fakeGateway
	notifier *fakeNotifier
	events   *fakeEvents
	svc      *Service
	hook     *logtest.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, hook := logtest.NewNullLogger()
	f := &fixture{
		store:    newStore(),
		gateway:  &fakeGateway{},
		notifier: &fakeNotifier{},
		events:   &fakeEvents{},
		hook:     hook,
	}
	f.svc = NewService(f.store, f.store, f.gateway, f.notifier, f.events, "", log)
	return f
}

var testURLs = URLs{Callback: "http://api.test/api/v1/payments/verify/", Return: "http://api.test/api/v1/payments/success/"}

func TestInitiate_CreatesPendingPayment(t *testing.T) {
	f := newFixture(t)
	b := f.store.addBooking(domain.BookingPending, 10000)

	resp, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.NoError(t, err)
	assert.Regexp(t, `^tx-[0-9a-f-]{36}$`, resp.TxRef)
	assert.Equal(t, "https://checkout.chapa.co/"+resp.TxRef, resp.CheckoutURL)

	p, n := f.store.paymentFor(b.ID)
	require.Equal(t, 1, n)
	assert.Equal(t, domain.PaymentPending, p.Status)
	assert.Equal(t, resp.TxRef, p.TxRef)
	assert.Equal(t, resp.CheckoutURL, p.CheckoutURL)
	assert.Equal(t, domain.BookingPending, f.store.booking(b.ID).Status)

	require.Len(t, f.gateway.initCalls, 1)
	req := f.gateway.initCalls[0]
	assert.Equal(t, "10000.00", req.Amount)
	assert.Equal(t, "ETB", req.Currency)
	assert.Equal(t, "ada@example.com", req.Email)
	assert.Equal(t, "Ada", req.FirstName)
	assert.Equal(t, "Obi", req.LastName)
	assert.Equal(t, testURLs.Callback, req.CallbackURL)
	assert.Equal(t, testURLs.Return, req.ReturnURL)
}

func TestInitiate_UnknownBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Initiate(t.Context(), uuid.New(), testURLs)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.gateway.initCalls)
}

func TestInitiate_RejectsNonPendingBookings(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.BookingConfirmed, domain.BookingCancelled} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			b := f.store.addBooking(status, 500)

			_, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
			assert.ErrorIs(t, err, domain.ErrConflict)

			_, n := f.store.paymentFor(b.ID)
			assert.Zero(t, n)
			assert.Empty(t, f.gateway.initCalls)
		})
	}
}

func TestInitiate_GatewayFailureMarksPaymentFailed(t *testing.T) {
	f := newFixture(t)
	f.gateway.initErr = errors.New("connection refused")
	b := f.store.addBooking(domain.BookingPending, 250)

	_, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	assert.ErrorIs(t, err, ErrInitiateFailed)
	assert.ErrorIs(t, err, domain.ErrUpstream)

	p, n := f.store.paymentFor(b.ID)
	require.Equal(t, 1, n)
	assert.Equal(t, domain.PaymentFailed, p.Status)
	assert.Equal(t, "connection refused", p.FailureReason)
	assert.Equal(t, domain.BookingPending, f.store.booking(b.ID).Status)
}

func TestInitiate_RetryRearmsSamePayment(t *testing.T) {
	f := newFixture(t)
	f.gateway.initErr = errors.New("timeout")
	b := f.store.addBooking(domain.BookingPending, 250)

	_, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.Error(t, err)
	failed, _ := f.store.paymentFor(b.ID)

	f.gateway.initErr = nil
	resp, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.NoError(t, err)

	p, n := f.store.paymentFor(b.ID)
	require.Equal(t, 1, n)
	assert.Equal(t, failed.ID, p.ID)
	assert.Equal(t, 2, p.Attempts)
	assert.Equal(t, domain.PaymentPending, p.Status)
	assert.Empty(t, p.FailureReason)
	assert.Equal(t, resp.TxRef, p.TxRef)
	assert.NotEqual(t, failed.TxRef, p.TxRef)
	assert.Equal(t, 1, f.store.creates)

	_, err = f.svc.Verify(t.Context(), failed.TxRef)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestInitiate_ReusesLiveCheckout(t *testing.T) {
	f := newFixture(t)
	f.gateway.amount = "250"
	b := f.store.addBooking(domain.BookingPending, 250)

	first, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.NoError(t, err)
	second, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, f.gateway.initCalls, 1)

	p, _ := f.store.paymentFor(b.ID)
	assert.Equal(t, 1, p.Attempts)

	// the checkout the passenger already opened still verifies
	out, err := f.svc.Verify(t.Context(), first.TxRef)
	require.NoError(t, err)
	assert.Equal(t, "Payment verified successfully", out.Message)
	assert.Equal(t, domain.BookingConfirmed, f.store.booking(b.ID).Status)
}

func TestInitiate_RearmsPendingAttemptWithoutCheckout(t *testing.T) {
	f := newFixture(t)
	b := f.store.addBooking(domain.BookingPending, 250)
	require.NoError(t, f.store.Create(t.Context(), &domain.Payment{
		BookingID: b.ID, TxRef: "tx-stale", Amount: 250, Currency: "ETB", Status: domain.PaymentPending, Attempts: 1,
	}))

	resp, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.NoError(t, err)
	assert.NotEqual(t, "tx-stale", resp.TxRef)
	assert.Len(t, f.gateway.initCalls, 1)

	p, _ := f.store.paymentFor(b.ID)
	assert.Equal(t, resp.TxRef, p.TxRef)
	assert.Equal(t, 2, p.Attempts)
}

func TestInitiate_CompletedPaymentConflicts(t *testing.T) {
	f := newFixture(t)
	b := f.store.addBooking(domain.BookingPending, 90)
	resp, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.NoError(t, err)
	_, err = f.store.Complete(t.Context(), resp.TxRef, "x", time.Now())
	require.NoError(t, err)

	// booking is confirmed now, force it back to exercise the payment guard
	f.store.setBookingStatus(b.ID, domain.BookingPending)

	_, err = f.svc.Initiate(t.Context(), b.ID, testURLs)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Len(t, f.gateway.initCalls, 1)
}

func TestVerify_SuccessConfirmsBookingAndNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	f.gateway.amount = "10000"
	b := f.store.addBooking(domain.BookingPending, 10000)
	resp, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.NoError(t, err)

	out, err := f.svc.Verify(t.Context(), resp.TxRef)
	require.NoError(t, err)
	assert.Equal(t, "Payment verified successfully", out.Message)

	p, _ := f.store.paymentFor(b.ID)
	assert.Equal(t, domain.PaymentCompleted, p.Status)
	require.NotNil(t, p.ChapaTransactionID)
	assert.Equal(t, "CH-REF-1", *p.ChapaTransactionID)
	assert.NotNil(t, p.VerifiedAt)
	assert.Equal(t, domain.BookingConfirmed, f.store.booking(b.ID).Status)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, sentNotice{"ada@example.com", b.ID.String(), "10000.00"}, f.notifier.sent[0])
	assert.Equal(t, []uuid.UUID{b.ID}, f.events.confirmed)
}

func TestVerify_ReplayIsIdempotent(t *testing.T) {
	f := newFixture(t)
	b := f.store.addBooking(domain.BookingPending, 40)
	resp, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.NoError(t, err)

	_, err = f.svc.Verify(t.Context(), resp.TxRef)
	require.NoError(t, err)
	out, err := f.svc.Verify(t.Context(), resp.TxRef)
	require.NoError(t, err)

	assert.Equal(t, "Payment already verified", out.Message)
	assert.Equal(t, 1, f.gateway.verifyCalls)
	assert.Equal(t, 1, f.notifier.count())
}

func TestVerify_ConcurrentCallsNotifyOnce(t *testing.T) {
	f := newFixture(t)
	f.gateway.verifyDelay = 10 * time.Millisecond
	b := f.store.addBooking(domain.BookingPending, 40)
	resp, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Verify(context.Background(), resp.TxRef)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, f.notifier.count())
	assert.Len(t, f.events.confirmed, 1)
	assert.Equal(t, domain.BookingConfirmed, f.store.booking(b.ID).Status)
}

func TestVerify_CancelledBookingStaysCancelled(t *testing.T) {
	f := newFixture(t)
	b := f.store.addBooking(domain.BookingPending, 40)
	resp, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.NoError(t, err)

	// passenger cancels while the checkout is open
	f.store.setBookingStatus(b.ID, domain.BookingCancelled)

	out, err := f.svc.Verify(t.Context(), resp.TxRef)
	require.NoError(t, err)
	assert.Equal(t, "Payment verified but the booking is no longer pending", out.Message)

	p, _ := f.store.paymentFor(b.ID)
	assert.Equal(t, domain.PaymentCompleted, p.Status)
	assert.Equal(t, domain.BookingCancelled, f.store.booking(b.ID).Status)
	assert.Zero(t, f.notifier.count())
	assert.Empty(t, f.events.confirmed)

	var flagged bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Data["booking_id"] == b.ID {
			flagged = true
		}
	}
	assert.True(t, flagged)

	out, err = f.svc.Verify(t.Context(), resp.TxRef)
	require.NoError(t, err)
	assert.Equal(t, "Payment already verified", out.Message)
}

func TestVerify_NotifiesWhenBookingReloadFails(t *testing.T) {
	f := newFixture(t)
	b := f.store.addBooking(domain.BookingPending, 40)
	resp, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.NoError(t, err)
	f.store.getErr = errors.New("connection reset")

	out, err := f.svc.Verify(t.Context(), resp.TxRef)
	require.NoError(t, err)
	assert.Equal(t, "Payment verified successfully", out.Message)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, sentNotice{"ada@example.com", b.ID.String(), "40.00"}, f.notifier.sent[0])
	assert.Empty(t, f.events.confirmed)
}

func TestVerify_GatewayFailureLeavesBookingPending(t *testing.T) {
	cases := map[string]func(g *fakeGateway){
		"transport error": func(g *fakeGateway) { g.verifyErr = errors.New("dial tcp: i/o timeout") },
		"provider failed": func(g *fakeGateway) { g.status = "failed" },
		"amount mismatch": func(g *fakeGateway) { g.amount = "10.00" },
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			b := f.store.addBooking(domain.BookingPending, 10000)
			resp, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
			require.NoError(t, err)
			setup(f.gateway)

			_, err = f.svc.Verify(t.Context(), resp.TxRef)
			assert.ErrorIs(t, err, ErrVerificationFailed)

			p, _ := f.store.paymentFor(b.ID)
			assert.Equal(t, domain.PaymentFailed, p.Status)
			assert.NotEmpty(t, p.FailureReason)
			assert.Equal(t, domain.BookingPending, f.store.booking(b.ID).Status)
			assert.Zero(t, f.notifier.count())
			assert.Empty(t, f.events.confirmed)

			_, err = f.svc.Verify(t.Context(), resp.TxRef)
			assert.ErrorIs(t, err, ErrPaymentFailed)
		})
	}
}

func TestVerify_UnknownTxRefMutatesNothing(t *testing.T) {
	f := newFixture(t)
	b := f.store.addBooking(domain.BookingPending, 40)
	resp, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.NoError(t, err)

	_, err = f.svc.Verify(t.Context(), "tx-unknown")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	assert.Zero(t, f.gateway.verifyCalls)

	p, _ := f.store.paymentFor(b.ID)
	assert.Equal(t, domain.PaymentPending, p.Status)
	assert.Equal(t, resp.TxRef, p.TxRef)
}

func TestVerify_EmptyTxRef(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Verify(t.Context(), "  ")
	assert.ErrorIs(t, err, ErrTxRefRequired)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestVerify_NotifierErrorIsLogged(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("queue closed")
	b := f.store.addBooking(domain.BookingPending, 40)
	resp, err := f.svc.Initiate(t.Context(), b.ID, testURLs)
	require.NoError(t, err)

	_, err = f.svc.Verify(t.Context(), resp.TxRef)
	require.NoError(t, err)

	var logged bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Message == "payment confirmation not enqueued" {
			logged = true
		}
	}
	assert.True(t, logged)
	assert.Equal(t, domain.BookingConfirmed, f.store.booking(b.ID).Status)
}

func TestAmountEqual(t *testing.T) {
	assert.True(t, amountEqual("100", "100.00"))
	assert.True(t, amountEqual(" 99.5", "99.50"))
	assert.False(t, amountEqual("99.49", "99.50"))
	assert.False(t, amountEqual("abc", "1.00"))
}
