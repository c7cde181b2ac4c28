package feed

import (
	"time"

	"github.com/google/uuid"

	"travelbooking/internal/domain"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
)

type Event struct {
	Type       string    `json:"type"`
	BookingID  uuid.UUID `json:"booking_id"`
	ListingID  uuid.UUID `json:"listing_id"`
	Passenger  string    `json:"passenger_name"`
	NumSeats   int       `json:"num_seats"`
	AmountPaid string    `json:"amount_paid"`
	Status     string    `json:"status"`
	At         time.Time `json:"at"`
}

func newEvent(kind string, b *domain.Booking) Event {
	return Event{
		Type:       kind,
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		Passenger:  b.PassengerName,
		NumSeats:   b.NumSeats,
		AmountPaid: domain.FormatAmount(b.AmountPaid),
		Status:     string(b.Status),
		At:         time.Now().UTC(),
	}
}

func (h *Hub) BookingCreated(b *domain.Booking) {
	h.publish(EventBookingCreated, b)
}

func (h *Hub) BookingConfirmed(b *domain.Booking) {
	h.publish(EventBookingConfirmed, b)
}

// publish routes the event to the listing's operator. The write runs on its
// own goroutine so request handlers never wait on a slow socket.
func (h *Hub) publish(kind string, b *domain.Booking) {
	if b == nil || b.Listing == nil {
		return
	}
	operatorID := b.Listing.OperatorID
	if !h.IsOnline(operatorID) {
		return
	}

	ev := newEvent(kind, b)
	go h.SendTo(operatorID, ev)
}
