package notification

import "time"

// Job kinds
const (
	TypeBookingCreated   = "booking_created"
	TypePaymentConfirmed = "payment_confirmed"
)

// Job is the queued unit of work. It only carries primitives so that it
// can be serialized onto any queue.
type Job struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Email      string    `json:"email"`
	BookingID  string    `json:"booking_id"`
	Amount     string    `json:"amount,omitempty"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	Body    string
}

func render(job Job) (Message, bool) {
	switch job.Type {
	case TypeBookingCreated:
		return Message{
			To:      job.Email,
			Subject: "Booking Created Successfully",
			Body: "Your booking with ID " + job.BookingID + " has been created successfully. " +
				"You will receive another email once payment is confirmed.",
		}, true
	case TypePaymentConfirmed:
		return Message{
			To:      job.Email,
			Subject: "Payment Confirmation - Travel Booking",
			Body: "Dear Customer,\n\n" +
				"Your payment was successful.\n\n" +
				"Booking ID: " + job.BookingID + "\n" +
				"Amount Paid: " + job.Amount + "\n\n" +
				"Thank you for booking with us.",
		}, true
	}
	return Message{}, false
}
