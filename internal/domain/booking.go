package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a passenger's reservation on a Listing. At most one booking
// exists per (listing, passenger name, passenger email).
type Booking struct {
	ID             uuid.UUID     `json:"booking_id" gorm:"type:uuid;primaryKey"`
	ListingID      uuid.UUID     `json:"listing_id" gorm:"type:uuid;not null;uniqueIndex:idx_booking_passenger"`
	PassengerName  string        `json:"passenger_name" gorm:"type:varchar(128);not null;uniqueIndex:idx_booking_passenger"`
	PassengerEmail string        `json:"passenger_email" gorm:"type:varchar(254);not null;uniqueIndex:idx_booking_passenger"`
	NumSeats       int           `json:"num_seats" gorm:"not null"`
	BookingDate    time.Time     `json:"booking_date" gorm:"not null"`
	AmountPaid     float64       `json:"amount_paid" gorm:"type:numeric(10,2);not null"`
	Status         BookingStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	Listing *Listing `json:"-" gorm:"foreignKey:ListingID"`
}
