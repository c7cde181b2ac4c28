package booking

import (
	"time"

	"github.com/google/uuid"

	"travelbooking/internal/domain"
)

type CreateBookingRequest struct {
	ListingID      uuid.UUID `json:"listing_id" binding:"required"`
	PassengerName  string    `json:"passenger_name" binding:"required,max=128"`
	PassengerEmail string    `json:"passenger_email" binding:"required,email,max=254"`
	NumSeats       int       `json:"num_seats" binding:"required,gte=1"`
	BookingDate    time.Time `json:"booking_date" binding:"required"`
	AmountPaid     *float64  `json:"amount_paid" binding:"required,gte=0"`
	Status         string    `json:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
}

func (r CreateBookingRequest) asPatch() PatchBookingRequest {
	listingID := r.ListingID
	date := r.BookingDate
	p := PatchBookingRequest{
		ListingID:      &listingID,
		PassengerName:  &r.PassengerName,
		PassengerEmail: &r.PassengerEmail,
		NumSeats:       &r.NumSeats,
		BookingDate:    &date,
		AmountPaid:     r.AmountPaid,
	}
	if r.Status != "" {
		p.Status = &r.Status
	}
	return p
}

type PatchBookingRequest struct {
	ListingID      *uuid.UUID `json:"listing_id"`
	PassengerName  *string    `json:"passenger_name" binding:"omitempty,min=1,max=128"`
	PassengerEmail *string    `json:"passenger_email" binding:"omitempty,email,max=254"`
	NumSeats       *int       `json:"num_seats" binding:"omitempty,gte=1"`
	BookingDate    *time.Time `json:"booking_date"`
	AmountPaid     *float64   `json:"amount_paid" binding:"omitempty,gte=0"`
	Status         *string    `json:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
}

func (p PatchBookingRequest) apply(b *domain.Booking) {
	if p.ListingID != nil {
		b.ListingID = *p.ListingID
	}
	if p.PassengerName != nil {
		b.PassengerName = *p.PassengerName
	}
	if p.PassengerEmail != nil {
		b.PassengerEmail = *p.PassengerEmail
	}
	if p.NumSeats != nil {
		b.NumSeats = *p.NumSeats
	}
	if p.BookingDate != nil {
		b.BookingDate = p.BookingDate.UTC()
	}
	if p.AmountPaid != nil {
		b.AmountPaid = *p.AmountPaid
	}
	if p.Status != nil {
		b.Status = domain.BookingStatus(*p.Status)
	}
}

type ListQuery struct {
	ListingID string `form:"listing_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	Limit     int    `form:"limit" binding:"omitempty,gte=1,lte=200"`
	Offset    int    `form:"offset" binding:"omitempty,gte=0"`
}
