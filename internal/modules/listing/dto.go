package listing

import (
	"time"

	"travelbooking/internal/domain"
)

type CreateListingRequest struct {
	TransportType  string    `json:"transport_type" binding:"omitempty,transport"`
	Name           string    `json:"name" binding:"max=128"`
	Description    string    `json:"description" binding:"required"`
	Origin         string    `json:"origin" binding:"omitempty,region"`
	Destination    string    `json:"destination" binding:"omitempty,region"`
	DepartureTime  time.Time `json:"departure_time" binding:"required"`
	Price          *float64  `json:"price" binding:"required,gte=0"`
	AvailableSeats *int      `json:"available_seats" binding:"required,gte=0"`
	TotalSeats     *int      `json:"total_seats" binding:"required,gte=1"`
	Status         string    `json:"status" binding:"omitempty,oneof=active confirmed cancelled"`
}

// asPatch fills the optional fields with their defaults, so that a PUT
// resets anything the caller left out.
func (r CreateListingRequest) asPatch() PatchListingRequest {
	transport := domain.TransportType(r.TransportType)
	if transport == "" {
		transport = domain.TransportBus
	}
	origin, destination := r.Origin, r.Destination
	if origin == "" {
		origin = domain.DefaultOrigin
	}
	if destination == "" {
		destination = domain.DefaultDestination
	}
	status := domain.ListingStatus(r.Status)
	if status == "" {
		status = domain.ListingActive
	}
	t := string(transport)
	s := string(status)
	departure := r.DepartureTime

	return PatchListingRequest{
		TransportType:  &t,
		Name:           &r.Name,
		Description:    &r.Description,
		Origin:         &origin,
		Destination:    &destination,
		DepartureTime:  &departure,
		Price:          r.Price,
		AvailableSeats: r.AvailableSeats,
		TotalSeats:     r.TotalSeats,
		Status:         &s,
	}
}

type PatchListingRequest struct {
	TransportType  *string    `json:"transport_type" binding:"omitempty,transport"`
	Name           *string    `json:"name" binding:"omitempty,max=128"`
	Description    *string    `json:"description" binding:"omitempty,min=1"`
	Origin         *string    `json:"origin" binding:"omitempty,region"`
	Destination    *string    `json:"destination" binding:"omitempty,region"`
	DepartureTime  *time.Time `json:"departure_time"`
	Price          *float64   `json:"price" binding:"omitempty,gte=0"`
	AvailableSeats *int       `json:"available_seats" binding:"omitempty,gte=0"`
	TotalSeats     *int       `json:"total_seats" binding:"omitempty,gte=1"`
	Status         *string    `json:"status" binding:"omitempty,oneof=active confirmed cancelled"`
}

func (p PatchListingRequest) apply(l *domain.Listing) {
	if p.TransportType != nil {
		l.TransportType = domain.TransportType(*p.TransportType)
	}
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Origin != nil {
		l.Origin = *p.Origin
	}
	if p.Destination != nil {
		l.Destination = *p.Destination
	}
	if p.DepartureTime != nil {
		l.DepartureTime = p.DepartureTime.UTC()
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.AvailableSeats != nil {
		l.AvailableSeats = *p.AvailableSeats
	}
	if p.TotalSeats != nil {
		l.TotalSeats = *p.TotalSeats
	}
	if p.Status != nil {
		l.Status = domain.ListingStatus(*p.Status)
	}
}

type ListQuery struct {
	TransportType string `form:"transport_type"`
	Origin        string `form:"origin"`
	Destination   string `form:"destination"`
	Status        string `form:"status"`
	Limit         int    `form:"limit" binding:"omitempty,gte=1,lte=200"`
	Offset        int    `form:"offset" binding:"omitempty,gte=0"`
}
