package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransportType string

const (
	TransportBus    TransportType = "bus"
	TransportFlight TransportType = "flight"
	TransportTrain  TransportType = "train"
	TransportBoat   TransportType = "boat"
)

func (t TransportType) Valid() bool {
	switch t {
	case TransportBus, TransportFlight, TransportTrain, TransportBoat:
		return true
	}
	return false
}

type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingConfirmed ListingStatus = "confirmed"
	ListingCancelled ListingStatus = "cancelled"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingActive, ListingConfirmed, ListingCancelled:
		return true
	}
	return false
}

const (
	DefaultOrigin      = "NG-LA"
	DefaultDestination = "NG-CR"
)

// Listing is a transport offering published by an operator.
type Listing struct {
	ID             uuid.UUID     `json:"listing_id" gorm:"type:uuid;primaryKey"`
	OperatorID     uuid.UUID     `json:"-" gorm:"type:uuid;not null;index"`
	TransportType  TransportType `json:"transport_type" gorm:"type:varchar(30);not null;default:'bus'"`
	Name           string        `json:"name" gorm:"type:varchar(128)"`
	Description    string        `json:"description" gorm:"type:text;not null"`
	Origin         string        `json:"origin" gorm:"type:varchar(50);not null"`
	Destination    string        `json:"destination" gorm:"type:varchar(50);not null"`
	DepartureTime  time.Time     `json:"departure_time" gorm:"not null"`
	Price          float64       `json:"price" gorm:"type:numeric(10,2);not null"`
	AvailableSeats int           `json:"available_seats" gorm:"not null"`
	TotalSeats     int           `json:"total_seats" gorm:"not null"`
	Status         ListingStatus `json:"status" gorm:"type:varchar(50);not null;default:'active';index"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	Operator *User `json:"operator,omitempty" gorm:"foreignKey:OperatorID"`
}
