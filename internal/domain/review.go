package domain

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID           uuid.UUID `json:"review_id" gorm:"type:uuid;primaryKey"`
	ListingID    uuid.UUID `json:"listing_id" gorm:"type:uuid;not null;index"`
	ListingName  string    `json:"listing_name" gorm:"-"`
	ReviewerName string    `json:"reviewer_name" gorm:"type:varchar(128);not null"`
	Rating       int       `json:"rating" gorm:"not null"`
	Comment      string    `json:"comment" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Listing *Listing `json:"-" gorm:"foreignKey:ListingID"`
}
