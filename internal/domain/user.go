package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(254);uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(150)"`
	LastName     string    `json:"last_name" gorm:"type:varchar(150)"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
