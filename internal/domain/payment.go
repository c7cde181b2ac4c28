package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

const DefaultCurrency = "ETB"

// Payment is the single payment record of a Booking. TxRef is the token
// shared with the gateway; it changes whenever a failed attempt is re-armed.
type Payment struct {
	ID                 uuid.UUID     `json:"payment_id" gorm:"type:uuid;primaryKey"`
	BookingID          uuid.UUID     `json:"booking_id" gorm:"type:uuid;not null;uniqueIndex"`
	TxRef              string        `json:"tx_ref" gorm:"type:varchar(255);not null;uniqueIndex"`
	ChapaTransactionID *string       `json:"chapa_transaction_id" gorm:"type:varchar(255)"`
	Amount             float64       `json:"amount" gorm:"type:numeric(10,2);not null"`
	Currency           string        `json:"currency" gorm:"type:varchar(8);not null;default:'ETB'"`
	Status             PaymentStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Attempts           int           `json:"attempts" gorm:"not null;default:1"`
	CheckoutURL        string        `json:"checkout_url,omitempty" gorm:"type:text"`
	FailureReason      string        `json:"failure_reason,omitempty" gorm:"type:text"`
	VerifiedAt         *time.Time    `json:"verified_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	Booking *Booking `json:"-" gorm:"foreignKey:BookingID"`
}

// FormatAmount renders a money value with two decimals, the form used on
// the gateway wire and in notifications.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
