package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travelbooking/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return translate("payment", r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (r *PaymentRepository) GetByTxRef(ctx context.Context, txRef string) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("tx_ref = ?", txRef).First(&p).Error; err != nil {
		return nil, translate("payment", err)
	}
	return &p, nil
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&p).Error; err != nil {
		return nil, translate("payment", err)
	}
	return &p, nil
}

// Rearm gives a non-completed payment a fresh token. The update only
// applies while the row still carries prevTxRef, so two racing initiates
// cannot both re-arm it.
func (r *PaymentRepository) Rearm(ctx context.Context, id uuid.UUID, prevTxRef, txRef string, amount float64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("id = ? AND tx_ref = ? AND status <> ?", id, prevTxRef, domain.PaymentCompleted).
		Updates(map[string]interface{}{
			"tx_ref":               txRef,
			"amount":               amount,
			"status":               domain.PaymentPending,
			"attempts":             gorm.Expr("attempts + 1"),
			"chapa_transaction_id": nil,
			"checkout_url":         "",
			"failure_reason":       "",
			"verified_at":          nil,
		})
	if res.Error != nil {
		return false, translate("payment", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PaymentRepository) SetCheckoutURL(ctx context.Context, txRef, checkoutURL string) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("tx_ref = ?", txRef).
		Update("checkout_url", checkoutURL).Error
	return translate("payment", err)
}

// MarkFailed moves a pending payment to failed. It reports false when the
// payment had already left pending.
func (r *PaymentRepository) MarkFailed(ctx context.Context, txRef, reason string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("tx_ref = ? AND status = ?", txRef, domain.PaymentPending).
		Updates(map[string]interface{}{
			"status":         domain.PaymentFailed,
			"failure_reason": reason,
		})
	if res.Error != nil {
		return false, translate("payment", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Completion is the outcome of Complete. The booking fields are read inside
// the same transaction so callers need no second lookup.
type Completion struct {
	// Changed is true only for the caller that moved the payment out of
	// pending.
	Changed bool
	// BookingConfirmed is false when the booking had already left pending,
	// e.g. it was cancelled before the gateway reported success.
	BookingConfirmed bool
	BookingID        uuid.UUID
	PassengerEmail   string
	Amount           float64
}

// Complete reconciles a successful gateway verification: payment
// pending -> completed and booking pending -> confirmed in one transaction.
// The status guard on the payment update makes concurrent calls safe; only
// one caller observes Changed. A booking that is no longer pending keeps its
// status.
func (r *PaymentRepository) Complete(ctx context.Context, txRef, externalID string, verifiedAt time.Time) (Completion, error) {
	var out Completion
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":      domain.PaymentCompleted,
			"verified_at": verifiedAt,
		}
		if externalID != "" {
			updates["chapa_transaction_id"] = externalID
		}
		res := tx.Model(&domain.Payment{}).
			Where("tx_ref = ? AND status = ?", txRef, domain.PaymentPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var p domain.Payment
		if err := tx.Select("booking_id", "amount").Where("tx_ref = ?", txRef).First(&p).Error; err != nil {
			return err
		}
		res = tx.Model(&domain.Booking{}).
			Where("id = ? AND status = ?", p.BookingID, domain.BookingPending).
			Updates(map[string]interface{}{
				"status":     domain.BookingConfirmed,
				"updated_at": verifiedAt,
			})
		if res.Error != nil {
			return res.Error
		}

		var b domain.Booking
		if err := tx.Select("id", "passenger_email").Where("id = ?", p.BookingID).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("payment references a missing booking")
			}
			return err
		}
		out = Completion{
			Changed:          true,
			BookingConfirmed: res.RowsAffected > 0,
			BookingID:        b.ID,
			PassengerEmail:   b.PassengerEmail,
			Amount:           p.Amount,
		}
		return nil
	})
	if err != nil {
		return Completion{}, translate("payment", err)
	}
	return out, nil
}
