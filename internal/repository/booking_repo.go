package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travelbooking/internal/domain"
)

type BookingFilter struct {
	ListingID      *uuid.UUID
	PassengerEmail string
	Status         domain.BookingStatus
	Page
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return translate("booking", r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error)
}

// GetByID loads the booking together with its listing.
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).Preload("Listing").Where("id = ?", id).First(&b).Error; err != nil {
		return nil, translate("booking", err)
	}
	return &b, nil
}

func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{})
	if f.ListingID != nil {
		q = q.Where("listing_id = ?", *f.ListingID)
	}
	if f.PassengerEmail != "" {
		q = q.Where("passenger_email = ?", f.PassengerEmail)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var out []domain.Booking
	if err := f.Page.apply(q).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, translate("booking", err)
	}
	return out, nil
}

// Update writes the editable columns only while the stored status is still
// prev. A concurrent transition (payment confirmation, cancellation) makes
// it fail with ErrStale instead of being overwritten.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking, prev domain.BookingStatus) error {
	b.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status = ?", b.ID, prev).
		Updates(map[string]any{
			"listing_id":      b.ListingID,
			"passenger_name":  b.PassengerName,
			"passenger_email": b.PassengerEmail,
			"num_seats":       b.NumSeats,
			"booking_date":    b.BookingDate,
			"amount_paid":     b.AmountPaid,
			"status":          b.Status,
			"updated_at":      b.UpdatedAt,
		})
	if res.Error != nil {
		return translate("booking", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Booking{}).Where("id = ?", b.ID).Count(&n).Error; err != nil {
		return translate("booking", err)
	}
	if n == 0 {
		return translate("booking", gorm.ErrRecordNotFound)
	}
	return fmt.Errorf("booking %s: %w", b.ID, ErrStale)
}

// Delete removes the booking and its payment.
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", id).Delete(&domain.Payment{}).Error; err != nil {
			return translate("payment", err)
		}
		res := tx.Where("id = ?", id).Delete(&domain.Booking{})
		if res.Error != nil {
			return translate("booking", res.Error)
		}
		if res.RowsAffected == 0 {
			return translate("booking", gorm.ErrRecordNotFound)
		}
		return nil
	})
}
