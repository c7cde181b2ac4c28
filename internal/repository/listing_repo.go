package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travelbooking/internal/domain"
)

type ListingFilter struct {
	TransportType domain.TransportType
	Origin        string
	Destination   string
	Status        domain.ListingStatus
	OperatorID    *uuid.UUID
	Page
}

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return translate("listing", r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error)
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var l domain.Listing
	err := r.db.WithContext(ctx).Preload("Operator").Where("id = ?", id).First(&l).Error
	if err != nil {
		return nil, translate("listing", err)
	}
	return &l, nil
}

func (r *ListingRepository) List(ctx context.Context, f ListingFilter) ([]domain.Listing, error) {
	q := r.db.WithContext(ctx).Model(&domain.Listing{}).Preload("Operator")
	if f.TransportType != "" {
		q = q.Where("transport_type = ?", f.TransportType)
	}
	if f.Origin != "" {
		q = q.Where("origin = ?", f.Origin)
	}
	if f.Destination != "" {
		q = q.Where("destination = ?", f.Destination)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.OperatorID != nil {
		q = q.Where("operator_id = ?", *f.OperatorID)
	}

	var out []domain.Listing
	if err := f.Page.apply(q).Order("departure_time ASC").Find(&out).Error; err != nil {
		return nil, translate("listing", err)
	}
	return out, nil
}

func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	return translate("listing", r.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error)
}

// Delete removes the listing with its bookings, their payments and its
// reviews in one transaction.
func (r *ListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookingIDs := tx.Model(&domain.Booking{}).Select("id").Where("listing_id = ?", id)
		if err := tx.Where("booking_id IN (?)", bookingIDs).Delete(&domain.Payment{}).Error; err != nil {
			return translate("payment", err)
		}
		if err := tx.Where("listing_id = ?", id).Delete(&domain.Booking{}).Error; err != nil {
			return translate("booking", err)
		}
		if err := tx.Where("listing_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return translate("review", err)
		}
		res := tx.Where("id = ?", id).Delete(&domain.Listing{})
		if res.Error != nil {
			return translate("listing", res.Error)
		}
		if res.RowsAffected == 0 {
			return translate("listing", gorm.ErrRecordNotFound)
		}
		return nil
	})
}
