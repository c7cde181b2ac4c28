package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travelbooking/internal/domain"
)

type ReviewFilter struct {
	ListingID *uuid.UUID
	Page
}

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func withListingName(rv *domain.Review) {
	if rv.Listing != nil {
		rv.ListingName = rv.Listing.Name
	}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	return translate("review", r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error)
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	var rv domain.Review
	if err := r.db.WithContext(ctx).Preload("Listing").Where("id = ?", id).First(&rv).Error; err != nil {
		return nil, translate("review", err)
	}
	withListingName(&rv)
	return &rv, nil
}

func (r *ReviewRepository) List(ctx context.Context, f ReviewFilter) ([]domain.Review, error) {
	q := r.db.WithContext(ctx).Model(&domain.Review{}).Preload("Listing")
	if f.ListingID != nil {
		q = q.Where("listing_id = ?", *f.ListingID)
	}

	var out []domain.Review
	if err := f.Page.apply(q).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, translate("review", err)
	}
	for i := range out {
		withListingName(&out[i])
	}
	return out, nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	return translate("review", r.db.WithContext(ctx).Omit(clause.Associations).Save(rv).Error)
}

func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Review{})
	if res.Error != nil {
		return translate("review", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("review", gorm.ErrRecordNotFound)
	}
	return nil
}
