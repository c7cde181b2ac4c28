package review

import "github.com/google/uuid"

type CreateReviewRequest struct {
	ListingID    uuid.UUID `json:"listing_id" binding:"required"`
	ReviewerName string    `json:"reviewer_name" binding:"required,max=128"`
	Rating       int       `json:"rating" binding:"required,gte=1,lte=5"`
	Comment      string    `json:"comment"`
}

type PatchReviewRequest struct {
	ListingID    *uuid.UUID `json:"listing_id"`
	ReviewerName *string    `json:"reviewer_name" binding:"omitempty,min=1,max=128"`
	Rating       *int       `json:"rating" binding:"omitempty,gte=1,lte=5"`
	Comment      *string    `json:"comment"`
}

type ListQuery struct {
	ListingID string `form:"listing_id" binding:"omitempty,uuid"`
	Limit     int    `form:"limit" binding:"omitempty,gte=1,lte=200"`
	Offset    int    `form:"offset" binding:"omitempty,gte=0"`
}
