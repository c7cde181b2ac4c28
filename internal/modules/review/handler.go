package review

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelbooking/internal/pkg/response"
	"travelbooking/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/review")
	{
		g.GET("/", h.List)
		g.POST("/", h.Create)
		g.GET("/:id/", h.Get)
		g.PUT("/:id/", h.Replace)
		g.PATCH("/:id/", h.Patch)
		g.DELETE("/:id/", h.Delete)
	}
}

func reviewID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.DomainError(c, ErrReviewNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// Create stores a review; the response carries listing_name.
// @Summary  Write a review
// @Tags     Reviews
// @Security BearerAuth
// @Param    request body CreateReviewRequest true "listing_id, reviewer_name, rating, comment"
// @Success  201 {object} map[string]interface{}
// @Failure  400 {object} map[string]interface{}
// @Router   /review/ [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.DomainError(c, validator.AsError(err))
		return
	}

	rv, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rv)
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.DomainError(c, validator.AsError(err))
		return
	}

	items, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := reviewID(c)
	if !ok {
		return
	}

	rv, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rv)
}

func (h *Handler) Replace(c *gin.Context) {
	id, ok := reviewID(c)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.DomainError(c, validator.AsError(err))
		return
	}

	rv, err := h.svc.Replace(c.Request.Context(), id, req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rv)
}

func (h *Handler) Patch(c *gin.Context) {
	id, ok := reviewID(c)
	if !ok {
		return
	}

	var req PatchReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.DomainError(c, validator.AsError(err))
		return
	}

	rv, err := h.svc.Patch(c.Request.Context(), id, req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rv)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := reviewID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.DomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
