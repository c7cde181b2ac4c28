package listing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelbooking/internal/middleware"
	"travelbooking/internal/pkg/response"
	"travelbooking/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the listing resource. rg must already apply
// read-only-or-authenticated access; ownership guards the writes on a
// single listing.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, ownership gin.HandlerFunc) {
	g := rg.Group("/listing")
	{
		g.GET("/", h.List)
		g.POST("/", h.Create)
		g.GET("/:id/", h.Get)
		g.PUT("/:id/", ownership, h.Replace)
		g.PATCH("/:id/", ownership, h.Patch)
		g.DELETE("/:id/", ownership, h.Delete)
	}
}

func listingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.DomainError(c, ErrListingNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.DomainError(c, validator.AsError(err))
		return
	}

	items, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

func (h *Handler) Create(c *gin.Context) {
	operatorID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.DomainError(c, validator.AsError(err))
		return
	}

	l, err := h.service.Create(c.Request.Context(), operatorID, req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, l)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	l, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

func (h *Handler) Replace(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.DomainError(c, validator.AsError(err))
		return
	}

	l, err := h.service.Replace(c.Request.Context(), id, req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

func (h *Handler) Patch(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var req PatchListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.DomainError(c, validator.AsError(err))
		return
	}

	l, err := h.service.Patch(c.Request.Context(), id, req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.DomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
