package booking

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelbooking/internal/pkg/response"
	"travelbooking/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts /booking. Reads are anonymous, writes need the
// caller to be authenticated by the group's middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/booking")
	{
		g.GET("/", h.List)
		g.POST("/", h.CreateBooking)
		g.GET("/:id/", h.Get)
		g.PUT("/:id/", h.Replace)
		g.PATCH("/:id/", h.Patch)
		g.DELETE("/:id/", h.Delete)
	}
}

func bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.DomainError(c, ErrBookingNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.DomainError(c, validator.AsError(err))
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b)
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

func (h *Handler) Get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) Replace(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.DomainError(c, validator.AsError(err))
		return
	}

	b, err := h.service.Replace(c.Request.Context(), id, req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) Patch(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req PatchBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.DomainError(c, validator.AsError(err))
		return
	}

	b, err := h.service.Patch(c.Request.Context(), id, req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.DomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
