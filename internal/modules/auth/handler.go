package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelbooking/internal/middleware"
	"travelbooking/internal/pkg/response"
	"travelbooking/internal/pkg/validator"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register/", h.Register)
		authGroup.POST("/login/", h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/auth/me/", h.GetMe)
}

// Register creates an account.
// @Summary  Register a user
// @Tags     Auth
// @Success  201 {object} map[string]interface{}
// @Failure  400 {object} map[string]interface{} "validation error or password mismatch"
// @Failure  409 {object} map[string]interface{} "username or email taken"
// @Router   /auth/register/ [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.DomainError(c, validator.AsError(err))
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

// Login exchanges credentials for an access token.
// @Router /auth/login/ [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.DomainError(c, validator.AsError(err))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"access_token": res.AccessToken,
		"token_type":   "Bearer",
		"user":         res.User,
	})
}

func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
