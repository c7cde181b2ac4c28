package payment

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelbooking/internal/domain"
)

type Handler struct {
	service       *Service
	publicBaseURL string
	log           logrus.FieldLogger
}

// NewHandler builds the payment endpoints. publicBaseURL is the externally
// reachable API prefix; when empty it is derived from the request.
func NewHandler(service *Service, publicBaseURL string, log logrus.FieldLogger) *Handler {
	return &Handler{
		service:       service,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log.WithField("module", "payment"),
	}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/initiate/:booking_id/", h.Initiate)
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/payments/verify/", h.Verify)
	rg.GET("/payments/success/", h.Success)
}

// Initiate godoc
// @Summary      Initiate Chapa payment
// @Description  Opens a hosted checkout for a pending booking
// @Tags         Payments
// @Security     BearerAuth
// @Produce      json
// @Param        booking_id path string true "Booking ID"
// @Success      200 {object} InitiateResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /payments/initiate/{booking_id}/ [post]
func (h *Handler) Initiate(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		h.writeError(c, ErrBookingNotFound)
		return
	}

	resp, err := h.service.Initiate(c.Request.Context(), bookingID, h.urls(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Verify godoc
// @Summary      Verify Chapa payment
// @Description  Gateway callback; confirms the booking when Chapa reports success
// @Tags         Payments
// @Produce      json
// @Param        tx_ref query string true "Transaction reference"
// @Success      200 {object} VerifyResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /payments/verify/ [get]
func (h *Handler) Verify(c *gin.Context) {
	resp, err := h.service.Verify(c.Request.Context(), txRefParam(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Success is where Chapa sends the payer's browser after checkout.
func (h *Handler) Success(c *gin.Context) {
	c.JSON(http.StatusOK, ReturnResponse{
		Message: "Payment completed. Confirmation will follow by email.",
		TxRef:   txRefParam(c),
	})
}

// Chapa has used both spellings on the callback query.
func txRefParam(c *gin.Context) string {
	if v := c.Query("tx_ref"); v != "" {
		return v
	}
	return c.Query("trx_ref")
}

func (h *Handler) urls(c *gin.Context) URLs {
	base := h.publicBaseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host + "/api/v1"
	}
	return URLs{
		Callback: base + "/payments/verify/",
		Return:   base + "/payments/success/",
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var status int
	var msg string
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, msg = http.StatusNotFound, notFoundMessage(err)
	case errors.Is(err, ErrAlreadyProcessed):
		status, msg = http.StatusBadRequest, "Payment already processed for this booking"
	case errors.Is(err, ErrPaymentFailed):
		status, msg = http.StatusBadRequest, "Payment has failed, please initiate a new payment"
	case errors.Is(err, ErrTxRefRequired):
		status, msg = http.StatusBadRequest, "tx_ref is required"
	case errors.Is(err, ErrInitiateFailed):
		status, msg = http.StatusBadRequest, "Failed to initiate payment"
	case errors.Is(err, domain.ErrUpstream):
		status, msg = http.StatusBadRequest, "Payment verification failed"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrBadRequest):
		status, msg = http.StatusBadRequest, err.Error()
	default:
		h.log.WithError(err).Error("payment request failed")
		status, msg = http.StatusInternalServerError, "internal error"
	}
	c.JSON(status, ErrorResponse{Error: msg})
}

func notFoundMessage(err error) string {
	if errors.Is(err, ErrPaymentNotFound) {
		return "Payment not found"
	}
	return "Booking not found"
}
