package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"travelbooking/internal/middleware"
	"travelbooking/internal/modules/auth"
	"travelbooking/internal/modules/booking"
	"travelbooking/internal/modules/feed"
	"travelbooking/internal/modules/listing"
	"travelbooking/internal/modules/payment"
	"travelbooking/internal/modules/review"
	"travelbooking/internal/pkg/jwt"
	"travelbooking/internal/pkg/validator"
	"travelbooking/internal/repository"
)

// Notifier is the asynchronous mail producer shared by booking and payment.
type Notifier interface {
	booking.NotificationSender
	payment.Notifier
}

type Deps struct {
	DB            *gorm.DB
	JWT           *jwt.Service
	Gateway       payment.Gateway
	Notifier      Notifier
	Hub           *feed.Hub
	Log           logrus.FieldLogger
	Currency      string
	PublicBaseURL string
	CORSOrigins   []string
}

func NewRouter(d Deps) *gin.Engine {
	validator.RegisterBindings()
	if d.Hub == nil {
		d.Hub = feed.NewHub(d.Log)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Log))
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.CORS(d.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	userRepo := repository.NewUserRepository(d.DB)
	listingRepo := repository.NewListingRepository(d.DB)
	bookingRepo := repository.NewBookingRepository(d.DB)
	reviewRepo := repository.NewReviewRepository(d.DB)
	paymentRepo := repository.NewPaymentRepository(d.DB)

	authHandler := auth.NewHandler(auth.NewService(userRepo, d.JWT, d.Log))
	listingHandler := listing.NewHandler(listing.NewService(listingRepo, d.Log))
	bookingHandler := booking.NewHandler(booking.NewService(bookingRepo, listingRepo, d.Notifier, d.Hub, d.Log))
	reviewHandler := review.NewHandler(review.NewService(reviewRepo, listingRepo))
	paymentHandler := payment.NewHandler(
		payment.NewService(paymentRepo, bookingRepo, d.Gateway, d.Notifier, d.Hub, d.Currency, d.Log),
		d.PublicBaseURL,
		d.Log,
	)
	ownership := middleware.NewOwnershipChecker(listingRepo)

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		paymentHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(d.JWT))
		{
			authHandler.RegisterProtectedRoutes(protected)
			paymentHandler.RegisterProtectedRoutes(protected)
		}

		resources := v1.Group("")
		resources.Use(middleware.ReadOnlyOrAuth(d.JWT))
		{
			listingHandler.RegisterRoutes(resources, ownership.CheckListingOwnership())
			bookingHandler.RegisterRoutes(resources)
			reviewHandler.RegisterRoutes(resources)
		}
	}

	feed.NewHandler(d.Hub, d.JWT, middleware.OriginChecker(d.CORSOrigins)).RegisterRoutes(r)

	return r
}
