package main

import (
	"context"
	"flag"
	"time"

	"golang.org/x/crypto/bcrypt"

	"travelbooking/internal/config"
	"travelbooking/internal/database"
	"travelbooking/internal/domain"
	"travelbooking/internal/pkg/logger"
	"travelbooking/internal/repository"
)

type seedListing struct {
	transport   domain.TransportType
	name        string
	origin      string
	destination string
	inDays      int
	price       float64
	seats       int
}

var listings = []seedListing{
	{domain.TransportBus, "Lagos - Calabar Night Coach", "NG-LA", "NG-CR", 2, 10000, 40},
	{domain.TransportFlight, "Abuja - Lagos Morning Flight", "NG-FC", "NG-LA", 3, 85000, 120},
	{domain.TransportTrain, "Lagos - Ibadan Express", "NG-LA", "NG-OY", 1, 6000, 200},
	{domain.TransportBoat, "Calabar - Oron Ferry", "NG-CR", "NG-AK", 4, 3500, 60},
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	log := logger.New("info", "dev")
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	db, err := database.Connect(cfg.Database.URL, log)
	if err != nil {
		log.WithError(err).Fatal("DB connection failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("AutoMigrate failed")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)

	log.Info("Cleaning old data...")
	for _, table := range []string{"payments", "reviews", "bookings", "listings", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.WithError(err).WithField("table", table).Fatal("cleanup failed")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("operator123"), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Fatal("hash password")
	}
	operator := &domain.User{
		Email:        "operator@travelbooking.local",
		Username:     "operator",
		FirstName:    "Demo",
		LastName:     "Operator",
		PasswordHash: string(hash),
	}
	if err := users.Create(ctx, operator); err != nil {
		log.WithError(err).Fatal("create operator")
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	for _, s := range listings {
		l := &domain.Listing{
			OperatorID:     operator.ID,
			TransportType:  s.transport,
			Name:           s.name,
			Description:    s.name,
			Origin:         s.origin,
			Destination:    s.destination,
			DepartureTime:  day.AddDate(0, 0, s.inDays).Add(8 * time.Hour),
			Price:          s.price,
			AvailableSeats: s.seats,
			TotalSeats:     s.seats,
			Status:         domain.ListingActive,
		}
		if err := listingRepo.Create(ctx, l); err != nil {
			log.WithError(err).WithField("listing", s.name).Fatal("create listing")
		}
	}

	log.WithField("listings", len(listings)).Info("Seed complete. Login: operator@travelbooking.local / operator123")
}
