package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"travelbooking/internal/config"
	"travelbooking/internal/database"
	"travelbooking/internal/modules/feed"
	"travelbooking/internal/notification"
	"travelbooking/internal/pkg/chapa"
	"travelbooking/internal/pkg/jwt"
	"travelbooking/internal/pkg/logger"
	"travelbooking/internal/pkg/queue"
	"travelbooking/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.App.LogLevel, cfg.App.Env)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database.URL, log)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migrate database")
	}

	q := openQueue(ctx, cfg, log)
	defer q.Close()

	var mailer notification.Mailer = notification.NewLogMailer(log)
	if cfg.Notification.SMTP.Host != "" {
		s := cfg.Notification.SMTP
		mailer = notification.NewSMTPMailer(notification.SMTPConfig{
			Host:     s.Host,
			Port:     s.Port,
			Username: s.Username,
			Password: s.Password,
			From:     s.From,
		})
	} else {
		log.Warn("SMTP host not configured, emails are written to the log")
	}

	dispatcher := notification.NewDispatcher(q, mailer, notification.Config{
		Workers:    cfg.Notification.Workers,
		MaxRetries: cfg.Notification.MaxRetries,
		RetryDelay: cfg.Notification.RetryDelay,
	}, log)

	if cfg.Chapa.SecretKey == "" {
		log.Warn("CHAPA_SECRET_KEY is empty, payment initiation will fail")
	}
	hub := feed.NewHub(log)
	defer hub.Close()

	router := server.NewRouter(server.Deps{
		DB:            db,
		JWT:           jwt.New(cfg.JWT.Secret, cfg.JWT.TTL),
		Gateway:       chapa.NewClient(cfg.Chapa.BaseURL, cfg.Chapa.SecretKey, cfg.Chapa.Timeout),
		Notifier:      dispatcher,
		Hub:           hub,
		Log:           log,
		Currency:      cfg.Chapa.Currency,
		PublicBaseURL: cfg.App.PublicBaseURL,
		CORSOrigins:   cfg.App.CORSOrigins,
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatcher.Start(ctx)
	}()

	if err := server.New(cfg.App.Port, router, log).Run(ctx); err != nil {
		log.WithError(err).Error("http server stopped")
		stop()
	}
	wg.Wait()
	log.Info("bye")
}

func openQueue(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) queue.Queue {
	if cfg.Redis.Addr == "" {
		log.Info("notification queue: in-memory")
		return queue.NewMemoryQueue(queue.DefaultBuffer)
	}

	client, err := queue.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.WithError(err).Fatal("connect redis")
	}
	rc := queue.DefaultRedisConfig()
	if cfg.Redis.Key != "" {
		rc.Key = cfg.Redis.Key
		rc.ProcessingKey = cfg.Redis.Key + ":processing"
		rc.DeadLetterKey = cfg.Redis.Key + ":dlq"
	}
	q := queue.NewRedisQueue(client, rc, log)
	n, err := q.RecoverInFlight(ctx)
	if err != nil {
		log.WithError(err).Fatal("recover in-flight notifications")
	}
	log.WithFields(logrus.Fields{"addr": cfg.Redis.Addr, "recovered": n}).Info("notification queue: redis")
	return q
}
