package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mfadillah/kostly/internal/config"
	"github.com/mfadillah/kostly/internal/database"
	"github.com/mfadillah/kostly/internal/gateway"
	"github.com/mfadillah/kostly/internal/handler"
	"github.com/mfadillah/kostly/internal/notifier"
	"github.com/mfadillah/kostly/internal/queue"
	"github.com/mfadillah/kostly/internal/repository"
	"github.com/mfadillah/kostly/internal/router"
	"github.com/mfadillah/kostly/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	rooms := repository.NewRoomRepo(db)
	rentals := repository.NewRentalRepo(db)
	invoices := repository.NewInvoiceRepo(db)
	payments := repository.NewPaymentRepo(db)

	snap := gateway.NewSnapClient(cfg.MidtransBaseURL, cfg.MidtransServerKey, logger)
	publisher := service.NewAMQPPublisher(logger)

	bookingSvc := service.NewBookingService(db, rooms, rentals, invoices, cfg.InvoiceDueDays, logger)
	paymentSvc := service.NewPaymentService(db, payments, invoices, rentals, rooms, users,
		snap, publisher, cfg.FrontendURL, logger)

	mailer := notifier.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, logger)
	go func() {
		if err := queue.StartPaymentConsumer(mailer, logger); err != nil {
			logger.Warn("payment consumer stopped", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, router.Deps{
		Cfg:      cfg,
		Redis:    rdb,
		Auth:     handler.NewAuthHandler(cfg, users),
		Rooms:    handler.NewRoomHandler(rooms),
		Bookings: handler.NewBookingHandler(bookingSvc),
		Payments: handler.NewPaymentHandler(paymentSvc),
	})

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
