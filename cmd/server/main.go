package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/appsalon/booking-api/internal/config"
	"github.com/appsalon/booking-api/internal/database"
	"github.com/appsalon/booking-api/internal/handler"
	"github.com/appsalon/booking-api/internal/mailer"
	"github.com/appsalon/booking-api/internal/queue"
	"github.com/appsalon/booking-api/internal/repository"
	"github.com/appsalon/booking-api/internal/router"
	"github.com/appsalon/booking-api/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	services := repository.NewServiceRepo(db)
	appointments := repository.NewAppointmentRepo(db)
	comments := repository.NewCommentRepo(db)

	mail := mailer.New(config.LoadSMTP(), cfg.AppURL)
	if !mail.Enabled() {
		log.Println("smtp not configured, outgoing mail disabled")
	}

	var images handler.ImageStore
	if s3Store, err := storage.NewS3Store(config.LoadS3()); err != nil {
		log.Printf("s3 not configured, image uploads disabled: %v", err)
	} else {
		images = s3Store
	}

	amqpURL := config.AMQPURL()
	events := queue.NewPublisher(amqpURL)
	go queue.StartConsumer(amqpURL, mail)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unreachable, rate limiting and caching disabled")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:          cfg,
		Users:        users,
		Auth:         handler.NewAuthHandler(cfg, users, mail),
		Services:     handler.NewServiceHandler(services, images),
		Appointments: handler.NewAppointmentHandler(appointments, services, events),
		Comments:     handler.NewCommentHandler(comments, services),
		Redis:        rdb,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
