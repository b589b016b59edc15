package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/barisbulutdemir/ermakRaporlama/internal/auth"
	"github.com/barisbulutdemir/ermakRaporlama/internal/config"
	"github.com/barisbulutdemir/ermakRaporlama/internal/database"
	"github.com/barisbulutdemir/ermakRaporlama/internal/handler"
	"github.com/barisbulutdemir/ermakRaporlama/internal/queue"
	"github.com/barisbulutdemir/ermakRaporlama/internal/ratelimit"
	"github.com/barisbulutdemir/ermakRaporlama/internal/repository"
	"github.com/barisbulutdemir/ermakRaporlama/internal/router"
	queue_publisher "github.com/barisbulutdemir/ermakRaporlama/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when unreachable; caching degrades

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	reports := repository.NewReportRepo(db)
	holidays := repository.NewHolidayRepo(db)
	settings := repository.NewSettingsRepo(db)

	limiter := ratelimit.New()
	defer limiter.Close()

	verifier := auth.NewService(users)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens, verifier, limiter, queue_publisher.New()),
		Admin:    handler.NewAdminUserHandler(cfg, users, tokens),
		Reports:  handler.NewReportHandler(reports, holidays),
		Holidays: handler.NewHolidayHandler(holidays),
		Settings: handler.NewSettingsHandler(settings, rdb, config.LoadCacheConfig().Prefix),
		Uploads:  handler.NewUploadHandler(cfg.UploadDir),
	}

	e := echo.New()
	e.HTTPErrorHandler = router.NewHTTPErrorHandler(settings)
	router.Register(e, cfg, h, limiter, rdb)

	// Background consumer records registrations for the approval queue.
	go func() {
		if err := queue.StartRegistrationConsumer(); err != nil {
			log.Printf("registration consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
