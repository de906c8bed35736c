package main // Entry point package

import (
	"log"  // Logging library
	"time"

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/miravel/authportal/internal/config"
	"github.com/miravel/authportal/internal/database"
	"github.com/miravel/authportal/internal/handler"
	"github.com/miravel/authportal/internal/mailer"
	"github.com/miravel/authportal/internal/repository"
	"github.com/miravel/authportal/internal/router"
	queue_publisher "github.com/miravel/authportal/internal/service"
	"github.com/miravel/authportal/internal/session"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rdb, err := config.NewRedisClient()
	if err != nil {
		// Sessions live in Redis; without it nobody can log in.
		log.Fatalf("redis: %v", err)
	}

	users := repository.NewUserRepo(db)
	sessions := session.NewRedisStore(rdb,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		time.Duration(cfg.RememberTTLDays)*24*time.Hour)
	mail := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	events := queue_publisher.NewAMQPPublisher()

	auth := handler.NewAuthHandler(cfg, users, sessions, events)
	reset := handler.NewResetHandler(cfg, users, sessions, mail, events)
	account := handler.NewAccountHandler(users)

	e := echo.New()
	e.HTTPErrorHandler = router.HTTPErrorHandler
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, reset)
	router.RegisterAccount(e, account, sessions)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
