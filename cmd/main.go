package main

import (
	"log/slog"
	"os"

	"campuscalendarservice/pkg/auth"
	"campuscalendarservice/pkg/calendar"
	"campuscalendarservice/pkg/config"
	"campuscalendarservice/pkg/database"
	"campuscalendarservice/pkg/handlers"
	"campuscalendarservice/pkg/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/session"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("failed to connect to the database", "error", err)
		os.Exit(1)
	}

	users := repository.NewUserRepo(db)
	events := repository.NewEventRepo(db)

	oauthCfg := auth.NewOAuthConfig(cfg)
	googleAPI := calendar.NewGoogleAPI(oauthCfg)
	refresher := auth.NewTokenRefresher(oauthCfg, users, logger)
	callback := auth.NewCallbackService(oauthCfg, users, googleAPI, cfg.AllowedDomain, logger)
	calendars := calendar.NewService(events, refresher, googleAPI, logger)

	store := session.New(session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowCredentials: true,
	}))

	h := handlers.New(cfg, oauthCfg, store, users, events, callback, calendars, logger)
	h.Register(app)

	logger.Info("listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
