package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"game-catalog-sync/config"
	"game-catalog-sync/database"
	"game-catalog-sync/handlers"
	"game-catalog-sync/services"
	"game-catalog-sync/utils"
	"game-catalog-sync/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := services.NewGormGameStore(db)

	steam := services.NewSteamClient(cfg.SteamAPIURL, cfg.SteamTimeout)
	steam.Country = cfg.SteamCountry
	steam.Language = cfg.SteamLanguage

	syncService := services.NewSyncService(steam, store)
	if cfg.R2.Enabled() {
		mirror, err := utils.NewR2Mirror(ctx, cfg.R2.AccountID, cfg.R2.AccessKeyID,
			cfg.R2.AccessKeySecret, cfg.R2.Bucket, cfg.R2.CDNBaseURL)
		if err != nil {
			log.Fatal("failed to initialize R2 client: ", err)
		}
		syncService.WithImageMirror(mirror)
		log.Printf("✅ Header images mirrored to R2 bucket %s", cfg.R2.Bucket)
	}
	gameService := services.NewGameService(store)

	resync := workers.NewResyncWorker(store, syncService, cfg.ResyncInterval)
	if err := resync.Start(ctx); err != nil {
		log.Fatal("failed to start resync worker: ", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "game-catalog-sync",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // large sync batches
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} [HTTP] ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,PATCH,OPTIONS,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		MaxAge:       86400,
	}))

	handlers.SetupHealthRoutes(app, db)
	handlers.SetupGameRoutes(app, handlers.NewGameHandler(gameService, syncService, cfg.SyncBatchMax), cfg.ServiceToken)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s (%s)", cfg.Port, cfg.Environment)
	log.Printf("✅ Steam API: %s (timeout %s)", cfg.SteamAPIURL, cfg.SteamTimeout)
	log.Printf("✅ CORS configured for origins: %s", strings.Join(cfg.AllowedOrigins, ","))

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
