package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/painfulChen/offercome-sub000/bootstrap"
	"github.com/painfulChen/offercome-sub000/config"
	"github.com/painfulChen/offercome-sub000/middleware"
	"github.com/painfulChen/offercome-sub000/pkg/logging"
	"github.com/painfulChen/offercome-sub000/routes"
)

func main() {
	// 环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	logging.Init()

	cfg := config.LoadConfig()
	application, err := bootstrap.NewApp(cfg)
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxFileSize),
	})
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	routes.RegisterRagRoutes(app, application.Handlers.RagHandler)
	routes.RegisterEventRoutes(app, application.Handlers.WSHandler)

	port := cfg.HttpPort
	if port == "" {
		port = "3000"
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logging.Logger.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			logging.Logger.Error("fail fiber shutdown", "error", err)
		}
	}()

	log.Println("Server running on http://localhost:" + port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}

	if err := application.Shutdown(); err != nil {
		log.Fatal(err)
	}
}
