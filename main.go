package main

import (
	"certdesk/config"
	certificateControllers "certdesk/controllers/certificate"
	enrollmentControllers "certdesk/controllers/enrollment"
	"certdesk/database"
	"certdesk/routers/certificateRoutes"
	"certdesk/routers/enrollmentRoutes"
	"certdesk/services/certificate"
	"certdesk/utils"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	certificates, err := certificate.NewFromConfig(database.Database.Db, config.AppConfig)
	if err != nil {
		log.Fatalf("[CERTIFICATE] %v", err)
	}

	app := fiber.New()

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Generated certificates are public; the QR code links here
	app.Static(config.AppConfig.PublicPath, config.AppConfig.OutputDir)

	certificateRoutes.SetupCertificateRoutes(app, &certificateControllers.CertificateController{Service: certificates})
	enrollmentRoutes.SetupEnrollmentRoutes(app, &enrollmentControllers.EnrollmentController{
		DB:           database.Database.Db,
		Certificates: certificates,
	})

	scheduler, err := utils.InitializeReconcileScheduler(config.AppConfig.ReconcileCron, func(ctx context.Context) (bool, error) {
		report, err := certificates.Reconcile(ctx)
		if err != nil {
			return false, err
		}
		return report.Clean(), nil
	})
	if err != nil {
		log.Fatalf("[RECONCILE-SCHEDULER] Invalid RECONCILE_CRON %q: %v", config.AppConfig.ReconcileCron, err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		<-scheduler.Stop().Done()
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Fatal(err)
	}
}
