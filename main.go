package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"freshscan/config"
	"freshscan/controllers"
	"freshscan/controllers/admins"
	"freshscan/database"
	"freshscan/middleware"
	"freshscan/qrgen"
	"freshscan/routes"
	"freshscan/utils"
)

func main() {
	// Load .env if present (do not overwrite already-set environment variables).
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	if middleware.AdminAuthEnabled() && os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET must be set when an admin password is configured")
	}

	cfg := config.Load()

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := database.Initialize(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	store := database.NewStore(db)

	var uploader qrgen.Uploader
	if r2 := utils.NewR2UploaderFromEnv(); r2 != nil {
		log.Println("R2 mirror configured for generated QR images")
		uploader = r2
	}
	qr, err := qrgen.New(qrgen.Config{
		BaseURL:   cfg.BaseURL,
		OutputDir: cfg.QROutputDir,
		LogoPath:  cfg.QRLogoPath,
	}, uploader)
	if err != nil {
		log.Fatalf("failed to set up qr generator: %v", err)
	}

	if strings.ToLower(os.Getenv("SEED_SAMPLES")) == "true" {
		samples, err := store.SeedSampleProducts(context.Background(), time.Now())
		if err != nil {
			log.Fatalf("failed to seed sample products: %v", err)
		}
		log.Printf("Seeded %d sample products", len(samples))
	}

	router := routes.InitRouter(routes.Deps{
		Public: controllers.NewProductController(store, cfg.Thresholds, cfg.Styles),
		Admin:  admins.NewAdminController(store, qr, cfg.Thresholds, cfg.Styles),
		QRDir:  cfg.QROutputDir,
	})

	// Global middleware in recommended order:
	// Logging -> Security headers -> Request ID -> Max Body -> Timeout -> Recovery
	handler := middleware.RequestLogMiddleware(
		middleware.SecurityHeadersMiddleware(
			middleware.RequestIDMiddleware(
				middleware.MaxBodyMiddleware(
					middleware.TimeoutMiddleware(
						middleware.RecoveryMiddleware(router),
					),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("%s v%s serving at %s", config.BrandName, config.Version, cfg.BaseURL)
		log.Printf("Admin listing: %s/v1/admin/products", cfg.BaseURL)
		log.Printf("Sample scan:   %s/v1/product/1", cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
