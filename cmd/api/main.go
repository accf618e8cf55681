package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/playwright-community/playwright-go"

	"github.com/TahaTehitah1/strimo-plan-util/internal/config"
	"github.com/TahaTehitah1/strimo-plan-util/internal/http"
	"github.com/TahaTehitah1/strimo-plan-util/internal/portal"
	"github.com/TahaTehitah1/strimo-plan-util/internal/service"
)

func main() {
	log.Println("Starting IPTV Purchase Service...")

	// .env is a convenience for local runs; the real environment wins.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Fetch the browser runtime when asked to; container images bake it in
	// at build time instead.
	if cfg.Browser.AutoInstall {
		log.Println("Installing browser runtime...")
		if err := playwright.Install(&playwright.RunOptions{
			Browsers: []string{"chromium"},
		}); err != nil {
			log.Fatalf("Failed to install browser runtime: %v", err)
		}
	}

	// Initialize portal driver
	driver, err := portal.NewDriver(cfg.Browser.Headless, cfg.Browser.Timeout, cfg.Browser.SettleDelay)
	if err != nil {
		log.Fatalf("Failed to start portal driver: %v", err)
	}
	defer func() {
		if err := driver.Close(); err != nil {
			log.Printf("Portal driver close error: %v", err)
		}
	}()

	// Initialize services
	purchaseService := service.NewPurchaseService(cfg, driver)

	// Initialize HTTP server
	server := http.NewServer(cfg, http.NewHandler(purchaseService))

	httpServer := &nethttp.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: server.Handler(),
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// In-flight purchases hold browser sessions for tens of seconds; give
	// them the full per-operation timeout to finish.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Browser.Timeout+10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server exited")
}
