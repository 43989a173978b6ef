package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/visitor-pulse/backend/internal/alert"
	"github.com/visitor-pulse/backend/internal/analytics"
	"github.com/visitor-pulse/backend/internal/api"
	"github.com/visitor-pulse/backend/internal/config"
	"github.com/visitor-pulse/backend/internal/ingest"
	"github.com/visitor-pulse/backend/internal/session"
	"github.com/visitor-pulse/backend/internal/store"
	"github.com/visitor-pulse/backend/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if p := os.Getenv("VISITOR_PULSE_PORT"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			cfg.Server.Port = n
		}
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	eventLog := store.NewEventLog(cfg.Analytics.MaxEvents)
	pages := store.NewPageCounter()
	tracker := session.NewTracker()

	hub := ws.NewHub(eventLog, cfg.Hub.ReplayCount, cfg.Hub.ConnectRetryDelay)
	policy := alert.NewPolicy(cfg.Analytics.AlertThreshold, cfg.Analytics.AlertWindow)
	processor := ingest.New(eventLog, pages, tracker, hub, policy)
	aggregator := analytics.New(eventLog, pages, tracker, cfg.Analytics.RecentWindow)

	server := api.NewServer(processor, aggregator, hub, eventLog)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(ctx)
	}()

	log.Printf("Visitor Pulse listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
