package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pairwave/signaling-service/internal/config"
	"github.com/pairwave/signaling-service/internal/database"
	"github.com/pairwave/signaling-service/internal/handler"
	"github.com/pairwave/signaling-service/internal/router"
	"github.com/pairwave/signaling-service/internal/service"
)

// API is the HTTP + WebSocket API application.
type API struct {
	cfg *config.Config
	srv *http.Server
	db  *gorm.DB
	hub *service.SignalHub
}

// NewAPI creates the API application: validates config, runs migrations, opens DB, builds router.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	logger, _ := zap.NewProduction()
	if cfg.AppEnv == "development" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	hub := service.NewSignalHub(cfg.WSMaxMessageSize, cfg.WSSendBuffer, logger)
	sessionSvc := service.NewSessionService(db, logger)
	matchSvc := service.NewMatchService(sessionSvc, logger)

	matchHandler := handler.NewMatchHandler(matchSvc, cfg.WSBaseURL)
	webrtcHandler := handler.NewWebRTCHandler(sessionSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	signalWS := handler.NewSignalWSHandler(hub, matchSvc, logger)
	health := handler.NewHealthHandler()

	r := router.New(matchHandler, webrtcHandler, sessionHandler, signalWS, health)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, srv: srv, db: db, hub: hub}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled; then shuts down gracefully.
func (a *API) Run(ctx context.Context) error {
	addr := a.srv.Addr
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", addr)
	log.Printf("  Health:        %s/health", base)
	log.Printf("  Ready:         %s/ready", base)
	log.Printf("  Match:         %s/match", base)
	log.Printf("  Sessions:      %s/sessions", base)
	log.Printf("  WebSocket:     ws://%s:%s/ws/signal/:user_id", host, a.cfg.HTTPPort)

	go func() {
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
