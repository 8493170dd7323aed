package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ReZorDos/TerraWar-sub000/config"
	"github.com/ReZorDos/TerraWar-sub000/handlers"
	"github.com/ReZorDos/TerraWar-sub000/logging"
	"github.com/ReZorDos/TerraWar-sub000/network"
	"github.com/ReZorDos/TerraWar-sub000/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	archive, err := persistence.Open(cfg.DBType, cfg.DatabaseURL, cfg.DBFile)
	if err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	if archive != nil {
		defer archive.Close()
		log.Info("snapshot archive enabled", zap.String("backend", cfg.DBType))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clientManager := handlers.NewClientManager(log)
	coordinator := handlers.NewMatchCoordinator(clientManager, archive, log)
	coordinatorDone := make(chan struct{})
	go func() {
		coordinator.Run(ctx)
		close(coordinatorDone)
	}()

	server := handlers.NewServer(coordinator, clientManager, network.Options{
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Logger:    log,
	}, cfg.MaxLineBytes)

	if cfg.WSAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", server)
		httpServer := &http.Server{Addr: cfg.WSAddr, Handler: mux}
		go func() {
			log.Info("websocket endpoint listening", zap.String("addr", cfg.WSAddr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("websocket endpoint failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			httpServer.Shutdown(shutdownCtx)
		}()
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}

	err = server.Serve(ctx, ln)
	<-coordinatorDone
	log.Info("server shut down")
	return err
}
