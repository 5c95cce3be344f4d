package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/memovault/memovault/internal/api"
	"github.com/memovault/memovault/internal/config"
	"github.com/memovault/memovault/internal/platform/factory"
	"github.com/memovault/memovault/internal/platform/logger"
	"github.com/memovault/memovault/internal/service"
)

func main() {
	// Optional store-driver flag override (jsonfile | sqlite)
	storeDriver := flag.String("store-driver", "", "Override STORE_DRIVER (jsonfile, sqlite)")
	flag.Parse()

	log := logger.New("memovault-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *storeDriver != "" {
		cfg.StoreDriver = *storeDriver
		if err := cfg.ResolveDefaults(); err != nil {
			log.Fatal().Err(err).Msg("Invalid store-driver override")
		}
	}

	log.Info().
		Str("store_driver", cfg.StoreDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Memo service starting")

	st, err := factory.NewStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Memo store unavailable")
	}
	defer func() { _ = st.Close() }()

	router := api.NewRouter(service.New(st))
	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
