// Package mcp runs the tool-invocation server that exposes the memo store to
// AI assistants over the Model Context Protocol.
package mcp

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/memovault/memovault/internal/config"
	"github.com/memovault/memovault/internal/platform/factory"
	"github.com/memovault/memovault/internal/platform/logger"
	"github.com/memovault/memovault/internal/service"
	"github.com/memovault/memovault/mcp/internal/handlers"
)

type toolRegisterer interface {
	RegisterTools(s *server.MCPServer) error
}

func registerHandler(s *server.MCPServer, handler toolRegisterer, name string) {
	if err := handler.RegisterTools(s); err != nil {
		log.Fatal().Err(err).Msgf("Failed to register %s tools", name)
	}
}

// RunMCPServer loads configuration, opens the memo store and serves the memo
// tools over stdio or streamable HTTP.
func RunMCPServer() error {
	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	zerolog.SetGlobalLevel(logger.ParseLevel(cfg.LogLevel))
	log.Logger = logger.New(cfg.ServerName)

	st, err := factory.NewStore(cfg)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to open memo store")
		return err
	}
	defer func() { _ = st.Close() }()
	svc := service.New(st)

	s := server.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		server.WithToolCapabilities(true),
	)

	registerHandler(s, handlers.NewMemoHandler(svc), "memo")
	registerHandler(s, handlers.NewSearchHandler(svc), "search")

	if shouldUseStdio() {
		log.Info().Str("driver", cfg.StoreDriver).Msg("Starting MCP server (stdio transport)")
		if err := server.ServeStdio(s); err != nil {
			log.Fatal().Err(err).Msg("Stdio server error")
		}
		return nil
	}

	log.Info().Int("port", cfg.MCPHTTPPort).Msg("Starting MCP server (streamable HTTP)")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	shutdownComplete := make(chan struct{})

	streamSrv := server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath("/mcp"),
		server.WithHeartbeatInterval(30*time.Second),
	)

	srv := &http.Server{
		Addr:        cfg.MCPAddr(),
		Handler:     streamSrv,
		ReadTimeout: 5 * time.Second,
		// WriteTimeout stays zero: SSE streams must not be cut off.
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		defer close(shutdownComplete)

		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error during HTTP server shutdown")
		}
		if err := streamSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error during MCP server shutdown")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	<-shutdownComplete
	log.Info().Msg("MCP server shutdown complete")
	return nil
}

// shouldUseStdio determines whether to use stdio transport based on environment.
func shouldUseStdio() bool {
	if os.Getenv("MCP_STDIO") == "true" {
		return true
	}
	if os.Getenv("MCP_HTTP") == "true" {
		return false
	}
	// Auto-detect: use stdio when launched by another process.
	if fileInfo, err := os.Stdin.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) == 0
	}
	return false
}
