package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"

	"chat-engine/auth"
	"chat-engine/domain"
	"chat-engine/infrastructure/ws"
	"chat-engine/moderation"
	"chat-engine/observability"
	"chat-engine/repositories"
	"chat-engine/runtime"
	"chat-engine/runtime/workers"
	"chat-engine/search"
	"chat-engine/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the transport and background workers.
func run() error {
	// 1. Configuration & Logger
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB) - accounts only, chat state is in-memory
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Engine state components
	catalog := domain.NewCatalog(roomCatalog(config.ChatRooms))
	registry := runtime.NewRegistry()
	directory := runtime.NewDirectory(catalog)
	typing := runtime.NewTypingSet()
	stats := observability.NewStats()
	router := runtime.NewRouter(log, registry, directory, typing, stats)

	// 4. Moderation (config-gated)
	if config.ModerationEnabled {
		wordlists, err := runtime.NewWordlistLoader().LoadAll("wordlists")
		if err != nil {
			return fmt.Errorf("loading wordlists: %w", err)
		}
		moderator, err := moderation.NewModerator(wordlists.Words, replacementRune(config.ModerationCharReplacement), log)
		if err != nil {
			return fmt.Errorf("building moderator: %w", err)
		}
		router.WithModeration(&moderator)
		log.Info("Moderation enabled", "languages", wordlists.Languages, "words", len(wordlists.Words))
	}

	// 5. Search index + supervised workers
	index, err := search.NewIndex(log)
	if err != nil {
		return fmt.Errorf("opening search index: %w", err)
	}
	defer func() {
		_ = index.Close()
	}()

	indexQueue := make(chan search.Document, config.IndexBufferSize)
	router.WithSearch(index, indexQueue, config.SearchLimit)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewIndexerWorker(index, indexQueue, log),
		workers.NewHeartbeatWorker(log, stats, config.MetricInterval),
	)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)

	// 7. Auth + transport
	issuer := auth.NewTokenIssuer(config.AuthSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(repositories.NewUserRepository(db), issuer)

	wsConfig := ws.Config{
		AllowedOrigins: splitAndTrim(config.AllowedOrigins),
		SendBufferSize: config.ConnectionBufferSize,
		ReadLimit:      config.ReadLimit,
	}
	server := ws.NewServer(log, wsConfig, router, authService, issuer, stats)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: server.Handler()}

	// Use an error channel to capture ListenAndServe issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting chat server", "address", address, "rooms", catalog.Rooms())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	sup.Stop()
	<-sup.Done()
	log.Info("Program stopped cleanly")

	return nil
}

// roomCatalog applies the CHAT_ROOMS override, falling back to the
// reference deployment's seven rooms.
func roomCatalog(override string) []string {
	rooms := splitAndTrim(override)
	if len(rooms) == 0 {
		return domain.DefaultRooms
	}
	return rooms
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func replacementRune(raw string) rune {
	for _, r := range raw {
		return r
	}
	return '*'
}
