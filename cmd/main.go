package main

import (
	"chatroom/auth"
	"chatroom/infrastructure/httpapi"
	"chatroom/infrastructure/ws"
	"chatroom/moderation"
	"chatroom/presence"
	"chatroom/repositories"
	"chatroom/runtime"
	"chatroom/runtime/workers"
	"chatroom/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Returning the error instead of exiting keeps every defer (database close,
// index close) on the shutdown path.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := newLogger(config.LogLevel)

	// 2. Storage (BadgerDB + Bluge index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() { _ = writer.Close() }()

	// 3. Repositories & moderation cache
	identityRepository := repositories.NewIdentityRepository(db)
	messageRepository := repositories.NewMessageRepository(db, writer, log)
	roomConfigRepository := repositories.NewRoomConfigRepository(db)
	wordRepository := repositories.NewSensitiveWordRepository(db)
	blacklistRepository := repositories.NewBlacklistRepository(db)

	cache := moderation.NewCache(log)
	store := moderation.NewStore(wordRepository, identityRepository, blacklistRepository, cache, log)
	if err := store.LoadCache(); err != nil {
		return fmt.Errorf("sensitive word cache loading failed: %w", err)
	}

	// 4. Runtime: presence, bus, chat service
	registry := presence.NewRegistry()
	bus := runtime.NewBus(log)
	chatService := services.NewChatService(
		identityRepository, messageRepository, roomConfigRepository,
		registry, cache, bus, services.DefaultLimits(), log,
	)

	// 5. Context & signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Background workers under supervision
	sup := workers.NewSupervisor(log).
		WithRestartInterval(config.RestartInterval).
		Add(workers.NewSweepWorker(chatService, config.SweepInterval, log)).
		Add(workers.NewTelemetryWorker(bus.Sessions, config.TelemetryEvery, log))
	go sup.Run(ctx)

	// 7. HTTP surface: websocket endpoint + admin API
	router := mux.NewRouter()
	router.Handle("/ws/chat", ws.NewHandler(chatService, bus, log))

	adminRouter := router.PathPrefix("/api/chat").Subrouter()
	adminRouter.Use(auth.Middleware([]byte(config.AdminSecret), log))
	httpapi.NewServer(messageRepository, identityRepository, roomConfigRepository, store, log).Register(adminRouter)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
