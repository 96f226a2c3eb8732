// Package main initializes and starts the NoteKeeper HTTP server, setting up
// configuration, logging, database connections, repositories, services,
// handlers and routing.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/NoteKeeper/internal/auth"
	"github.com/atinyakov/NoteKeeper/internal/config"
	"github.com/atinyakov/NoteKeeper/internal/db"
	"github.com/atinyakov/NoteKeeper/internal/logger"
	"github.com/atinyakov/NoteKeeper/internal/repository"
	"github.com/atinyakov/NoteKeeper/internal/server/handler/http"
	"github.com/atinyakov/NoteKeeper/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, file and environment configuration.
	options := config.Parse()
	addr := options.Port

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	if options.JWTSecret == "" {
		zapLogger.Fatal("JWT_SECRET must be set")
	}

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Purge expired refresh-token revocations in the background.
	db.StartRevokedTokenCleaner(context.Background(), postgresDB,
		time.Hour, // interval
		zapLogger,
	)

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	noteRepo := repository.NewPostgresNoteRepository(postgresDB)
	tagRepo := repository.NewPostgresTagRepository(postgresDB)
	accessRepo := repository.NewPostgresAccessRepository(postgresDB)
	tokenRepo := repository.NewPostgresTokenRepository(postgresDB)

	// Initialize token issuance and business-logic services.
	tokenService := auth.NewTokenService(
		options.JWTSecret,
		options.AccessTokenTTL,
		options.RefreshTokenTTL,
		options.RotateRefreshTokens,
		tokenRepo,
	)
	authService := service.NewAuthService(userRepo)
	notesService := service.NewNotesService(noteRepo, tagRepo, accessRepo, zapLogger)
	tagsService := service.NewTagsService(tagRepo)
	accessService := service.NewAccessService(accessRepo, userRepo)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{
		Accounts: authService,
		Tokens:   tokenService,
		Cookie:   options.Cookie,
		Log:      zapLogger,
	}
	notesHandler := &http.NotesHandler{Notes: notesService, Log: zapLogger}
	tagsHandler := &http.TagsHandler{Tags: tagsService, Log: zapLogger}
	accessHandler := &http.AccessHandler{Access: accessService, Log: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, notesHandler, tagsHandler, accessHandler, tokenService, zapLogger)

	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
