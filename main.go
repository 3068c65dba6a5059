package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/yatube/internal/api"
	"github.com/isdelr/yatube/internal/auth"
	"github.com/isdelr/yatube/internal/config"
	"github.com/isdelr/yatube/internal/database"
	"github.com/isdelr/yatube/internal/logger"
	"github.com/isdelr/yatube/internal/maintenance"
	"github.com/isdelr/yatube/internal/services"
	"github.com/isdelr/yatube/internal/web"
	"github.com/isdelr/yatube/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	if len(os.Args) > 1 && os.Args[1] == "creategroup" {
		if err := createGroup(db, os.Args[2:]); err != nil {
			log.Fatal().Err(err).Msg("Failed to create group")
		}
		return
	}

	rn, err := web.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(db)
	groupService := services.NewGroupService(db)
	postService := services.NewPostService(db)

	// Set up and run the background maintenance scheduler
	scheduler, err := maintenance.NewScheduler(db, cfg.MaintenanceSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up maintenance scheduler")
	}
	scheduler.Run()

	// Set up router
	tokens := auth.NewTokenManager(cfg.JWTSecret)
	router := api.NewRouter(hub, tokens, rn, postService, groupService, userService, api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.IsProduction(),
	})

	// Set up server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  time.Minute,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.Env).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	scheduler.Stop() // Stop the maintenance scheduler

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}

// createGroup handles `yatube creategroup -slug cats -title Cats [-description ...]`.
func createGroup(db *sql.DB, args []string) error {
	fs := flag.NewFlagSet("creategroup", flag.ContinueOnError)
	slug := fs.String("slug", "", "URL slug of the group")
	title := fs.String("title", "", "Group title")
	description := fs.String("description", "", "Optional description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	group, err := services.NewGroupService(db).CreateGroup(*title, *slug, *description)
	if err != nil {
		return err
	}
	log.Info().Int64("id", group.ID).Str("slug", group.Slug).Msg("Group created")
	return nil
}
