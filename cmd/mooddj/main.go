// Command mooddj runs the Mood DJ playlist generator web application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/mooddj/mooddj/internal/auth"
	"github.com/mooddj/mooddj/internal/config"
	"github.com/mooddj/mooddj/internal/db"
	"github.com/mooddj/mooddj/internal/logging"
	"github.com/mooddj/mooddj/internal/oracle"
	"github.com/mooddj/mooddj/internal/playlist"
	"github.com/mooddj/mooddj/internal/spotify"
	"github.com/mooddj/mooddj/internal/web"
	webfs "github.com/mooddj/mooddj/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is a convenience for local runs, not a requirement.
	_ = godotenv.Load()

	logger := logging.FromEnv()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var store auth.TokenStore
	if cfg.DatabaseURL != "" {
		ctx := context.Background()
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		if err := database.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("preparing database schema: %w", err)
		}
		store = database.Tokens()
		logger.Info().Msg("using postgres token store")
	} else {
		store = auth.NewFileTokenStore(auth.DefaultCacheDir)
		logger.Info().Str("dir", auth.DefaultCacheDir).Msg("using file token store")
	}

	authenticator := auth.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.RedirectURI, store, logger)
	oracleClient := oracle.NewClient(cfg.GroqAPIKey, logger)
	source := spotify.NewSource(authenticator)
	resolver := playlist.NewResolver(source, logger)
	publisher := playlist.NewPublisher(source, logger)

	handlers := web.NewHandlers(authenticator, oracleClient, resolver, publisher, cfg.RedirectURI, logger)
	server := web.NewServer(web.ServerConfig{
		Addr:     cfg.Addr,
		StaticFS: webfs.StaticFS(),
	}, handlers, logger)

	return server.Run()
}
