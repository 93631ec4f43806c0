package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/tunesmith/internal/metrics"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)
	m := metrics.New()

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	shared.SetLogLevel(logger, config.LogLevel)

	var catalog services.Catalog
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		opts := services.SpotifyOptionsFromConfig(config.Search)
		opts.Logger = logger
		opts.Metrics = m
		opts.OnTokenRefresh = func(tok *oauth2.Token) {
			if err := config.Credentials.Spotify.Update(tok); err != nil {
				logger.Warn("ignoring refreshed token", "error", err)
				return
			}
			if err := shared.SaveConfig(configPath, config); err != nil {
				logger.Warn("failed to persist refreshed token", "error", err)
			}
		}

		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map(), opts); err == nil {
			catalog = svc
		} else {
			logger.Debug("spotify unavailable", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Catalog:    catalog,
		Logger:     logger,
		Metrics:    m,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "tunesmith",
		Usage:    "Resolve generated playlists against Spotify and export them",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		runner.Close()
		if errors.Is(err, shared.ErrLowMatchRate) {
			logger.Warn("export finished below the match threshold", "error", err)
			os.Exit(2)
		}
		logger.Fatalf("application error: %v", err)
	}
}
