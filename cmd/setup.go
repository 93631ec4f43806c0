package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the config file when missing, initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupCheck validates the configuration and reports which services are ready.
func (r *Runner) SetupCheck(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	r.writePlainHeader("Configuration")
	r.writePlain("Database: %s\n", r.config.Database.Path)
	r.writePlain("Export: batch %d, min match rate %.0f%%, description limit %d\n",
		r.config.Export.BatchSize, r.config.Export.MinMatchRate, r.config.Export.DescriptionLimit)
	r.writePlain("Search: %.1f req/s, %d retries\n", r.config.Search.RateLimit, r.config.Search.MaxRetries)

	if r.catalog == nil {
		r.writePlain("Spotify: not configured\n")
		return nil
	}

	userID, err := r.catalog.CurrentUserID(ctx)
	if err != nil {
		r.writePlain("Spotify: configured, but the account could not be reached (%v)\n", err)
		return nil
	}
	r.writePlain("Spotify: authenticated as %s\n", userID)
	return nil
}
