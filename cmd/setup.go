package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/newspet/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase writes a config file from the template when none exists,
// then initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else if config, err := shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load created config, using defaults", "error", err)
		} else {
			r.config = config
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	if err := r.open(ctx); err != nil {
		return err
	}

	records, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect database: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s (%d classifiers)\n", r.config.Database.Path, len(records))
}
