package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/focus/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	if _, err := r.store(); err != nil {
		return err
	}

	statuses, err := shared.Migrations(r.db)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	r.writePlainHeader("Migrations")
	for _, m := range statuses {
		mark := "✗"
		if m.Applied {
			mark = "✓"
		}
		r.writePlain("%s %04d %s\n", mark, m.Version, m.Name)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return nil
}

// SetupConfig writes the configuration template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configFile()
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlain("Set credentials.spotify.client_id and client_secret, then run 'focus spotify auth'\n")
	return nil
}
