// AngelaMos | 2026
// main.go

package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/codeclash-gg/backend/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	source := flag.String("source", "file://migrations", "migration source")
	down := flag.Int("down", 0, "roll back this many steps instead of migrating up")
	flag.Parse()

	if err := run(*configPath, *source, *down); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, source string, down int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	m, err := migrate.New(source, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	if down > 0 {
		if err := m.Steps(-down); err != nil {
			return fmt.Errorf("roll back %d steps: %w", down, err)
		}
		slog.Info("rolled back", "steps", down)
		return nil
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}

	slog.Info("migrations applied", "version", version, "dirty", dirty)
	return nil
}
