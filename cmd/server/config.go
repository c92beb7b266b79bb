package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	gormrepo "outpost/internal/adapter/repo/gorm"
	memrepo "outpost/internal/adapter/repo/memory"
	sqliterepo "outpost/internal/adapter/repo/sqlite"
	"outpost/internal/app/ports"
	"outpost/internal/domain/survival"
)

type repos struct {
	backend   string
	snapshots ports.SnapshotRepository
	events    ports.EventRepository
	tx        ports.TxManager
	close     func() error
}

// buildRepos picks postgres when OUTPOST_DB_DSN is set, then sqlite when
// OUTPOST_SQLITE_PATH is set, then memory.
func buildRepos(ctx context.Context) (repos, error) {
	if dsn := stringEnv("OUTPOST_DB_DSN", ""); dsn != "" {
		db, err := gormrepo.OpenPostgres(dsn)
		if err != nil {
			return repos{}, fmt.Errorf("open postgres: %w", err)
		}
		if dir := stringEnv("OUTPOST_MIGRATIONS_DIR", "db/migrations"); dir != "-" {
			if err := gormrepo.ApplyMigrations(ctx, db, dir); err != nil {
				return repos{}, fmt.Errorf("apply migrations: %w", err)
			}
		}
		return repos{
			backend:   "postgres",
			snapshots: gormrepo.NewSnapshotRepo(db),
			events:    gormrepo.NewEventRepo(db),
			tx:        gormrepo.NewTxManager(db),
			close: func() error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}, nil
	}
	if path := stringEnv("OUTPOST_SQLITE_PATH", ""); path != "" {
		db, err := sqliterepo.Open(path)
		if err != nil {
			return repos{}, err
		}
		return repos{
			backend:   "sqlite",
			snapshots: sqliterepo.NewSnapshotRepo(db),
			events:    sqliterepo.NewEventRepo(db),
			tx:        sqliterepo.NewTxManager(db),
			close:     db.Close,
		}, nil
	}
	store := memrepo.NewStore()
	return repos{
		backend:   "memory",
		snapshots: memrepo.NewSnapshotRepo(store),
		events:    memrepo.NewEventRepo(store),
		tx:        memrepo.NewTxManager(store),
		close:     func() error { return nil },
	}, nil
}

func loadTemplates(path string) (survival.Templates, error) {
	if path == "" {
		return survival.DefaultTemplates(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return survival.Templates{}, fmt.Errorf("read templates %s: %w", path, err)
	}
	return survival.ParseTemplates(data)
}

func logLevelEnv(key string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(stringEnv(key, "info"))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func floatEnv(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}
