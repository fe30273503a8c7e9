// Package storage picks the notes.Store named by STORAGE_DRIVER.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"lumina/internal/clients/file"
	"lumina/internal/clients/mongo"
	"lumina/internal/clients/sqlite"
	"lumina/internal/config"
	"lumina/internal/services/notes"
)

// Backend is a store that can report its health and be released.
type Backend interface {
	notes.Store
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects the configured driver.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (Backend, error) {
	switch cfg.StorageDriver {
	case config.StorageFile, "":
		s, err := file.New(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		log.Info("using file storage", "path", s.Path())
		return fileBackend{s}, nil

	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("using sqlite storage", "path", cfg.SQLitePath)
		return sqliteBackend{sqlite.New(db)}, nil

	case config.StorageMongo:
		_, db, err := mongo.Init(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		s, err := mongo.NewNotesStore(ctx, db)
		if err != nil {
			_ = mongo.Shutdown(ctx)
			return nil, err
		}
		return mongoBackend{s}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

type fileBackend struct{ *file.Store }

func (fileBackend) Close(context.Context) error { return nil }

type sqliteBackend struct{ *sqlite.Store }

func (b sqliteBackend) Close(context.Context) error { return b.Store.Close() }

type mongoBackend struct{ *mongo.NotesStore }

func (mongoBackend) Close(ctx context.Context) error { return mongo.Shutdown(ctx) }
