// Package mongo keeps the note collection in a MongoDB collection, one
// document per note.
package mongo

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"lumina/internal/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectTimeout = 5 * time.Second
	// a single user never needs more than a handful of connections
	maxPoolSize = 8
)

var (
	// ErrNotInitialized is returned by Shutdown when Init never succeeded.
	ErrNotInitialized = errors.New("mongo client not initialized")
	// ErrShutdown is returned by Shutdown once the client is gone.
	ErrShutdown = errors.New("mongo client already shut down")
)

var (
	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
	closed bool

	drv driver = officialDriver{}
)

func clientOptions(cfg config.Config) *options.ClientOptions {
	return options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout).
		SetMaxPoolSize(maxPoolSize).
		SetRetryWrites(true).
		SetAppName("lumina")
}

// Init connects once and caches the client for the process. Later calls
// return the cached client; a failed attempt is not cached.
func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	mu.Lock()
	defer mu.Unlock()

	if client != nil {
		return client, db, nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	cli, err := drv.Connect(ctx, clientOptions(cfg))
	if err == nil {
		if err = drv.Ping(ctx, cli); err != nil {
			_ = drv.Disconnect(ctx, cli)
		}
	}
	if err != nil {
		log.Error("mongo unavailable", "db", cfg.MongoDBName, "error", err)
		return nil, nil, err
	}

	client, db, closed = cli, cli.Database(cfg.MongoDBName), false
	log.Info("connected to mongo", "db", cfg.MongoDBName)
	return client, db, nil
}

// Client returns the cached client, nil before Init.
func Client() *mongo.Client {
	mu.Lock()
	defer mu.Unlock()
	return client
}

// DB returns the cached database, nil before Init.
func DB() *mongo.Database {
	mu.Lock()
	defer mu.Unlock()
	return db
}

// Shutdown disconnects the cached client. The first call without a client
// reports ErrNotInitialized, every later one ErrShutdown.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if client == nil {
		if closed {
			return ErrShutdown
		}
		closed = true
		return ErrNotInitialized
	}

	ctx, cancel := context.WithTimeout(ctx, disconnectTimeout)
	defer cancel()

	err := drv.Disconnect(ctx, client)
	client, db, closed = nil, nil, true
	return err
}
