//go:build e2e

package mongo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lumina/internal/config"
	"lumina/internal/services/notes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startMongoTC(ctx context.Context, t *testing.T) string {
	t.Helper()
	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:8.0",
			ExposedPorts: []string{"27017/tcp"},
			Env: map[string]string{
				"MONGO_INITDB_ROOT_USERNAME": "root",
				"MONGO_INITDB_ROOT_PASSWORD": "example",
			},
			WaitingFor: wait.ForExec([]string{"mongosh", "--eval", "db.adminCommand('ping')"}).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mongoC.Terminate(context.Background()) })

	host, err := mongoC.Host(ctx)
	require.NoError(t, err)
	port, err := mongoC.MappedPort(ctx, "27017")
	require.NoError(t, err)

	return fmt.Sprintf("mongodb://root:example@%s:%s/", host, port.Port())
}

func TestNotesStoreE2E(t *testing.T) {
	ctx := context.Background()
	uri := startMongoTC(ctx, t)

	reset()
	t.Cleanup(func() { _ = Shutdown(context.Background()); reset() })

	_, database, err := Init(ctx, config.Config{MongoURI: uri, MongoDBName: "e2e"}, quietLogger())
	require.NoError(t, err)

	s, err := NewNotesStore(ctx, database)
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))

	list, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	first := []notes.Note{
		{ID: "a", Title: "one", Tags: []string{"x"}, UpdatedAt: 2},
		{ID: "b", Title: "two", Tags: []string{}, UpdatedAt: 1, IsFavorite: true},
	}
	require.NoError(t, s.Save(ctx, first))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := []notes.Note{{ID: "b", Title: "two", Tags: []string{}, UpdatedAt: 1, IsFavorite: true}}
	require.NoError(t, s.Save(ctx, second))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	require.NoError(t, s.Save(ctx, nil))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
