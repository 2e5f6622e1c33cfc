package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestPostgres_KV(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("waiwaier"),
		postgres.WithUsername("waiwaier"),
		postgres.WithPassword("waiwaier"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	p, err := OpenPostgres(ctx, url)
	require.NoError(t, err)
	defer p.Close()

	// schema is re-applied without error
	again, err := OpenPostgres(ctx, url)
	require.NoError(t, err)
	require.NoError(t, again.Close())

	const projectB = "0b7e1f0c-1111-4a2b-9c3d-2e4f6a8b0c1d"
	require.NoError(t, p.Save(ctx, projectA, "settings", "a1"))
	require.NoError(t, p.Save(ctx, projectA, "settings", "a2"))
	require.NoError(t, p.Save(ctx, projectB, "settings", "b1"))

	v, err := p.Load(ctx, projectA, "settings")
	require.NoError(t, err)
	assert.Equal(t, "a2", v)

	require.NoError(t, p.DeleteProject(ctx, projectA))
	_, err = p.Load(ctx, projectA, "settings")
	assert.ErrorIs(t, err, ErrNotFound)
	v, err = p.Load(ctx, projectB, "settings")
	require.NoError(t, err)
	assert.Equal(t, "b1", v)

	require.NoError(t, p.Delete(ctx, projectB, "settings"))
	_, err = p.Load(ctx, projectB, "settings")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, p.Save(ctx, "nope", "k", "v"), ErrInvalidProjectID)
}
