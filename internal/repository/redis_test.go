package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldesk/internal/models"
)

func testRedisRepo(t *testing.T) (*RedisStateRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStateRepository(client, time.Hour), mr
}

func TestRedisStateRoundTrip(t *testing.T) {
	repo, _ := testRedisRepo(t)
	ctx := context.Background()

	got, err := repo.GetState(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	state := models.DefaultViewState("s1")
	state.HidePast = true
	state.Sort = models.SortNewest
	require.NoError(t, repo.SetState(ctx, state))

	got, err = repo.GetState(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.HidePast)
	assert.Equal(t, models.SortNewest, got.Sort)

	require.NoError(t, repo.ClearState(ctx, "s1"))
	got, err = repo.GetState(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStateTTL(t *testing.T) {
	repo, mr := testRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetState(ctx, models.DefaultViewState("s1")))
	mr.FastForward(2 * time.Hour)

	got, err := repo.GetState(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisRateLimit(t *testing.T) {
	repo, mr := testRedisRepo(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := repo.CheckRateLimit(ctx, "s1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := repo.CheckRateLimit(ctx, "s1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(2 * time.Minute)
	allowed, err = repo.CheckRateLimit(ctx, "s1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisCorruptStateIsAnError(t *testing.T) {
	repo, mr := testRedisRepo(t)
	require.NoError(t, mr.Set(stateKey("s1"), "{not json"))

	_, err := repo.GetState(context.Background(), "s1")
	assert.Error(t, err)
}
