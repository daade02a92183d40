package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Manifold/internal/domain/models"
	"Manifold/pkg/cache"
	"Manifold/pkg/config"
)

func TestReadingCacheCannotEvictMonitorState(t *testing.T) {
	cfg := &config.Config{}
	remote, err := ProvideRedisCache(cfg)
	require.NoError(t, err)
	require.Nil(t, remote)

	readings := ProvideCache(remote)
	defer readings.Close()
	store := ProvideSnapshotStore(remote, cfg)
	ctx := context.Background()

	key := models.MonitorKey{Symbol: "BTCUSD", Horizon: models.HorizonShort}
	require.NoError(t, store.Save(ctx, key, &models.MonitorState{SnapshotRef: "kept"}))

	for i := 0; i < 3000; i++ {
		require.NoError(t, readings.Set(ctx, cache.GenerateKeyWithParams("reading", i, models.HorizonShort), i, time.Minute))
	}

	st, ok, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "kept", st.SnapshotRef)
}
