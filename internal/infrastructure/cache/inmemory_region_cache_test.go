package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compucar/backend/internal/domain/shipping"
)

func TestInMemoryRegionCache_WilayasRoundTrip(t *testing.T) {
	cache := NewInMemoryRegionCache(time.Hour)
	ctx := context.Background()

	_, ok, err := cache.GetWilayas(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	wilayas := []shipping.Wilaya{
		{ID: 16, Name: "Alger", Deliverable: true},
		{ID: 31, Name: "Oran", Deliverable: true},
	}
	require.NoError(t, cache.SetWilayas(ctx, wilayas))

	got, ok, err := cache.GetWilayas(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, wilayas, got)
}

func TestInMemoryRegionCache_CommunesKeyedByWilaya(t *testing.T) {
	cache := NewInMemoryRegionCache(time.Hour)
	ctx := context.Background()

	require.NoError(t, cache.SetCommunes(ctx, 31, []shipping.Commune{{ID: 3101, Name: "Oran", WilayaID: 31}}))

	_, ok, err := cache.GetCommunes(ctx, 16)
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := cache.GetCommunes(ctx, 31)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, got, 1)
}

func TestInMemoryRegionCache_Expiry(t *testing.T) {
	cache := NewInMemoryRegionCache(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.SetStopdesks(ctx, 16, []shipping.Stopdesk{{ID: 163, Name: "Agence"}}))

	_, ok, err := cache.GetStopdesks(ctx, 16)
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok, err = cache.GetStopdesks(ctx, 16)
	require.NoError(t, err)
	assert.False(t, ok)
}
