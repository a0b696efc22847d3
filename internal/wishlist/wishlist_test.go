package wishlist

import (
	"context"
	"testing"

	"github.com/sheon-shop/storefront/internal/catalog"
	"github.com/sheon-shop/storefront/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleIsItsOwnInverse(t *testing.T) {
	ctx := context.Background()
	w := Load(ctx, kv.NewMemory(), StorageKey, nil)
	scarf := catalog.Product{ID: "S", Name: "Scarf", Price: 120}
	require.NoError(t, w.Toggle(ctx, catalog.Product{ID: "T", Name: "Tote"}))
	before := w.Items()

	require.NoError(t, w.Toggle(ctx, scarf))
	assert.True(t, w.Contains("S"))
	require.NoError(t, w.Toggle(ctx, scarf))
	assert.False(t, w.Contains("S"))
	assert.Equal(t, before, w.Items())
}

func TestToggleIgnoresProductWithoutID(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	w := Load(ctx, store, StorageKey, nil)
	require.NoError(t, w.Toggle(ctx, catalog.Product{Name: "ghost"}))
	assert.Empty(t, w.Items())
	_, ok, _ := store.Get(ctx, StorageKey)
	assert.False(t, ok, "nothing written")
}

func TestPersistsUnderOwnKey(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	w := Load(ctx, store, StorageKey, nil)
	require.NoError(t, w.Toggle(ctx, catalog.Product{ID: "A", Name: "Tote", Price: 250}))

	again := Load(ctx, store, StorageKey, nil)
	assert.True(t, again.Contains("A"))

	require.NoError(t, store.Set(ctx, StorageKey, []byte("garbage")))
	assert.Empty(t, Load(ctx, store, StorageKey, nil).Items())
}
