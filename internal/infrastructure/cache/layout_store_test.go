package cache

import (
	"context"
	"testing"

	"github.com/catalogsync/backend/internal/domain/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLayoutStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing layout is nil", func(t *testing.T) {
		store := NewInMemoryLayoutStore()

		got, err := store.Load(ctx, "catalog")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("save load delete", func(t *testing.T) {
		store := NewInMemoryLayoutStore()
		layout := grid.Layout{
			Order:  []string{"sku", "title", "price"},
			Widths: map[string]int{"title": 320},
		}

		require.NoError(t, store.Save(ctx, "catalog", layout))
		got, err := store.Load(ctx, "catalog")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, layout, *got)

		other, err := store.Load(ctx, "synced")
		require.NoError(t, err)
		assert.Nil(t, other, "layouts are per table")

		require.NoError(t, store.Delete(ctx, "catalog"))
		got, err = store.Load(ctx, "catalog")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("stored layout is isolated from callers", func(t *testing.T) {
		store := NewInMemoryLayoutStore()
		layout := grid.Layout{Order: []string{"sku", "title"}, Widths: map[string]int{"sku": 100}}
		require.NoError(t, store.Save(ctx, "catalog", layout))

		layout.Order[0] = "changed"
		layout.Widths["sku"] = 999

		got, err := store.Load(ctx, "catalog")
		require.NoError(t, err)
		assert.Equal(t, "sku", got.Order[0])
		assert.Equal(t, 100, got.Widths["sku"])

		got.Order[1] = "mutated"
		again, err := store.Load(ctx, "catalog")
		require.NoError(t, err)
		assert.Equal(t, "title", again.Order[1])
	})
}
