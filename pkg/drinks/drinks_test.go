package drinks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchaLatte() Drink {
	return Drink{
		Title: "Matcha Latte",
		Recipe: Recipe{
			{Name: "milk", Color: "white", Parts: 3},
			{Name: "matcha", Color: "green", Parts: 1},
		},
	}
}

func TestDrinkShort(t *testing.T) {
	d := matchaLatte()
	d.ID = 7

	short := d.Short()
	require.Equal(t, int64(7), short.ID)
	require.Equal(t, "Matcha Latte", short.Title)
	require.Equal(t, []ShortIngredient{
		{Color: "white", Parts: 3},
		{Color: "green", Parts: 1},
	}, short.Recipe)

	// The abbreviated representation must not leak ingredient names
	enc, err := json.Marshal(short)
	require.NoError(t, err)
	assert.NotContains(t, string(enc), "name")
	assert.NotContains(t, string(enc), "milk")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("list empty", func(t *testing.T) {
		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("create assigns IDs", func(t *testing.T) {
		created, err := store.Create(ctx, matchaLatte())
		require.NoError(t, err)
		require.Equal(t, int64(1), created.ID)

		water := Drink{Title: "Water", Recipe: Recipe{{Name: "water", Color: "blue", Parts: 1}}}
		created, err = store.Create(ctx, water)
		require.NoError(t, err)
		require.Equal(t, int64(2), created.ID)
	})

	t.Run("create rejects duplicate titles", func(t *testing.T) {
		_, err := store.Create(ctx, matchaLatte())
		require.ErrorIs(t, err, ErrDuplicateTitle)
	})

	t.Run("get", func(t *testing.T) {
		drink, err := store.Get(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, "Matcha Latte", drink.Title)

		_, err = store.Get(ctx, 100)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list is sorted by ID", func(t *testing.T) {
		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, int64(1), list[0].ID)
		assert.Equal(t, int64(2), list[1].ID)
	})

	t.Run("update", func(t *testing.T) {
		drink, err := store.Get(ctx, 1)
		require.NoError(t, err)
		drink.Title = "Iced Matcha Latte"

		updated, err := store.Update(ctx, drink)
		require.NoError(t, err)
		require.Equal(t, "Iced Matcha Latte", updated.Title)

		drink.ID = 100
		_, err = store.Update(ctx, drink)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update rejects duplicate titles", func(t *testing.T) {
		drink, err := store.Get(ctx, 2)
		require.NoError(t, err)
		drink.Title = "Iced Matcha Latte"
		_, err = store.Update(ctx, drink)
		require.ErrorIs(t, err, ErrDuplicateTitle)
	})

	t.Run("delete", func(t *testing.T) {
		err := store.Delete(ctx, 2)
		require.NoError(t, err)

		err = store.Delete(ctx, 2)
		require.ErrorIs(t, err, ErrNotFound)

		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})
}
