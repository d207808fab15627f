package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/books-engine/ledger"
)

func TestStore_LoadBeforeSave(t *testing.T) {
	_, found, err := New().Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_SaveIsolatesCaller(t *testing.T) {
	ctx := context.Background()
	s := New()

	data := ledger.Empty()
	data.Products = append(data.Products, ledger.Product{ID: "p", Quantity: decimal.NewFromInt(3)})
	require.NoError(t, s.Save(ctx, data))

	// WHEN: The caller mutates its slice after saving
	data.Products[0].ID = "changed"

	loaded, found, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "p", loaded.Products[0].ID)

	// AND: Mutating a loaded copy does not reach the store
	loaded.Products[0].ID = "again"
	reloaded, _, _ := s.Load(ctx)
	assert.Equal(t, "p", reloaded.Products[0].ID)
	assert.Equal(t, 1, s.Saves())
}

func TestSeeded(t *testing.T) {
	s := Seeded(ledger.Empty())
	_, found, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 0, s.Saves())
}
