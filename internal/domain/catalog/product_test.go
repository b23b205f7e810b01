package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates an active product", func(t *testing.T) {
		p, err := NewProduct("OBD-1", "OBD cable", "KKL 409.1", decimal.NewFromInt(2500), 500, 20, 10, 5)
		require.NoError(t, err)
		assert.True(t, p.IsActive())
		assert.Equal(t, 1, p.GetVersion())
	})

	t.Run("requires positive weight", func(t *testing.T) {
		_, err := NewProduct("OBD-1", "OBD cable", "", decimal.NewFromInt(2500), 0, 20, 10, 5)
		require.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct("OBD-1", "OBD cable", "", decimal.NewFromInt(-1), 500, 20, 10, 5)
		require.Error(t, err)
	})
}

func TestAdjustStock(t *testing.T) {
	p, err := NewProduct("OBD-1", "OBD cable", "", decimal.NewFromInt(2500), 500, 20, 10, 5)
	require.NoError(t, err)

	require.NoError(t, p.AdjustStock(10))
	assert.Equal(t, 10, p.Stock)

	require.NoError(t, p.AdjustStock(-4))
	assert.Equal(t, 6, p.Stock)

	require.Error(t, p.AdjustStock(-7), "stock cannot go negative")
	assert.Equal(t, 6, p.Stock)
}

func TestToCartLineItem(t *testing.T) {
	p, err := NewProduct("OBD-1", "OBD cable", "", decimal.NewFromInt(2500), 500, 20, 10, 5)
	require.NoError(t, err)

	line := p.ToCartLineItem(3)
	assert.Equal(t, "OBD-1", line.SKU)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, 500, line.WeightGr)
	assert.Equal(t, 20.0, line.LengthCm)
}

func TestLifecycle(t *testing.T) {
	p, err := NewProduct("OBD-1", "OBD cable", "", decimal.NewFromInt(2500), 500, 20, 10, 5)
	require.NoError(t, err)

	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive())
	require.Error(t, p.Deactivate())

	require.NoError(t, p.Activate())
	assert.True(t, p.IsActive())
}
