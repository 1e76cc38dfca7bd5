package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid inputs", func(t *testing.T) {
		product, err := NewProduct("  Serum  ", decimal.NewFromInt(1990))
		require.NoError(t, err)
		require.NotNil(t, product)

		assert.Equal(t, "Serum", product.Name)
		assert.True(t, product.Available)
		assert.True(t, product.InStock)
		assert.False(t, product.OnSale)
		assert.Empty(t, product.Features)
		assert.NotEqual(t, uuid.Nil, product.ID)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("   ", decimal.NewFromInt(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("fails with negative price", func(t *testing.T) {
		_, err := NewProduct("Serum", decimal.NewFromInt(-1))
		require.Error(t, err)
	})
}

func TestProduct_EffectivePrice(t *testing.T) {
	product, err := NewProduct("Toner", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(product.EffectivePrice()))

	require.NoError(t, product.SetSale(true, decimal.NewFromInt(80)))
	assert.True(t, decimal.NewFromInt(80).Equal(product.EffectivePrice()))

	require.NoError(t, product.SetSale(false, decimal.NewFromInt(80)))
	assert.True(t, decimal.NewFromInt(100).Equal(product.EffectivePrice()))

	err = product.SetSale(true, decimal.Zero)
	require.Error(t, err)
}

func TestProduct_IsPurchasable(t *testing.T) {
	product, err := NewProduct("Mask", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, product.IsPurchasable())

	product.SetAvailability(true, false)
	assert.False(t, product.IsPurchasable())

	product.SetAvailability(false, true)
	assert.False(t, product.IsPurchasable())
}

func TestProduct_SetImage(t *testing.T) {
	product, err := NewProduct("Cream", decimal.NewFromInt(10))
	require.NoError(t, err)

	previous, err := product.SetImage(1, "products/a.jpg")
	require.NoError(t, err)
	assert.Empty(t, previous)

	previous, err = product.SetImage(1, "products/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "products/a.jpg", previous)

	previous, err = product.SetImage(1, "products/b.jpg")
	require.NoError(t, err)
	assert.Empty(t, previous, "same key is not a replacement")

	_, err = product.SetImage(3, "products/c.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"products/b.jpg", "products/c.jpg"}, product.ImageKeyList())

	_, err = product.SetImage(4, "x")
	require.Error(t, err)
}

func TestProduct_SetCategories(t *testing.T) {
	product, err := NewProduct("Cream", decimal.NewFromInt(10))
	require.NoError(t, err)

	a, b := uuid.New(), uuid.New()
	product.SetCategories([]uuid.UUID{a, b, a, uuid.Nil})
	assert.Equal(t, []uuid.UUID{a, b}, product.CategoryIDs)
}

func TestCategory(t *testing.T) {
	category, err := NewCategory(" Skincare ", "")
	require.NoError(t, err)
	assert.Equal(t, "Skincare", category.Name)

	assert.Empty(t, category.SetImage("categories/a.png"))
	assert.Equal(t, "categories/a.png", category.SetImage("categories/b.png"))

	require.Error(t, category.Update("", ""))
}
