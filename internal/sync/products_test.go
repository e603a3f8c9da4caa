package sync

import (
	"errors"
	"testing"
	"time"

	"mirror/internal/models"
	"mirror/internal/woocommerce"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncProductsFull(t *testing.T) {
	products := make([]woocommerce.Product, 250)
	for i := range products {
		products[i] = remoteProduct(int64(100+i), "Gita", "TRIP-211225", "simple")
	}
	client := &fakeClient{products: products}
	service, db := newTestService(t, client, nil)

	result, err := service.SyncProducts(ProductSyncFull, nil)
	require.NoError(t, err)
	assert.Equal(t, 250, result.Products)
	assert.Equal(t, 0, result.Variations)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 250, count)

	// Three pages of 100, requested once each.
	assert.Len(t, client.productPages, 3)
	for _, req := range client.productPages {
		assert.Equal(t, 100, req.perPage)
	}

	// Status filter covers the whole catalog.
	assert.Equal(t, "any", client.productParams[0].Get("status"))

	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", 100).Error)
	require.NotNil(t, product.EventDate)
	assert.Equal(t, time.Date(2025, 12, 21, 0, 0, 0, 0, time.UTC), *product.EventDate)
}

func TestSyncProductsIncrementalFetchesOnePage(t *testing.T) {
	products := make([]woocommerce.Product, 300)
	for i := range products {
		products[i] = remoteProduct(int64(100+i), "Gita", "NODATE", "simple")
	}
	client := &fakeClient{products: products}
	service, db := newTestService(t, client, nil)

	result, err := service.SyncProducts(ProductSyncIncremental, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, result.Products)
	assert.Equal(t, []pageRequest{{page: 1, perPage: 100}}, client.productPages)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 100, count)
}

func TestSyncProductsUpsertPreservesFirstCreation(t *testing.T) {
	original := remoteProduct(42, "Gita a Napoli", "EVT-030825", "simple")
	client := &fakeClient{products: []woocommerce.Product{original}}
	service, db := newTestService(t, client, nil)

	_, err := service.SyncProducts(ProductSyncFull, nil)
	require.NoError(t, err)

	var first models.Product
	require.NoError(t, db.First(&first, "id = ?", 42).Error)

	// The remote rewrites mutable fields and even reports a different
	// creation stamp; only the mutable fields may move.
	updated := original
	updated.Name = "Gita a Napoli e Pompei"
	updated.Price = "59.00"
	updated.Status = "draft"
	updated.DateCreated = woocommerce.Timestamp{Time: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	client.products = []woocommerce.Product{updated}

	_, err = service.SyncProducts(ProductSyncFull, nil)
	require.NoError(t, err)

	var second models.Product
	require.NoError(t, db.First(&second, "id = ?", 42).Error)
	assert.Equal(t, "Gita a Napoli e Pompei", second.Name)
	assert.Equal(t, 59.00, second.Price)
	assert.Equal(t, "draft", second.Status)
	assert.Equal(t, first.RemoteCreatedAt, second.RemoteCreatedAt)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSyncProductsVariations(t *testing.T) {
	stock := 12
	client := &fakeClient{
		products: []woocommerce.Product{
			remoteProduct(1, "Gita variabile", "NODATE", "variable"),
			remoteProduct(2, "Gita semplice", "NODATE", "simple"),
		},
		variations: map[int64][]woocommerce.Variation{
			1: {
				{
					ID:            11,
					SKU:           "VAR-211225",
					Price:         "35.00",
					StockQuantity: &stock,
					StockStatus:   "instock",
					Attributes: []woocommerce.Attribute{
						{Name: "Data viaggio", Option: "3 Agosto 2025"},
						{Name: "Posto", Option: "Finestrino"},
					},
				},
			},
		},
	}
	service, db := newTestService(t, client, nil)

	result, err := service.SyncProducts(ProductSyncFull, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Products)
	assert.Equal(t, 1, result.Variations)

	// Only the variable product triggers a sub-resource fetch.
	assert.Equal(t, []int64{1}, client.variationCalls)

	var variation models.ProductVariation
	require.NoError(t, db.First(&variation, "id = ?", 11).Error)
	assert.EqualValues(t, 1, variation.ProductID)
	assert.Equal(t, "3 Agosto 2025 / Finestrino", variation.Name)
	assert.Equal(t, 35.00, variation.Price)
	require.NotNil(t, variation.StockQuantity)
	assert.Equal(t, 12, *variation.StockQuantity)
	require.Len(t, variation.Attributes, 2)
	assert.Equal(t, "Data viaggio", variation.Attributes[0].Name)

	// Attribute rule wins over the SKU suffix.
	require.NotNil(t, variation.EventDate)
	assert.Equal(t, time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC), *variation.EventDate)
}

func TestSyncProductsVariationFailureIsolated(t *testing.T) {
	client := &fakeClient{
		products: []woocommerce.Product{
			remoteProduct(1, "Gita rotta", "NODATE", "variable"),
			remoteProduct(2, "Gita sana", "NODATE", "variable"),
		},
		variations: map[int64][]woocommerce.Variation{
			2: {{ID: 21, SKU: "VAR-211225", Price: "20.00"}},
		},
		variationErrs: map[int64]error{
			1: errors.New("timeout"),
		},
	}
	service, db := newTestService(t, client, nil)

	result, err := service.SyncProducts(ProductSyncFull, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Products)
	assert.Equal(t, 1, result.Variations)

	var variation models.ProductVariation
	assert.NoError(t, db.First(&variation, "id = ?", 21).Error)
}

func TestSyncProductsFetchFailureIsFatal(t *testing.T) {
	client := &fakeClient{productErr: errors.New("remote unavailable")}
	service, _ := newTestService(t, client, nil)

	_, err := service.SyncProducts(ProductSyncFull, nil)
	assert.Error(t, err)
}
