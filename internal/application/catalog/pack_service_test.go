package catalog_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appcatalog "github.com/velux/backend/internal/application/catalog"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/infrastructure/persistence"
	"github.com/velux/backend/internal/testutil"
)

func newPackService(t *testing.T) (*appcatalog.PackService, *fakeStorage) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	storage := &fakeStorage{}
	return appcatalog.NewPackService(persistence.NewGormPackRepository(db), cdnImages{}, storage), storage
}

func TestPackService_ImageReplacementAndDelete(t *testing.T) {
	svc, storage := newPackService(t)
	ctx := context.Background()

	pack, err := svc.Create(ctx, appcatalog.CreatePackRequest{
		Name:     "Chibi sport",
		Kind:     string(catalog.PackKindSport),
		Price:    decimal.NewFromInt(80),
		ImageKey: "packs/old.jpg",
	})
	require.NoError(t, err)

	newKey := "packs/new.jpg"
	updated, err := svc.Update(ctx, pack.ID, appcatalog.UpdatePackRequest{ImageKey: &newKey})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/packs/new.jpg", updated.ImageURL)
	assert.Equal(t, []string{"packs/old.jpg"}, storage.deleted)

	require.NoError(t, svc.Delete(ctx, pack.ID))
	assert.Equal(t, []string{"packs/old.jpg", "packs/new.jpg"}, storage.deleted)

	_, err = svc.GetByID(ctx, pack.ID, true)
	assert.ErrorIs(t, err, catalog.ErrPackNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), catalog.ErrPackNotFound)
}

func TestPackService_UpdateKeepsSaleConsistent(t *testing.T) {
	svc, _ := newPackService(t)
	ctx := context.Background()

	sale := decimal.NewFromInt(50)
	pack, err := svc.Create(ctx, appcatalog.CreatePackRequest{
		Name: "Batidos", Price: decimal.NewFromInt(60), OnSale: true, SalePrice: &sale,
	})
	require.NoError(t, err)
	assert.True(t, sale.Equal(pack.EffectivePrice))

	price := decimal.NewFromInt(70)
	updated, err := svc.Update(ctx, pack.ID, appcatalog.UpdatePackRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, sale.Equal(updated.EffectivePrice), "sale still applies after a list price change")

	zero := decimal.Zero
	_, err = svc.Update(ctx, pack.ID, appcatalog.UpdatePackRequest{SalePrice: &zero})
	assert.Error(t, err, "an active sale needs a sale price")
}
