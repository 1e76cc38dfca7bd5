package persistence

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velux/backend/internal/domain/cart"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/testutil"
)

func TestGormCartRepository_FindItemForUpdate_LocksOnPostgres(t *testing.T) {
	mock := testutil.NewMockDB(t)
	repo := NewGormCartRepository(mock.DB)

	cartID, productID := uuid.New(), uuid.New()
	mock.Mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE cart_id = \$1 AND product_id = \$2 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity", "price_at_addition"}).
			AddRow(uuid.New(), cartID, productID, 2, "19.90"))

	item, err := repo.FindItemForUpdate(context.Background(), cartID, productID)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, decimal.RequireFromString("19.9").Equal(item.PriceAtAddition))
	mock.ExpectationsWereMet(t)
}

func TestGormCartRepository_FindByUserID_LocksOnPostgres(t *testing.T) {
	mock := testutil.NewMockDB(t)
	repo := NewGormCartRepository(mock.DB)

	userID := uuid.New()
	mock.Mock.ExpectQuery(`SELECT \* FROM "carts" WHERE user_id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(uuid.New(), userID))
	mock.Mock.ExpectQuery(`SELECT \* FROM "cart_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, err := repo.FindByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, c.IsOwnedBy(userID))
	mock.ExpectationsWereMet(t)
}

func TestGormCartRepository_FindItemForUpdate_NotFound(t *testing.T) {
	mock := testutil.NewMockDB(t)
	repo := NewGormCartRepository(mock.DB)

	mock.Mock.ExpectQuery(`SELECT \* FROM "cart_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindItemForUpdate(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, cart.ErrItemNotFound)
	mock.ExpectationsWereMet(t)
}

func TestGormCartRepository_Create_ConflictIsSkipped(t *testing.T) {
	mock := testutil.NewMockDB(t)
	repo := NewGormCartRepository(mock.DB)

	c, err := cart.NewUserCart(uuid.New())
	require.NoError(t, err)

	mock.Mock.ExpectExec(`INSERT INTO "carts" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Create(context.Background(), c)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	mock.ExpectationsWereMet(t)
}

func TestGormCartRepository_SaveItem_DriverError(t *testing.T) {
	mock := testutil.NewMockDB(t)
	repo := NewGormCartRepository(mock.DB)

	item, err := cart.NewCartItem(uuid.New(), uuid.New(), 1, decimal.NewFromInt(5))
	require.NoError(t, err)

	mock.Mock.ExpectExec(`UPDATE "cart_items" SET`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_cart_items_cart_product" (SQLSTATE 23505)`))

	err = repo.SaveItem(context.Background(), item)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	mock.ExpectationsWereMet(t)
}

func TestGormCartRepository_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormCartRepository(db)
	ctx := context.Background()
	product := testutil.SeedProduct(t, db, "Lamp", "40.00")

	guest, err := cart.NewGuestCart(cart.NewSessionKey())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, guest))

	t.Run("anonymous lookup by exact key", func(t *testing.T) {
		found, err := repo.FindAnonymousBySessionKey(ctx, guest.SessionKeyValue())
		require.NoError(t, err)
		assert.Equal(t, guest.ID, found.ID)

		_, err = repo.FindAnonymousBySessionKey(ctx, strings.ToUpper(guest.SessionKeyValue()))
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindAnonymousBySessionKey(ctx, strings.Repeat("k", cart.MaxSessionKeyLength+1))
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindAnonymousBySessionKey(ctx, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate session key", func(t *testing.T) {
		dup, err := cart.NewGuestCart(guest.SessionKeyValue())
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("one cart per user", func(t *testing.T) {
		user := testutil.SeedUser(t, db, "alice", false)
		first, err := cart.NewUserCart(user.ID)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, first))

		second, err := cart.NewUserCart(user.ID)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, second), shared.ErrAlreadyExists)

		found, err := repo.FindByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
	})

	t.Run("lines are unique per product", func(t *testing.T) {
		line, err := cart.NewCartItem(guest.ID, product.ID, 2, product.EffectivePrice())
		require.NoError(t, err)
		require.NoError(t, repo.CreateItem(ctx, line))

		again, err := cart.NewCartItem(guest.ID, product.ID, 1, product.EffectivePrice())
		require.NoError(t, err)
		assert.ErrorIs(t, repo.CreateItem(ctx, again), shared.ErrAlreadyExists)

		locked, err := repo.FindItemForUpdate(ctx, guest.ID, product.ID)
		require.NoError(t, err)
		assert.Equal(t, line.ID, locked.ID)
	})

	t.Run("delete removes lines", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, guest.ID))

		_, err := repo.FindByID(ctx, guest.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindItemForUpdate(ctx, guest.ID, product.ID)
		assert.ErrorIs(t, err, cart.ErrItemNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, guest.ID), shared.ErrNotFound)
	})
}
