package review_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appreview "github.com/velux/backend/internal/application/review"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/review"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/persistence"
	"github.com/velux/backend/internal/testutil"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*appreview.Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return appreview.NewService(persistence.NewGormReviewRepository(db), persistence.NewGormProductRepository(db)), db
}

func TestService_CreateAndList(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	author := testutil.SeedUser(t, db, "author", false)
	serum := testutil.SeedProduct(t, db, "Serum", "20")
	other := testutil.SeedProduct(t, db, "Cream", "30")
	viewer := appreview.Viewer{UserID: author.ID}

	created, err := svc.Create(ctx, viewer, appreview.CreateReviewRequest{ProductID: serum.ID, Comment: "Lovely"})
	require.NoError(t, err)
	assert.Equal(t, author.ID, created.UserID)
	assert.Equal(t, review.DefaultRating, created.Rating)
	assert.True(t, created.Visible)

	_, err = svc.Create(ctx, viewer, appreview.CreateReviewRequest{ProductID: other.ID, Comment: "Meh", Rating: 2})
	require.NoError(t, err)

	all, err := svc.List(ctx, appreview.Viewer{}, appreview.ReviewListFilter{PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	byProduct, err := svc.List(ctx, appreview.Viewer{}, appreview.ReviewListFilter{ProductID: serum.ID.String()})
	require.NoError(t, err)
	require.Len(t, byProduct.Items, 1)
	assert.Equal(t, "Lovely", byProduct.Items[0].Comment)

	byRating, err := svc.List(ctx, appreview.Viewer{}, appreview.ReviewListFilter{Rating: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 1, byRating.Total)

	ordered, err := svc.List(ctx, appreview.Viewer{}, appreview.ReviewListFilter{Ordering: "rating"})
	require.NoError(t, err)
	require.Len(t, ordered.Items, 2)
	assert.Equal(t, 2, ordered.Items[0].Rating)
}

func TestService_Create_Rejections(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	author := testutil.SeedUser(t, db, "author", false)
	serum := testutil.SeedProduct(t, db, "Serum", "20")
	viewer := appreview.Viewer{UserID: author.ID}

	_, err := svc.Create(ctx, viewer, appreview.CreateReviewRequest{ProductID: uuid.New(), Comment: "Lost"})
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	_, err = svc.Create(ctx, viewer, appreview.CreateReviewRequest{ProductID: serum.ID, Comment: "Twice"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, viewer, appreview.CreateReviewRequest{ProductID: serum.ID, Comment: "Twice"})
	assert.ErrorIs(t, err, review.ErrDuplicateReview)
}

func TestService_Permissions(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	author := testutil.SeedUser(t, db, "author", false)
	stranger := testutil.SeedUser(t, db, "stranger", false)
	staff := testutil.SeedUser(t, db, "staff", true)
	serum := testutil.SeedProduct(t, db, "Serum", "20")

	authorView := appreview.Viewer{UserID: author.ID}
	strangerView := appreview.Viewer{UserID: stranger.ID}
	staffView := appreview.Viewer{UserID: staff.ID, IsStaff: true}

	r, err := svc.Create(ctx, authorView, appreview.CreateReviewRequest{ProductID: serum.ID, Comment: "Good", Rating: 4})
	require.NoError(t, err)

	comment := "Hijacked"
	_, err = svc.Update(ctx, strangerView, r.ID, appreview.UpdateReviewRequest{Comment: &comment})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, strangerView, r.ID), shared.ErrForbidden)

	rating := 5
	updated, err := svc.Update(ctx, authorView, r.ID, appreview.UpdateReviewRequest{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "Good", updated.Comment)

	hide := false
	_, err = svc.Update(ctx, authorView, r.ID, appreview.UpdateReviewRequest{Visible: &hide})
	assert.ErrorIs(t, err, shared.ErrForbidden, "authors cannot moderate")

	hidden, err := svc.Update(ctx, staffView, r.ID, appreview.UpdateReviewRequest{Visible: &hide})
	require.NoError(t, err)
	assert.False(t, hidden.Visible)

	public, err := svc.List(ctx, strangerView, appreview.ReviewListFilter{})
	require.NoError(t, err)
	assert.Zero(t, public.Total)
	moderated, err := svc.List(ctx, staffView, appreview.ReviewListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, moderated.Total)

	_, err = svc.GetByID(ctx, strangerView, r.ID)
	assert.ErrorIs(t, err, review.ErrReviewNotFound)
	_, err = svc.GetByID(ctx, authorView, r.ID)
	assert.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, staffView, r.ID))
	assert.ErrorIs(t, svc.Delete(ctx, staffView, r.ID), review.ErrReviewNotFound)
}
