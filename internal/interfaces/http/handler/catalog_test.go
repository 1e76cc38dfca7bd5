package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/velux/backend/internal/application/catalog"
	"github.com/velux/backend/internal/testutil"
)

type pageMeta struct {
	Meta struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	} `json:"meta"`
}

func TestProducts_ListVisibility(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedProduct(t, s.db, "Visible chair", "40.00")
	testutil.SeedProduct(t, s.db, "Hidden chair", "40.00", testutil.Unavailable())
	_, staff := s.login(t, "catalog_admin", true)
	_, customer := s.login(t, "catalog_customer", false)

	tests := []struct {
		name    string
		query   string
		headers map[string]string
		want    int
	}{
		{"anonymous", "", nil, 1},
		{"customer", "", customer, 1},
		{"staff", "", staff, 2},
		{"explicit filter", "?available=false", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/v1/products"+tt.query, nil, tt.headers)
			requireStatus(t, w, http.StatusOK)
			env := testutil.DecodeEnvelope[[]catalogapp.ProductResponse](t, w)
			assert.Len(t, env.Data, tt.want)

			var meta pageMeta
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
			assert.Equal(t, int64(tt.want), meta.Meta.Total)
		})
	}
}

func TestProducts_ListRejectsBadFilters(t *testing.T) {
	s := newTestServer(t)

	for _, query := range []string{"?ordering=colour", "?page_size=500", "?category_id=xyz"} {
		w := s.do(t, http.MethodGet, "/api/v1/products"+query, nil, nil)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "ERR_VALIDATION")
	}

	w := s.do(t, http.MethodGet, "/api/v1/products?min_price=cheap", nil, nil)
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "INVALID_FILTER")
}

func TestProducts_StaffWrites(t *testing.T) {
	s := newTestServer(t)
	_, staff := s.login(t, "writer_admin", true)
	_, customer := s.login(t, "writer_customer", false)
	category := testutil.SeedCategory(t, s.db, "Furniture")

	body := map[string]any{
		"name":         "Oak table",
		"price":        "199.90",
		"features":     []string{"solid oak"},
		"category_ids": []string{category.ID.String()},
	}

	w := s.do(t, http.MethodPost, "/api/v1/products", body, nil)
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "ERR_UNAUTHORIZED")
	w = s.do(t, http.MethodPost, "/api/v1/products", body, customer)
	testutil.AssertErrorResponse(t, w, http.StatusForbidden, "ERR_FORBIDDEN")

	w = s.do(t, http.MethodPost, "/api/v1/products", body, staff)
	requireStatus(t, w, http.StatusCreated)
	created := testutil.DecodeEnvelope[catalogapp.ProductResponse](t, w).Data
	assert.Equal(t, "Oak table", created.Name)
	assert.Equal(t, []string{"solid oak"}, created.Features)
	assert.True(t, created.Available)

	path := "/api/v1/products/" + created.ID.String()
	w = s.do(t, http.MethodPut, path, map[string]any{"on_sale": true, "sale_price": "149.90"}, staff)
	requireStatus(t, w, http.StatusOK)
	updated := testutil.DecodeEnvelope[catalogapp.ProductResponse](t, w).Data
	assert.True(t, decimal.RequireFromString("149.9").Equal(updated.EffectivePrice), "effective %s", updated.EffectivePrice)

	w = s.do(t, http.MethodGet, path, nil, nil)
	requireStatus(t, w, http.StatusOK)

	w = s.do(t, http.MethodPost, path+"/images/upload-url", map[string]any{
		"slot":         1,
		"file_name":    "table.jpg",
		"content_type": "image/jpeg",
	}, staff)
	testutil.AssertErrorResponse(t, w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE")

	w = s.do(t, http.MethodDelete, path, nil, staff)
	requireStatus(t, w, http.StatusNoContent)
	w = s.do(t, http.MethodGet, path, nil, nil)
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, "PRODUCT_NOT_FOUND")

	w = s.do(t, http.MethodGet, "/api/v1/products/not-a-uuid", nil, nil)
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "ERR_BAD_REQUEST")
}

func TestCategories_CRUD(t *testing.T) {
	s := newTestServer(t)
	_, staff := s.login(t, "category_admin", true)

	w := s.do(t, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Kitchen"}, staff)
	requireStatus(t, w, http.StatusCreated)
	created := testutil.DecodeEnvelope[catalogapp.CategoryResponse](t, w).Data

	w = s.do(t, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Kitchen"}, staff)
	testutil.AssertErrorResponse(t, w, http.StatusConflict, "ERR_ALREADY_EXISTS")

	w = s.do(t, http.MethodGet, "/api/v1/categories", nil, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Len(t, testutil.DecodeEnvelope[[]catalogapp.CategoryResponse](t, w).Data, 1)

	path := "/api/v1/categories/" + created.ID.String()
	w = s.do(t, http.MethodPut, path, map[string]any{"description": "Pots and pans"}, staff)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "Pots and pans", testutil.DecodeEnvelope[catalogapp.CategoryResponse](t, w).Data.Description)

	requireStatus(t, s.do(t, http.MethodDelete, path, nil, staff), http.StatusNoContent)
	w = s.do(t, http.MethodGet, path, nil, nil)
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, "CATEGORY_NOT_FOUND")
}
