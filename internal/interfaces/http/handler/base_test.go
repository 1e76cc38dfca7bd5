package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/testutil"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"domain not found", shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found"), http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"wrapped domain error", fmt.Errorf("load: %w", shared.NewDomainError("INVALID_QUANTITY", "bad")), http.StatusBadRequest, "INVALID_QUANTITY"},
		{"legacy code normalized", shared.NewDomainError("FORBIDDEN", "nope"), http.StatusForbidden, "ERR_FORBIDDEN"},
		{"explicit mapping", shared.NewDomainError("SESSION_KEY_REQUIRED", "missing"), http.StatusBadRequest, "SESSION_KEY_REQUIRED"},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, "ERR_INTERNAL"},
	}

	h := &BaseHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext()
			h.HandleError(c, tt.err)
			testutil.AssertErrorResponse(t, w, tt.status, tt.code)
		})
	}
}

func TestHandleError_HidesInternalDetails(t *testing.T) {
	c, w := newContext()
	(&BaseHandler{}).HandleError(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password authentication")
	assert.Len(t, c.Errors, 1)
}

func TestPage(t *testing.T) {
	c, w := newContext()
	page := shared.NewPaginated([]string{"a", "b"}, 12, 2, 2)
	Page(c, &page)

	assert.Equal(t, http.StatusOK, w.Code)
	body := testutil.JSONResponse(t, w)
	assert.Equal(t, []any{"a", "b"}, body["data"])
	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 12, meta["total"])
	assert.EqualValues(t, 6, meta["total_pages"])
}

func TestPathID(t *testing.T) {
	c, w := newContext()
	c.Params = gin.Params{{Key: "id", Value: "xyz"}}

	_, ok := (&BaseHandler{}).pathID(c, "id")
	assert.False(t, ok)
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "ERR_BAD_REQUEST")
}
