package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velux/backend/internal/interfaces/http/dto"
)

type addItemBody struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  *int      `json:"quantity" binding:"omitempty,min=1"`
	Note      string    `json:"note" binding:"max=5"`
	Tags      []string  `json:"tags" binding:"omitempty,max=1"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/cart", func(c *gin.Context) {
		var req addItemBody
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func TestHandleValidationError(t *testing.T) {
	router := validationRouter()

	t.Run("reports fields by json name", func(t *testing.T) {
		body := `{"quantity":0,"note":"far too long","tags":["a","b"]}`
		req := httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", "req-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-1", resp.Error.RequestID)

		messages := map[string]string{}
		for _, d := range resp.Error.Details {
			messages[d.Field] = d.Message
		}
		assert.Equal(t, "This field is required", messages["product_id"])
		assert.Equal(t, "Must be at least 1", messages["quantity"])
		assert.Equal(t, "Must be at most 5 characters", messages["note"])
		assert.Equal(t, "Must contain at most 1 items", messages["tags"])
	})

	t.Run("malformed json has no details", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(`{"product_id":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotContains(t, w.Body.String(), `"details"`)
	})

	t.Run("valid body passes", func(t *testing.T) {
		body := `{"product_id":"` + uuid.NewString() + `","quantity":2}`
		req := httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestValidationDetails_NonValidatorError(t *testing.T) {
	assert.Nil(t, ValidationDetails(assert.AnError))
}
