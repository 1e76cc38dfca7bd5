package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	cartapp "github.com/velux/backend/internal/application/cart"
	"github.com/velux/backend/internal/interfaces/http/dto"
	"github.com/velux/backend/internal/interfaces/http/middleware"
)

// CartHandler serves the shopping cart for guests and signed-in users.
// Guests are identified by the X-Session-Key header; the key to use next is
// echoed back on every guest response.
type CartHandler struct {
	BaseHandler
	cartService *cartapp.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get returns the caller's cart, creating it when needed
func (h *CartHandler) Get(c *gin.Context) {
	result, err := h.cartService.Get(c.Request.Context(), principal(c), sessionKey(c))
	h.respond(c, http.StatusOK, result, err)
}

// AddItem adds a product to the cart or increases its quantity
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cartapp.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.cartService.AddItem(c.Request.Context(), principal(c), sessionKey(c), req)
	h.respond(c, http.StatusCreated, result, err)
}

// UpdateItem sets the quantity of a line; zero removes it
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req cartapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.cartService.UpdateItem(c.Request.Context(), principal(c), sessionKey(c), req)
	h.respond(c, http.StatusOK, result, err)
}

// RemoveItem deletes a line from the cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req cartapp.RemoveItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.cartService.RemoveItem(c.Request.Context(), principal(c), sessionKey(c), req)
	h.respond(c, http.StatusOK, result, err)
}

// Clear empties an existing cart. Guest carts get a fresh session key.
func (h *CartHandler) Clear(c *gin.Context) {
	result, err := h.cartService.Clear(c.Request.Context(), principal(c), sessionKey(c))
	h.respond(c, http.StatusOK, result, err)
}

func (h *CartHandler) respond(c *gin.Context, status int, result *cartapp.Result, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.SessionKey != "" {
		c.Header(middleware.SessionKeyHeader, result.SessionKey)
	}
	c.JSON(status, dto.NewSuccessResponse(result.Cart))
}

func principal(c *gin.Context) cartapp.Principal {
	if userID, ok := middleware.GetUserUUID(c); ok {
		return cartapp.Authenticated(userID)
	}
	return cartapp.Anonymous()
}

func sessionKey(c *gin.Context) string {
	return c.GetHeader(middleware.SessionKeyHeader)
}
