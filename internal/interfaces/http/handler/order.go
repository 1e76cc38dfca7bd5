package handler

import (
	"github.com/gin-gonic/gin"
	orderapp "github.com/velux/backend/internal/application/order"
	"github.com/velux/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order placement and history
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// viewer returns the caller; staff see every order
func (h *OrderHandler) viewer(c *gin.Context) (orderapp.Viewer, bool) {
	userID, ok := h.currentUser(c)
	if !ok {
		return orderapp.Viewer{}, false
	}
	return orderapp.Viewer{UserID: userID, IsStaff: middleware.IsStaff(c)}, true
}

// Create places an order for explicit products at their current price
func (h *OrderHandler) Create(c *gin.Context) {
	buyerID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req orderapp.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.Create(c.Request.Context(), buyerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Checkout turns the caller's cart into an order and empties the cart
func (h *OrderHandler) Checkout(c *gin.Context) {
	buyerID, ok := h.currentUser(c)
	if !ok {
		return
	}
	order, err := h.orderService.Checkout(c.Request.Context(), buyerID, c.GetHeader(middleware.SessionKeyHeader))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	var filter orderapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.orderService.List(c.Request.Context(), viewer, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetByID(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Items returns the lines of one order
func (h *OrderHandler) Items(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.orderService.Items(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
