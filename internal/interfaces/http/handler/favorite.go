package handler

import (
	"github.com/gin-gonic/gin"
	favoriteapp "github.com/velux/backend/internal/application/favorite"
)

// FavoriteHandler manages the caller's favorite products
type FavoriteHandler struct {
	BaseHandler
	favoriteService *favoriteapp.Service
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(favoriteService *favoriteapp.Service) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

func (h *FavoriteHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	favorites, err := h.favoriteService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, favorites)
}

// Add marks a product as favorite. Adding an existing favorite answers 200
// with the stored entry instead of 201.
func (h *FavoriteHandler) Add(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req favoriteapp.AddFavoriteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	favorite, created, err := h.favoriteService.Add(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if created {
		h.Created(c, favorite)
		return
	}
	h.Success(c, favorite)
}

func (h *FavoriteHandler) Remove(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "product_id")
	if !ok {
		return
	}
	if err := h.favoriteService.Remove(c.Request.Context(), userID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
