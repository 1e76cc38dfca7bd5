package handler

import (
	"github.com/gin-gonic/gin"
	reviewapp "github.com/velux/backend/internal/application/review"
	"github.com/velux/backend/internal/interfaces/http/middleware"
)

// ReviewHandler handles product reviews. Reading is public; hidden reviews
// are only listed for staff.
type ReviewHandler struct {
	BaseHandler
	reviewService *reviewapp.Service
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService *reviewapp.Service) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func reviewViewer(c *gin.Context) reviewapp.Viewer {
	userID, _ := middleware.GetUserUUID(c)
	return reviewapp.Viewer{UserID: userID, IsStaff: middleware.IsStaff(c)}
}

func (h *ReviewHandler) List(c *gin.Context) {
	var filter reviewapp.ReviewListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.reviewService.List(c.Request.Context(), reviewViewer(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

func (h *ReviewHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	review, err := h.reviewService.GetByID(c.Request.Context(), reviewViewer(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

// Create posts a review authored by the caller
func (h *ReviewHandler) Create(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}
	var req reviewapp.CreateReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.Create(c.Request.Context(), reviewViewer(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, review)
}

// Update changes a review; only the author or staff may do so
func (h *ReviewHandler) Update(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req reviewapp.UpdateReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.Update(c.Request.Context(), reviewViewer(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), reviewViewer(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
