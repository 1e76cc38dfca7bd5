package handler

import (
	"github.com/gin-gonic/gin"
	newsletterapp "github.com/velux/backend/internal/application/newsletter"
)

// NewsletterHandler handles the mailing list endpoints
type NewsletterHandler struct {
	BaseHandler
	newsletterService *newsletterapp.Service
}

// NewNewsletterHandler creates a new NewsletterHandler
func NewNewsletterHandler(newsletterService *newsletterapp.Service) *NewsletterHandler {
	return &NewsletterHandler{newsletterService: newsletterService}
}

// Subscribe signs an address up. An address already on the list answers
// 200 with the stored entry instead of 201.
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req newsletterapp.SubscribeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sub, created, err := h.newsletterService.Subscribe(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if created {
		h.Created(c, sub)
		return
	}
	h.Success(c, sub)
}

func (h *NewsletterHandler) List(c *gin.Context) {
	var filter newsletterapp.SubscriptionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.newsletterService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

func (h *NewsletterHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.newsletterService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
