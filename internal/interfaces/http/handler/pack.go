package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/velux/backend/internal/application/catalog"
	"github.com/velux/backend/internal/interfaces/http/middleware"
)

// PackHandler handles the service pack endpoints
type PackHandler struct {
	BaseHandler
	packService *catalogapp.PackService
}

// NewPackHandler creates a new PackHandler
func NewPackHandler(packService *catalogapp.PackService) *PackHandler {
	return &PackHandler{packService: packService}
}

// List returns the packs ordered by name. Hidden packs are listed for staff only.
func (h *PackHandler) List(c *gin.Context) {
	var filter catalogapp.PackListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	packs, err := h.packService.List(c.Request.Context(), filter, middleware.IsStaff(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, packs)
}

func (h *PackHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	pack, err := h.packService.GetByID(c.Request.Context(), id, middleware.IsStaff(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pack)
}

func (h *PackHandler) Create(c *gin.Context) {
	var req catalogapp.CreatePackRequest
	if !h.bindJSON(c, &req) {
		return
	}
	pack, err := h.packService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pack)
}

func (h *PackHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdatePackRequest
	if !h.bindJSON(c, &req) {
		return
	}
	pack, err := h.packService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pack)
}

func (h *PackHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.packService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
