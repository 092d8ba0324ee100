package handler

import (
	"github.com/bitfantasy/nimo-oil/internal/oil/service"
	"github.com/gin-gonic/gin"
)

type LineageHandler struct {
	svc  *service.LineageService
	errs errorResponder
}

// Inspect GET /lineage/:code
func (h *LineageHandler) Inspect(c *gin.Context) {
	info, err := h.svc.Inspect(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, info)
}
