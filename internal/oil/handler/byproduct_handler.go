package handler

import (
	"github.com/bitfantasy/nimo-oil/internal/middleware"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
	"github.com/bitfantasy/nimo-oil/internal/oil/service"
	"github.com/gin-gonic/gin"
)

type ByproductHandler struct {
	svc  *service.ByproductService
	errs errorResponder
}

// List GET /byproducts?type=CAKE&batch_id=&available=true
func (h *ByproductHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	lots, total, err := h.svc.List(c.Request.Context(), repository.ByproductListParams{
		ByproductType: c.Query("type"),
		BatchID:       c.Query("batch_id"),
		Available:     c.Query("available") == "true",
		Page:          page,
		Size:          pageSize,
	})
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	List(c, lots, page, pageSize, total)
}

// RecordSale POST /byproducts/:id/sales
func (h *ByproductHandler) RecordSale(c *gin.Context) {
	var req service.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sale, err := h.svc.RecordSale(c.Request.Context(), c.Param("id"), req, middleware.UserID(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Created(c, sale)
}
