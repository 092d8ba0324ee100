package handler

import (
	"strings"

	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
	"github.com/bitfantasy/nimo-oil/internal/oil/service"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	svc  *service.InventoryService
	errs errorResponder
}

// List GET /inventory?item_type=MATERIAL&keyword=&in_stock=true
func (h *InventoryHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.List(c.Request.Context(), repository.InventoryListParams{
		ItemType: strings.ToUpper(c.Query("item_type")),
		ItemKey:  c.Query("item_key"),
		Keyword:  c.Query("keyword"),
		InStock:  c.Query("in_stock") == "true",
		Page:     page,
		Size:     pageSize,
	})
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	List(c, items, page, pageSize, total)
}

// ListTransactions GET /inventory/transactions?item_type=&item_key=
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	page, pageSize := GetPagination(c)
	txs, total, err := h.svc.ListTransactions(c.Request.Context(),
		strings.ToUpper(c.Query("item_type")), c.Query("item_key"), page, pageSize)
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	List(c, txs, page, pageSize, total)
}
