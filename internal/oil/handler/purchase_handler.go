package handler

import (
	"github.com/bitfantasy/nimo-oil/internal/middleware"
	"github.com/bitfantasy/nimo-oil/internal/oil/service"
	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	svc  *service.PurchaseService
	errs errorResponder
}

// Submit POST /purchases
func (h *PurchaseHandler) Submit(c *gin.Context) {
	var req service.SubmitPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := h.svc.Submit(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Created(c, res)
}
