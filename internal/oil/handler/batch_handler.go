package handler

import (
	"github.com/bitfantasy/nimo-oil/internal/middleware"
	"github.com/bitfantasy/nimo-oil/internal/oil/service"
	"github.com/gin-gonic/gin"
)

type BatchHandler struct {
	svc  *service.BatchService
	errs errorResponder
}

// Submit POST /batches
func (h *BatchHandler) Submit(c *gin.Context) {
	var req service.SubmitBatchRequest
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

// Get GET /batches/:id
func (h *BatchHandler) Get(c *gin.Context) {
	batch, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, batch)
}
