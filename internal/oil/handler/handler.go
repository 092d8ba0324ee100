package handler

import (
	"errors"
	"math"
	"strconv"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
	"github.com/bitfantasy/nimo-oil/internal/oil/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Business codes. The HTTP status is code / 100.
const (
	CodeBadRequest        = 40000
	CodeValidation        = 40001
	CodeParse             = 40002
	CodeNotFound          = 40400
	CodeInsufficientStock = 40901
	CodeDuplicate         = 40902
	CodeReferenceData     = 42201
	CodeInvalidConfig     = 42202
	CodeInternal          = 50000
	CodeLineageCollision  = 50002
)

// Handlers groups the oil handlers.
type Handlers struct {
	Purchase  *PurchaseHandler
	Batch     *BatchHandler
	Blend     *BlendHandler
	Byproduct *ByproductHandler
	Inventory *InventoryHandler
	Lineage   *LineageHandler
}

func NewHandlers(svc *service.Services, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := errorResponder{logger: logger}
	return &Handlers{
		Purchase:  &PurchaseHandler{svc: svc.Purchase, errs: e},
		Batch:     &BatchHandler{svc: svc.Batch, errs: e},
		Blend:     &BlendHandler{svc: svc.Blend, errs: e},
		Byproduct: &ByproductHandler{svc: svc.Byproduct, errs: e},
		Inventory: &InventoryHandler{svc: svc.Inventory, errs: e},
		Lineage:   &LineageHandler{svc: svc.Lineage, errs: e},
	}
}

// Register mounts the oil routes on g, normally /api/v1/oil.
func (h *Handlers) Register(g *gin.RouterGroup) {
	g.POST("/purchases", h.Purchase.Submit)

	g.POST("/batches", h.Batch.Submit)
	g.GET("/batches/:id", h.Batch.Get)

	g.POST("/blends", h.Blend.Submit)

	g.GET("/byproducts", h.Byproduct.List)
	g.POST("/byproducts/:id/sales", h.Byproduct.RecordSale)

	g.GET("/inventory", h.Inventory.List)
	g.GET("/inventory/transactions", h.Inventory.ListTransactions)

	g.GET("/lineage/:code", h.Lineage.Inspect)
}

// Response is the common envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{Code: 0, Message: "success", Data: data})
}

func List(c *gin.Context, items interface{}, page, pageSize int, total int64) {
	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	})
}

// Error writes an error envelope; the HTTP status is derived from code.
func Error(c *gin.Context, code int, message string, detail interface{}) {
	status := code / 100
	if status < 100 || status > 599 {
		status = 500
	}
	c.JSON(status, Response{Code: code, Message: message, Data: detail})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, CodeBadRequest, message, nil)
}

// GetPagination reads page and page_size.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page, pageSize = 1, 20
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 200 {
			pageSize = v
		}
	}
	return page, pageSize
}

type errorResponder struct {
	logger *zap.Logger
}

// respond maps a service error onto the envelope.
func (e errorResponder) respond(c *gin.Context, err error) {
	var (
		verr   *apperr.ValidationError
		perr   *apperr.ParseError
		cfgErr *apperr.InvalidConfigurationError
		rerr   *apperr.ReferenceDataError
		serr   *apperr.InsufficientStockError
		cerr   *apperr.CollisionError
		derr   *apperr.DuplicateError
	)
	switch {
	case errors.As(err, &verr):
		Error(c, CodeValidation, err.Error(), gin.H{"field": verr.Field})
	case errors.As(err, &perr):
		Error(c, CodeParse, err.Error(), gin.H{"code": perr.Code, "reason": perr.Reason})
	case errors.As(err, &cfgErr):
		Error(c, CodeInvalidConfig, err.Error(), gin.H{"entity": cfgErr.Entity, "id": cfgErr.ID, "field": cfgErr.Field})
	case errors.As(err, &rerr):
		Error(c, CodeReferenceData, err.Error(), gin.H{"entity": rerr.Entity, "id": rerr.ID, "field": rerr.Field})
	case errors.As(err, &serr):
		Error(c, CodeInsufficientStock, err.Error(), gin.H{
			"item_type": serr.ItemType,
			"item_key":  serr.ItemKey,
			"available": serr.Available,
			"requested": serr.Requested,
		})
	case errors.As(err, &derr):
		Error(c, CodeDuplicate, err.Error(), gin.H{"lineage_code": derr.Code, "entity": derr.Entity})
	case errors.As(err, &cerr):
		Error(c, CodeLineageCollision, "lineage code collision", gin.H{"lineage_code": cerr.Code, "entity": cerr.Entity})
	case errors.Is(err, repository.ErrNotFound):
		Error(c, CodeNotFound, err.Error(), nil)
	default:
		e.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		Error(c, CodeInternal, "internal error", nil)
	}
}
