package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stockbooks/backend/internal/domain/ledger"
	"github.com/stockbooks/backend/internal/domain/shared"
	"github.com/stockbooks/backend/internal/interfaces/http/dto"
)

// CreateItemRequest is the payload for registering an item
type CreateItemRequest struct {
	SKU           string `json:"sku" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Unit          string `json:"unit" binding:"required"`
	ItemType      string `json:"item_type" binding:"required,oneof=RAW_MATERIAL WIP FINISHED_GOOD CONSUMABLE"`
	CostingMethod string `json:"costing_method" binding:"omitempty,oneof=WEIGHTED_AVG FIFO"`
}

// CreateWarehouseRequest is the payload for registering a warehouse
type CreateWarehouseRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// MasterDataHandler exposes item and warehouse registration over HTTP
type MasterDataHandler struct {
	BaseHandler
	itemRepo      ledger.ItemRepository
	warehouseRepo ledger.WarehouseRepository
}

// NewMasterDataHandler creates a new MasterDataHandler
func NewMasterDataHandler(itemRepo ledger.ItemRepository, warehouseRepo ledger.WarehouseRepository) *MasterDataHandler {
	return &MasterDataHandler{
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
	}
}

// RegisterRoutes registers item and warehouse routes
func (h *MasterDataHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/items")
	{
		items.GET("", h.ListItems)
		items.GET("/:id", h.GetItem)
		items.POST("", h.CreateItem)
	}
	warehouses := rg.Group("/warehouses")
	{
		warehouses.GET("", h.ListWarehouses)
		warehouses.POST("", h.CreateWarehouse)
	}
}

// ListItems returns items matching the filter
func (h *MasterDataHandler) ListItems(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.OrderBy = req.OrderBy
	filter.OrderDir = req.OrderDir
	filter.Search = req.Search

	items, err := h.itemRepo.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.itemRepo.Count(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetItem returns one item by ID
func (h *MasterDataHandler) GetItem(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemRepo.FindByID(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// CreateItem registers a new item with an optional per-item costing override
func (h *MasterDataHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := ledger.NewItem(req.SKU, req.Name, req.Unit, ledger.ItemType(req.ItemType))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if req.CostingMethod != "" {
		if err := item.SetCostingMethod(ledger.CostingMethod(req.CostingMethod)); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if err := h.itemRepo.Save(c.Request.Context(), item); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// ListWarehouses returns warehouses matching the filter
func (h *MasterDataHandler) ListWarehouses(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.OrderBy = req.OrderBy
	filter.OrderDir = req.OrderDir
	filter.Search = req.Search

	warehouses, err := h.warehouseRepo.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warehouses)
}

// CreateWarehouse registers a new warehouse
func (h *MasterDataHandler) CreateWarehouse(c *gin.Context) {
	var req CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	warehouse, err := ledger.NewWarehouse(req.Code, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.warehouseRepo.Save(c.Request.Context(), warehouse); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, warehouse)
}
