package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/stockbooks/backend/internal/application/ledger"
	"github.com/stockbooks/backend/internal/domain/ledger"
)

// parseDateTime parses a datetime string in the formats clients send
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// StockHandler exposes the costed inventory ledger over HTTP
type StockHandler struct {
	BaseHandler
	costingService *ledgerapp.CostingService
	agingService   *ledgerapp.AgingService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(costingService *ledgerapp.CostingService, agingService *ledgerapp.AgingService) *StockHandler {
	return &StockHandler{
		costingService: costingService,
		agingService:   agingService,
	}
}

// RegisterRoutes registers stock routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.POST("/receipts", h.Receive)
		stock.POST("/issues", h.Issue)
		stock.POST("/transfers", h.Transfer)
		stock.POST("/opening-balances", h.OpeningBalance)
		stock.GET("/:item_id/:warehouse_id/on-hand", h.OnHand)
		stock.GET("/:item_id/:warehouse_id/card", h.StockCard)
		stock.GET("/:item_id/:warehouse_id/aging", h.Aging)
	}
}

// Receive posts an inbound stock movement
func (h *StockHandler) Receive(c *gin.Context) {
	var req ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "X-User-ID header is required")
		return
	}

	result, err := h.costingService.Receive(c.Request.Context(), ledgerapp.ReceiveCommand{
		ItemID:      uuid.MustParse(req.ItemID),
		WarehouseID: uuid.MustParse(req.WarehouseID),
		Qty:         req.Qty,
		UnitCost:    req.UnitCost,
		RefType:     ledger.RefType(req.RefType),
		RefID:       req.RefID,
		UserID:      userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Issue posts an outbound stock movement
func (h *StockHandler) Issue(c *gin.Context) {
	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "X-User-ID header is required")
		return
	}

	result, err := h.costingService.Issue(c.Request.Context(), ledgerapp.IssueCommand{
		ItemID:      uuid.MustParse(req.ItemID),
		WarehouseID: uuid.MustParse(req.WarehouseID),
		Qty:         req.Qty,
		RefType:     ledger.RefType(req.RefType),
		RefID:       req.RefID,
		UserID:      userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Transfer moves stock between two warehouses under one reference
func (h *StockHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "X-User-ID header is required")
		return
	}

	result, err := h.costingService.Transfer(c.Request.Context(), ledgerapp.TransferCommand{
		ItemID:          uuid.MustParse(req.ItemID),
		FromWarehouseID: uuid.MustParse(req.FromWarehouseID),
		ToWarehouseID:   uuid.MustParse(req.ToWarehouseID),
		Qty:             req.Qty,
		RefID:           req.RefID,
		UserID:          userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// OpeningBalance loads an initial balance for a key
func (h *StockHandler) OpeningBalance(c *gin.Context) {
	var req OpeningBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "X-User-ID header is required")
		return
	}

	result, err := h.costingService.OpeningBalance(c.Request.Context(),
		uuid.MustParse(req.ItemID), uuid.MustParse(req.WarehouseID),
		req.Qty, req.UnitCost, req.RefID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// OnHand returns the latest snapshot for one key
func (h *StockHandler) OnHand(c *gin.Context) {
	var key StockKeyRequest
	if err := c.ShouldBindUri(&key); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	snapshot, err := h.costingService.OnHand(c.Request.Context(),
		uuid.MustParse(key.ItemID), uuid.MustParse(key.WarehouseID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}

// StockCard replays the movement history for one key
func (h *StockHandler) StockCard(c *gin.Context) {
	var key StockKeyRequest
	if err := c.ShouldBindUri(&key); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req StockCardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query := ledgerapp.StockCardQuery{
		ItemID:      uuid.MustParse(key.ItemID),
		WarehouseID: uuid.MustParse(key.WarehouseID),
	}
	if req.From != "" {
		from, err := parseDateTime(req.From)
		if err != nil {
			h.BadRequest(c, "invalid from date")
			return
		}
		query.From = from
	}
	if req.To != "" {
		to, err := parseDateTime(req.To)
		if err != nil {
			h.BadRequest(c, "invalid to date")
			return
		}
		query.To = to
	}

	rows, err := h.costingService.StockCard(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Aging returns the age-bucketed remaining stock for one key
func (h *StockHandler) Aging(c *gin.Context) {
	var key StockKeyRequest
	if err := c.ShouldBindUri(&key); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	report, err := h.agingService.Report(c.Request.Context(),
		uuid.MustParse(key.ItemID), uuid.MustParse(key.WarehouseID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
