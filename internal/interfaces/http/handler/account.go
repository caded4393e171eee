package handler

import (
	"github.com/gin-gonic/gin"
	acctapp "github.com/stockbooks/backend/internal/application/accounting"
	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/shared"
	"github.com/stockbooks/backend/internal/interfaces/http/dto"
)

// CreateAccountRequest is the payload for registering a chart-of-accounts entry
type CreateAccountRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	AccountType string `json:"account_type" binding:"required"`
}

// AccountHandler exposes the chart-of-accounts registry over HTTP
type AccountHandler struct {
	BaseHandler
	accountRepo accounting.AccountRepository
	registry    *acctapp.AccountRegistry
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountRepo accounting.AccountRepository, registry *acctapp.AccountRegistry) *AccountHandler {
	return &AccountHandler{
		accountRepo: accountRepo,
		registry:    registry,
	}
}

// RegisterRoutes registers account routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.List)
		accounts.GET("/:code", h.Get)
		accounts.POST("", h.Create)
	}
}

// List returns accounts matching the filter
func (h *AccountHandler) List(c *gin.Context) {
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
	if accountType := c.Query("account_type"); accountType != "" {
		filter.Filters["account_type"] = accountType
	}

	accounts, err := h.accountRepo.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// Get resolves one account by its code
func (h *AccountHandler) Get(c *gin.Context) {
	account, err := h.registry.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Create registers a new chart-of-accounts entry
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := accounting.NewAccount(req.Code, req.Name, accounting.AccountType(req.AccountType))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.accountRepo.Save(c.Request.Context(), account); err != nil {
		h.HandleError(c, err)
		return
	}
	// drop the cached chart so the new code resolves immediately
	h.registry.Invalidate()
	h.Created(c, account)
}
