package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	acctapp "github.com/stockbooks/backend/internal/application/accounting"
	"github.com/stockbooks/backend/internal/domain/shared"
	"github.com/stockbooks/backend/internal/interfaces/http/dto"
)

// JournalHandler exposes the journal poster over HTTP
type JournalHandler struct {
	BaseHandler
	journalService      *acctapp.JournalService
	trialBalanceService *acctapp.TrialBalanceService
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(journalService *acctapp.JournalService, trialBalanceService *acctapp.TrialBalanceService) *JournalHandler {
	return &JournalHandler{
		journalService:      journalService,
		trialBalanceService: trialBalanceService,
	}
}

// RegisterRoutes registers accounting routes
func (h *JournalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	journals := rg.Group("/journals")
	{
		journals.POST("", h.Post)
		journals.GET("/:id", h.Get)
		journals.POST("/:id/reversal", h.Reverse)
	}
	rg.GET("/trial-balance", h.TrialBalance)
}

// Post validates and persists a balanced journal
func (h *JournalHandler) Post(c *gin.Context) {
	var req PostJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "X-User-ID header is required")
		return
	}

	cmd := acctapp.PostJournalCommand{
		Memo:   req.Memo,
		UserID: userID,
		Lines:  make([]acctapp.JournalLineInput, 0, len(req.Lines)),
	}
	if req.Date != "" {
		date, err := parseDateTime(req.Date)
		if err != nil {
			h.BadRequest(c, "invalid date")
			return
		}
		cmd.Date = date
	}
	for _, line := range req.Lines {
		cmd.Lines = append(cmd.Lines, acctapp.JournalLineInput{
			AccountCode: line.AccountCode,
			Debit:       line.Debit,
			Credit:      line.Credit,
			RefType:     line.RefType,
			RefID:       line.RefID,
		})
	}

	journalID, err := h.journalService.Post(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{"journal_id": journalID})
}

// Get returns a journal with its lines
func (h *JournalHandler) Get(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	journal, err := h.journalService.Get(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, journal)
}

// Reverse posts the offsetting journal for an already-posted journal
func (h *JournalHandler) Reverse(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req ReverseJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "X-User-ID header is required")
		return
	}

	reversalID, err := h.journalService.PostReversal(c.Request.Context(),
		uuid.MustParse(idReq.ID), req.Memo, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{"journal_id": reversalID})
}

// TrialBalance computes the per-account debit/credit summary for a period
func (h *JournalHandler) TrialBalance(c *gin.Context) {
	var req TrialBalanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	from, err := parseDateTime(req.From)
	if err != nil {
		h.BadRequest(c, "invalid from date")
		return
	}
	to, err := parseDateTime(req.To)
	if err != nil {
		h.BadRequest(c, "invalid to date")
		return
	}
	if to.Before(from) {
		h.HandleError(c, shared.NewDomainError("INVALID_INPUT", "to date precedes from date"))
		return
	}

	// Day-granular "to" should include the whole day
	if to.Hour() == 0 && to.Minute() == 0 && to.Second() == 0 {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	report, err := h.trialBalanceService.Report(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
