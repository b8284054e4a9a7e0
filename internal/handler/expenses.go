package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chipin-app/chipin-backend/internal/middleware"
	"github.com/chipin-app/chipin-backend/internal/models"
	"github.com/chipin-app/chipin-backend/internal/money"
	"github.com/chipin-app/chipin-backend/internal/service"
)

// ExpenseHandler serves expense recording and the group activity feed.
type ExpenseHandler struct {
	ledger *service.LedgerService
}

// NewExpenseHandler creates an ExpenseHandler.
func NewExpenseHandler(ledgerSvc *service.LedgerService) *ExpenseHandler {
	return &ExpenseHandler{ledger: ledgerSvc}
}

// expenseRequest mirrors the mobile client's add-expense payload: who paid,
// how much, and who splits it. Amounts travel as decimal strings.
type expenseRequest struct {
	Title        string   `json:"expense_title" binding:"required"`
	Amount       string   `json:"amount" binding:"required"`
	PaidBy       string   `json:"paid_by" binding:"required"`
	SplitBetween []string `json:"split_between" binding:"required,min=1"`
}

type expenseResponse struct {
	ID           string   `json:"id"`
	GroupID      string   `json:"group_id"`
	Title        string   `json:"expense_title"`
	Amount       string   `json:"amount"`
	PaidBy       string   `json:"paid_by"`
	SplitBetween []string `json:"split_between"`
	Tombstoned   bool     `json:"tombstoned,omitempty"`
	Replaces     string   `json:"replaces,omitempty"`
	CreatedAt    int64    `json:"created_at"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	return expenseResponse{
		ID:           e.ID,
		GroupID:      e.GroupID,
		Title:        e.Title,
		Amount:       e.Amount.String(),
		PaidBy:       e.PayerID,
		SplitBetween: e.Participants,
		Tombstoned:   e.Tombstoned,
		Replaces:     e.Replaces,
		CreatedAt:    e.CreatedAt,
	}
}

func (h *ExpenseHandler) parseInput(c *gin.Context) (service.AddExpenseInput, bool) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.AddExpenseInput{}, false
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.AddExpenseInput{}, false
	}

	return service.AddExpenseInput{
		GroupID:      c.Param("groupId"),
		Title:        req.Title,
		PayerID:      req.PaidBy,
		Amount:       amount,
		Participants: req.SplitBetween,
		ActorID:      middleware.GetUserID(c),
	}, true
}

// Create handles POST /api/groups/:groupId/expenses.
func (h *ExpenseHandler) Create(c *gin.Context) {
	in, ok := h.parseInput(c)
	if !ok {
		return
	}

	expense, err := h.ledger.AddExpense(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"expense": toExpenseResponse(expense)})
}

// Update handles PUT /api/groups/:groupId/expenses/:expenseId. The old
// entry is tombstoned and a corrected one recorded; history is preserved.
func (h *ExpenseHandler) Update(c *gin.Context) {
	in, ok := h.parseInput(c)
	if !ok {
		return
	}

	expense, err := h.ledger.EditExpense(c.Request.Context(), c.Param("expenseId"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": toExpenseResponse(expense)})
}

// Delete handles DELETE /api/groups/:groupId/expenses/:expenseId.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	err := h.ledger.RemoveExpense(c.Request.Context(), c.Param("groupId"), c.Param("expenseId"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "retracted"})
}

// Entries handles GET /api/groups/:groupId/entries: the full activity feed
// of expenses and payments, newest first, tombstones included.
func (h *ExpenseHandler) Entries(c *gin.Context) {
	feed, err := h.ledger.Entries(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	type entryResponse struct {
		Kind    string           `json:"kind"`
		Expense *expenseResponse `json:"expense,omitempty"`
		Payment *paymentResponse `json:"payment,omitempty"`
	}
	out := make([]entryResponse, 0, len(feed))
	for _, activity := range feed {
		switch {
		case activity.Expense != nil:
			e := toExpenseResponse(activity.Expense)
			out = append(out, entryResponse{Kind: "expense", Expense: &e})
		case activity.Payment != nil:
			p := toPaymentResponse(activity.Payment)
			out = append(out, entryResponse{Kind: "payment", Payment: &p})
		}
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}
