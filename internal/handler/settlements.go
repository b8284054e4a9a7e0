package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chipin-app/chipin-backend/internal/middleware"
	"github.com/chipin-app/chipin-backend/internal/models"
	"github.com/chipin-app/chipin-backend/internal/money"
	"github.com/chipin-app/chipin-backend/internal/service"
	"github.com/chipin-app/chipin-backend/internal/storage"
	"github.com/chipin-app/chipin-backend/internal/transfer"
)

// SettlementHandler serves settlement suggestion, attempt tracking, and
// payment recording. The transfer itself happens in the client's wallet;
// the backend only tracks attempts and records confirmed references.
type SettlementHandler struct {
	ledger   *service.LedgerService
	attempts *transfer.Manager
	store    storage.Store
}

// NewSettlementHandler creates a SettlementHandler.
func NewSettlementHandler(ledgerSvc *service.LedgerService, attempts *transfer.Manager, store storage.Store) *SettlementHandler {
	return &SettlementHandler{ledger: ledgerSvc, attempts: attempts, store: store}
}

type paymentResponse struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	PayerID     string `json:"payer_id"`
	PayeeID     string `json:"payee_id"`
	Amount      string `json:"amount"`
	TransferRef string `json:"transfer_ref"`
	Note        string `json:"note,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

func toPaymentResponse(p *models.Payment) paymentResponse {
	return paymentResponse{
		ID:          p.ID,
		GroupID:     p.GroupID,
		PayerID:     p.PayerID,
		PayeeID:     p.PayeeID,
		Amount:      p.Amount.String(),
		TransferRef: p.TransferRef,
		Note:        p.Note,
		CreatedAt:   p.CreatedAt,
	}
}

// Suggested handles GET /api/groups/:groupId/settlements/suggested: the
// planner's transfer list that would zero out current balances.
func (h *SettlementHandler) Suggested(c *gin.Context) {
	plan, err := h.ledger.SuggestedSettlements(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	type transferResponse struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Amount string `json:"amount"`
	}
	out := make([]transferResponse, 0, len(plan))
	for _, t := range plan {
		out = append(out, transferResponse{From: t.From, To: t.To, Amount: t.Amount.String()})
	}
	c.JSON(http.StatusOK, gin.H{"transfers": out})
}

// Record handles POST /api/groups/:groupId/settlements: a settlement the
// client already executed on-chain, identified by its transfer reference.
// Retrying with the same reference yields 409 and leaves balances unchanged.
func (h *SettlementHandler) Record(c *gin.Context) {
	var req struct {
		PayerID     string `json:"payer_id" binding:"required"`
		PayeeID     string `json:"payee_id" binding:"required"`
		Amount      string `json:"amount" binding:"required"`
		TransferRef string `json:"transfer_ref" binding:"required"`
		Note        string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.ledger.RecordSettlement(c.Request.Context(), service.RecordSettlementInput{
		GroupID:     c.Param("groupId"),
		PayerID:     req.PayerID,
		PayeeID:     req.PayeeID,
		Amount:      amount,
		TransferRef: req.TransferRef,
		Note:        req.Note,
		ActorID:     middleware.GetUserID(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": toPaymentResponse(payment)})
}

// BeginAttempt handles POST /api/groups/:groupId/settlements/attempts:
// registers a pending transfer so its outcome can be reported later. The
// payee's wallet address is resolved server-side.
func (h *SettlementHandler) BeginAttempt(c *gin.Context) {
	var req struct {
		PayeeID string `json:"payee_id" binding:"required"`
		Amount  string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payer, err := h.store.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	payee, err := h.store.GetUserByID(c.Request.Context(), req.PayeeID)
	if err != nil {
		writeError(c, err)
		return
	}

	attempt := h.attempts.Begin(transfer.Request{
		FromAddress: payer.WalletAddress,
		ToAddress:   payee.WalletAddress,
		Amount:      amount,
	})
	c.JSON(http.StatusCreated, gin.H{
		"attempt_id": attempt.ID,
		"status":     attempt.Status,
		"to_address": attempt.Request.ToAddress,
	})
}

// ResolveAttempt handles PUT /api/groups/:groupId/settlements/attempts/:attemptId.
// A confirmed attempt carries the transaction signature and lands in the
// ledger as a payment; a failed one is terminal with no ledger mutation.
func (h *SettlementHandler) ResolveAttempt(c *gin.Context) {
	var req struct {
		Status      string `json:"status" binding:"required"`
		TransferRef string `json:"transfer_ref"`
		Reason      string `json:"reason"`
		PayerID     string `json:"payer_id"`
		PayeeID     string `json:"payee_id"`
		Note        string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attemptID := c.Param("attemptId")
	switch req.Status {
	case string(transfer.StatusFailed):
		if _, err := h.attempts.Fail(attemptID, req.Reason); err != nil {
			writeAttemptError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": transfer.StatusFailed})

	case string(transfer.StatusConfirmed):
		if req.TransferRef == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "transfer_ref required to confirm"})
			return
		}
		attempt, err := h.attempts.Get(attemptID)
		if err != nil {
			writeAttemptError(c, err)
			return
		}
		if attempt.Status != transfer.StatusPending {
			writeAttemptError(c, transfer.ErrAlreadyResolved)
			return
		}

		// Record before confirming: a Confirmed attempt must have its
		// payment in the ledger. If recording fails the attempt stays
		// pending and the client can retry or report it failed.
		payment, err := h.ledger.RecordSettlement(c.Request.Context(), service.RecordSettlementInput{
			GroupID:     c.Param("groupId"),
			PayerID:     req.PayerID,
			PayeeID:     req.PayeeID,
			Amount:      attempt.Request.Amount,
			TransferRef: req.TransferRef,
			Note:        req.Note,
			ActorID:     middleware.GetUserID(c),
		})
		if err != nil {
			writeError(c, err)
			return
		}

		if attempt, err = h.attempts.Confirm(attemptID, req.TransferRef); err != nil {
			writeAttemptError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": transfer.StatusConfirmed, "payment": toPaymentResponse(payment)})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be confirmed or failed"})
	}
}

func writeAttemptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, transfer.ErrAttemptNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, transfer.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		writeError(c, err)
	}
}
