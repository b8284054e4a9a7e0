package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chipin-app/chipin-backend/internal/middleware"
	"github.com/chipin-app/chipin-backend/internal/service"
)

// FriendHandler serves friend connection endpoints.
type FriendHandler struct {
	friends *service.FriendService
}

// NewFriendHandler creates a FriendHandler.
func NewFriendHandler(friends *service.FriendService) *FriendHandler {
	return &FriendHandler{friends: friends}
}

// SendRequest handles POST /api/friends/request.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.friends.SendRequest(c.Request.Context(), middleware.GetUserID(c), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request_id": request.ID, "status": request.Status})
}

// Accept handles PUT /api/friends/requests/:requestId/accept.
func (h *FriendHandler) Accept(c *gin.Context) {
	err := h.friends.AcceptRequest(c.Request.Context(), c.Param("requestId"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// Reject handles PUT /api/friends/requests/:requestId/reject.
func (h *FriendHandler) Reject(c *gin.Context) {
	err := h.friends.RejectRequest(c.Request.Context(), c.Param("requestId"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// PendingRequests handles GET /api/friends/requests.
func (h *FriendHandler) PendingRequests(c *gin.Context) {
	requests, err := h.friends.PendingRequests(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	type requestResponse struct {
		ID         string `json:"id"`
		FromUserID string `json:"from_user_id"`
		CreatedAt  int64  `json:"created_at"`
	}
	out := make([]requestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, requestResponse{ID: r.ID, FromUserID: r.FromUserID, CreatedAt: r.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"requests": out})
}

// List handles GET /api/friends: every friend with the balance across all
// shared groups. Positive balance means the friend owes you.
func (h *FriendHandler) List(c *gin.Context) {
	summaries, err := h.friends.ListFriends(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	type friendResponse struct {
		User    userResponse `json:"user"`
		Balance string       `json:"balance"`
	}
	out := make([]friendResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, friendResponse{User: toUserResponse(s.User), Balance: s.Balance.String()})
	}
	c.JSON(http.StatusOK, gin.H{"friends": out})
}

// Balance handles GET /api/friends/:friendId/balance.
func (h *FriendHandler) Balance(c *gin.Context) {
	balance, err := h.friends.FriendBalance(c.Request.Context(), middleware.GetUserID(c), c.Param("friendId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance.String()})
}

// Remove handles DELETE /api/friends/:friendId.
func (h *FriendHandler) Remove(c *gin.Context) {
	err := h.friends.RemoveFriend(c.Request.Context(), middleware.GetUserID(c), c.Param("friendId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
