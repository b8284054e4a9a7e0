package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chipin-app/chipin-backend/internal/middleware"
	"github.com/chipin-app/chipin-backend/internal/models"
	"github.com/chipin-app/chipin-backend/internal/service"
)

// GroupHandler serves group and balance endpoints.
type GroupHandler struct {
	groups *service.GroupService
	ledger *service.LedgerService
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(groups *service.GroupService, ledgerSvc *service.LedgerService) *GroupHandler {
	return &GroupHandler{groups: groups, ledger: ledgerSvc}
}

type groupResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedBy string   `json:"created_by"`
	CreatedAt int64    `json:"created_at"`
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{
		ID:        g.ID,
		Name:      g.Name,
		Members:   g.Members,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
	}
}

// Create handles POST /api/groups.
func (h *GroupHandler) Create(c *gin.Context) {
	var req struct {
		Name    string   `json:"name" binding:"required"`
		Members []string `json:"members"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), req.Name, middleware.GetUserID(c), req.Members)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": toGroupResponse(group)})
}

// Get handles GET /api/groups/:groupId.
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groups.GetGroup(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": toGroupResponse(group)})
}

// List handles GET /api/groups.
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.ListGroups(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupResponse(g))
	}
	c.JSON(http.StatusOK, gin.H{"groups": out})
}

// Rename handles PUT /api/groups/:groupId.
func (h *GroupHandler) Rename(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groups.RenameGroup(c.Request.Context(), c.Param("groupId"), req.Name, middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": toGroupResponse(group)})
}

// AddMembers handles POST /api/groups/:groupId/members.
func (h *GroupHandler) AddMembers(c *gin.Context) {
	var req struct {
		Members []string `json:"members" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groups.AddMembers(c.Request.Context(), c.Param("groupId"), req.Members, middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": toGroupResponse(group)})
}

// RemoveMember handles DELETE /api/groups/:groupId/members/:memberId.
// Removal is refused while the member holds a nonzero balance.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	err := h.groups.RemoveMember(c.Request.Context(), c.Param("groupId"), c.Param("memberId"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// Balances handles GET /api/groups/:groupId/balances: the net per member,
// derived from the full entry history on every read.
func (h *GroupHandler) Balances(c *gin.Context) {
	net, err := h.ledger.NetBalances(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	balances := make(map[string]string, len(net))
	for member, amount := range net {
		balances[member] = amount.String()
	}
	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

// PairwiseBalance handles GET /api/groups/:groupId/balances/:memberId/:otherId.
// Positive means otherId owes memberId.
func (h *GroupHandler) PairwiseBalance(c *gin.Context) {
	balance, err := h.ledger.PairwiseBalance(
		c.Request.Context(),
		c.Param("groupId"),
		c.Param("memberId"),
		c.Param("otherId"),
		middleware.GetUserID(c),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance.String()})
}
