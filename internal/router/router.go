// Package router wires the HTTP routes to their handlers.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chipin-app/chipin-backend/internal/auth"
	"github.com/chipin-app/chipin-backend/internal/config"
	"github.com/chipin-app/chipin-backend/internal/handler"
	"github.com/chipin-app/chipin-backend/internal/middleware"
	"github.com/chipin-app/chipin-backend/internal/service"
	"github.com/chipin-app/chipin-backend/internal/storage"
	"github.com/chipin-app/chipin-backend/internal/transfer"
)

// Setup configures the gin engine with all API routes.
func Setup(cfg *config.Config, store storage.Store, jwtManager *auth.JWTManager) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	ledgerSvc := service.NewLedgerService(store)
	groupSvc := service.NewGroupService(store, ledgerSvc)
	friendSvc := service.NewFriendService(store, ledgerSvc)
	authenticator := auth.NewPasswordAuthenticator(store)
	attempts := transfer.NewManager()

	authHandler := handler.NewAuthHandler(authenticator, jwtManager, store)
	friendHandler := handler.NewFriendHandler(friendSvc)
	groupHandler := handler.NewGroupHandler(groupSvc, ledgerSvc)
	expenseHandler := handler.NewExpenseHandler(ledgerSvc)
	settlementHandler := handler.NewSettlementHandler(ledgerSvc, attempts, store)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(jwtManager))

	protected.GET("/me", authHandler.Me)
	protected.PUT("/me/wallet", authHandler.UpdateWallet)

	protected.POST("/friends/request", friendHandler.SendRequest)
	protected.GET("/friends/requests", friendHandler.PendingRequests)
	protected.PUT("/friends/requests/:requestId/accept", friendHandler.Accept)
	protected.PUT("/friends/requests/:requestId/reject", friendHandler.Reject)
	protected.GET("/friends", friendHandler.List)
	protected.GET("/friends/:friendId/balance", friendHandler.Balance)
	protected.DELETE("/friends/:friendId", friendHandler.Remove)

	protected.POST("/groups", groupHandler.Create)
	protected.GET("/groups", groupHandler.List)
	protected.GET("/groups/:groupId", groupHandler.Get)
	protected.PUT("/groups/:groupId", groupHandler.Rename)
	protected.POST("/groups/:groupId/members", groupHandler.AddMembers)
	protected.DELETE("/groups/:groupId/members/:memberId", groupHandler.RemoveMember)

	protected.POST("/groups/:groupId/expenses", expenseHandler.Create)
	protected.PUT("/groups/:groupId/expenses/:expenseId", expenseHandler.Update)
	protected.DELETE("/groups/:groupId/expenses/:expenseId", expenseHandler.Delete)
	protected.GET("/groups/:groupId/entries", expenseHandler.Entries)

	protected.GET("/groups/:groupId/balances", groupHandler.Balances)
	protected.GET("/groups/:groupId/balances/:memberId/:otherId", groupHandler.PairwiseBalance)

	protected.GET("/groups/:groupId/settlements/suggested", settlementHandler.Suggested)
	protected.POST("/groups/:groupId/settlements", settlementHandler.Record)
	protected.POST("/groups/:groupId/settlements/attempts", settlementHandler.BeginAttempt)
	protected.PUT("/groups/:groupId/settlements/attempts/:attemptId", settlementHandler.ResolveAttempt)

	return r
}
