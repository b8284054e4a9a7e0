// Package handler exposes the ChipIn API over HTTP. Handlers parse and
// format JSON; all decisions live in the service layer.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chipin-app/chipin-backend/internal/auth"
	"github.com/chipin-app/chipin-backend/internal/ledger"
	"github.com/chipin-app/chipin-backend/internal/service"
)

// writeError maps domain errors onto HTTP statuses:
// validation 400, auth 401, membership 403, not-found 404, conflict 409.
// Anything unexpected is a 500 and gets logged; the client only sees a
// generic message.
func writeError(c *gin.Context, err error) {
	var (
		validation *ledger.ValidationError
		notFound   *ledger.NotFoundError
		conflict   *ledger.ConflictError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.Is(err, service.ErrNotMember), errors.Is(err, service.ErrNotExpenseOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrMemberHasBalance):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
