package api

import (
	"errors"
	"net/http"
	"strconv"

	"questlog/internal/service"
	"questlog/pkg/auth"
	"questlog/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrNotAuthenticated, http.StatusUnauthorized},
	{service.ErrValidationFailed, http.StatusBadRequest},
	{service.ErrCapacityExceeded, http.StatusConflict},
	{service.ErrOwnershipViolation, http.StatusForbidden},
	{service.ErrPathMismatch, http.StatusUnprocessableEntity},
	{service.ErrAuthorization, http.StatusForbidden},
	{service.ErrProfileNotFound, http.StatusNotFound},
	{service.ErrNotFound, http.StatusNotFound},
}

func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes the status for a service error. Unknown errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Logger().Error("request failed", zap.String("op", op), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	logger.Logger().Debug("request rejected", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}

func caller(c *gin.Context) (*auth.TelegramUserData, bool) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		logger.Logger().Error("telegram user data not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrNotAuthenticated.Error()})
		return nil, false
	}
	return user, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Logger().Debug("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	return true
}
