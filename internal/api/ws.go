package api

import (
	"net/http"

	"questlog/pkg/auth"
	"questlog/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type connectionServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID int64) error
}

type notificationRoutes struct {
	hub connectionServer
}

// NewNotificationRoutes exposes the progression event stream of the caller.
// Browsers pass the init data in the init_data query parameter.
func NewNotificationRoutes(handler *gin.RouterGroup, hub connectionServer, a *auth.TelegramAuth) {
	r := &notificationRoutes{hub: hub}
	handler.GET("/ws", a.TelegramAuthMiddleware(), r.handleWebSocket)
}

func (r *notificationRoutes) handleWebSocket(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	if err := r.hub.Serve(c.Writer, c.Request, user.ID); err != nil {
		logger.Logger().Warn("websocket upgrade failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}
