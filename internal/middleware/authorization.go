package middleware

import (
	"context"
	"errors"
	"net/http"

	"questlog/internal/model"
	"questlog/internal/service"
	"questlog/pkg/auth"
	"questlog/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type profileGetter interface {
	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
}

type Authorization struct {
	profiles profileGetter
}

func NewAuthorization(profiles profileGetter) *Authorization {
	return &Authorization{
		profiles: profiles,
	}
}

// AdminOnly must run after the Telegram auth middleware. Admin rights come
// from the caller's profile row.
func (a *Authorization) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		telegramUser, ok := auth.UserFromContext(c)
		if !ok {
			log.Error("telegram user data not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		profile, err := a.profiles.GetProfile(c.Request.Context(), telegramUser.ID)
		if err != nil {
			if errors.Is(err, service.ErrProfileNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
				return
			}
			log.Error("failed to get profile", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		if !profile.IsAdmin {
			log.Info("unauthorized access attempt to admin endpoint",
				zap.Int64("user_id", telegramUser.ID))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}

		c.Set("is_admin", true)
		c.Next()
	}
}
