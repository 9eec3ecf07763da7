package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"questlog/pkg/logger"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"
	"go.uber.org/zap"
)

const (
	expTime = 24 * time.Hour

	// ContextKey holds the *TelegramUserData of an authenticated request.
	ContextKey = "telegram_user"

	// initDataQuery carries init data for clients that cannot set headers,
	// such as the browser websocket API.
	initDataQuery = "init_data"
)

var errMissingUser = errors.New("init data has no user")

type TelegramAuth struct {
	botToken  string
	debugMode bool
}

func NewTelegramAuth(botToken string, debugMode bool) *TelegramAuth {
	return &TelegramAuth{
		botToken:  botToken,
		debugMode: debugMode,
	}
}

func (t *TelegramAuth) TelegramAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		raw, ok := rawInitData(c)
		if !ok {
			log.Info("missing or malformed authorization")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		if !t.debugMode {
			if err := initdata.Validate(raw, t.botToken, expTime); err != nil {
				log.Info("invalid telegram init data", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram auth data"})
				return
			}
		}

		user, err := ExtractTelegramData(raw)
		if err != nil {
			log.Info("failed to extract telegram data", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram data"})
			return
		}

		c.Set(ContextKey, user)
		c.Next()
	}
}

func rawInitData(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		if !strings.HasPrefix(header, "Telegram ") {
			return "", false
		}
		return strings.TrimPrefix(header, "Telegram "), true
	}
	if q := c.Query(initDataQuery); q != "" {
		return q, true
	}
	return "", false
}

func (t *TelegramAuth) GetBotToken() string {
	return t.botToken
}

type TelegramUserData struct {
	ID        int64
	Username  string
	FirstName string
	AuthDate  time.Time
}

// DisplayName is the name to use when the user has not chosen one.
func (u *TelegramUserData) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

func ExtractTelegramData(raw string) (*TelegramUserData, error) {
	data, err := initdata.Parse(raw)
	if err != nil {
		return nil, err
	}
	if data.User.ID == 0 {
		return nil, errMissingUser
	}

	return &TelegramUserData{
		ID:        data.User.ID,
		Username:  data.User.Username,
		FirstName: data.User.FirstName,
		AuthDate:  data.AuthDate(),
	}, nil
}

// UserFromContext returns the user set by TelegramAuthMiddleware.
func UserFromContext(c *gin.Context) (*TelegramUserData, bool) {
	v, exists := c.Get(ContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*TelegramUserData)
	return user, ok && user != nil
}
