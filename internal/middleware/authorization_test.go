package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"questlog/internal/model"
	"questlog/internal/service"
	"questlog/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func TestAdminOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		user       *auth.TelegramUserData
		mockSetup  func(m *mockProfiles)
		wantStatus int
	}{
		{
			name:       "No authenticated user",
			mockSetup:  func(m *mockProfiles) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Admin passes",
			user: &auth.TelegramUserData{ID: 1},
			mockSetup: func(m *mockProfiles) {
				m.On("GetProfile", mock.Anything, int64(1)).Return(&model.Profile{UserID: 1, IsAdmin: true}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "Regular user refused",
			user: &auth.TelegramUserData{ID: 2},
			mockSetup: func(m *mockProfiles) {
				m.On("GetProfile", mock.Anything, int64(2)).Return(&model.Profile{UserID: 2}, nil)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "Unregistered user refused",
			user: &auth.TelegramUserData{ID: 3},
			mockSetup: func(m *mockProfiles) {
				m.On("GetProfile", mock.Anything, int64(3)).Return(nil, service.ErrProfileNotFound)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "Store failure",
			user: &auth.TelegramUserData{ID: 4},
			mockSetup: func(m *mockProfiles) {
				m.On("GetProfile", mock.Anything, int64(4)).Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := &mockProfiles{}
			tt.mockSetup(profiles)

			r := gin.New()
			r.Use(func(c *gin.Context) {
				if tt.user != nil {
					c.Set(auth.ContextKey, tt.user)
				}
			})
			r.GET("/admin", NewAuthorization(profiles).AdminOnly(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
