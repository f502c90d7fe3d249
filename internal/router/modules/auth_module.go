package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gridmarket/gridmarket-api/internal/container"
	handlers "github.com/gridmarket/gridmarket-api/internal/interface/http"
	"github.com/gridmarket/gridmarket-api/internal/interface/middleware"
	"github.com/gridmarket/gridmarket-api/pkg/helpers"
)

// AuthModule exposes the account endpoints:
// public POST /api/register, /api/login, /api/refresh; authed POST /api/logout
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuth(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	authed := rg.Group("/")
	authed.Use(middleware.Auth(rdb, m.JWT))
	authed.POST("/logout", m.Handler.Logout)
}
