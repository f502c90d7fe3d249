package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gridmarket/gridmarket-api/internal/container"
	handlers "github.com/gridmarket/gridmarket-api/internal/interface/http"
	"github.com/gridmarket/gridmarket-api/internal/interface/middleware"
	"github.com/gridmarket/gridmarket-api/pkg/helpers"
)

// UserModule wires the authenticated profile endpoints:
// GET/PUT /api/profile, POST /api/profile/avatar, GET /api/users/search
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUser(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(
		middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/profile/avatar", m.Handler.UploadAvatar)
		auth.GET("/users/search", m.Handler.Search)
	}
}
