package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gridmarket/gridmarket-api/internal/container"
	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	handlers "github.com/gridmarket/gridmarket-api/internal/interface/http"
	"github.com/gridmarket/gridmarket-api/internal/interface/middleware"
	"github.com/gridmarket/gridmarket-api/pkg/helpers"
)

// CatalogModule wires the instance listing endpoints. Browsing is
// authenticated but open to all roles; publishing and editing require
// provider or admin.
type CatalogModule struct {
	Handler *handlers.CatalogHandler
	JWT     *helpers.JWTManager
}

func NewCatalog(h *handlers.CatalogHandler, jwt *helpers.JWTManager) *CatalogModule {
	return &CatalogModule{Handler: h, JWT: jwt}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), nil))
	{
		auth.GET("/instances", m.Handler.List)
		auth.GET("/instances/:id", m.Handler.Get)

		manage := auth.Group("/")
		manage.Use(middleware.RequireRole(entity.RoleProvider, entity.RoleAdmin))
		{
			manage.POST("/instances", m.Handler.Create)
			manage.PATCH("/instances/:id", m.Handler.Update)
			manage.DELETE("/instances/:id", m.Handler.Delete)
		}
	}
}
