package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gridmarket/gridmarket-api/internal/container"
	handlers "github.com/gridmarket/gridmarket-api/internal/interface/http"
	"github.com/gridmarket/gridmarket-api/internal/interface/middleware"
	"github.com/gridmarket/gridmarket-api/pkg/helpers"
)

// WalletModule wires the authenticated wallet endpoints:
// POST /api/wallet/transfer, GET /api/wallet/balance,
// GET /api/wallet/transfers, GET /api/users/lookup
type WalletModule struct {
	Handler *handlers.WalletHandler
	JWT     *helpers.JWTManager
}

func NewWallet(h *handlers.WalletHandler, jwt *helpers.JWTManager) *WalletModule {
	return &WalletModule{Handler: h, JWT: jwt}
}

func (m *WalletModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	// Transfers mutate balances; keep the per-user ceiling tight.
	transferLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByUserID(), nil)
	{
		auth.POST("/wallet/transfer", transferLimiter, m.Handler.Transfer)
		auth.GET("/wallet/balance", m.Handler.Balance)
		auth.GET("/wallet/transfers", m.Handler.History)
		auth.GET("/users/lookup", m.Handler.Lookup)
	}
}
