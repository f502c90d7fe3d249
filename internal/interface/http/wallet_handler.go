package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gridmarket/gridmarket-api/internal/application"
	"github.com/gridmarket/gridmarket-api/pkg/helpers"
	"github.com/gridmarket/gridmarket-api/pkg/mailer"
	tpl "github.com/gridmarket/gridmarket-api/pkg/mailer/templates"
	"github.com/gridmarket/gridmarket-api/pkg/response"
	"github.com/gridmarket/gridmarket-api/pkg/validation"
)

// WalletHandler owns balance, transfer, and history endpoints.
type WalletHandler struct {
	Ledger      *application.Ledger
	Svc         *application.Service
	Logger      *logrus.Logger
	Pub         *helpers.RabbitPublisher
	MailEnabled bool
}

func NewWalletHandler(ledger *application.Ledger, svc *application.Service, logger *logrus.Logger, pub *helpers.RabbitPublisher, mailEnabled bool) *WalletHandler {
	return &WalletHandler{Ledger: ledger, Svc: svc, Logger: logger, Pub: pub, MailEnabled: mailEnabled}
}

type transferRequest struct {
	RecipientID string  `json:"recipient_id" binding:"required,uuid"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
}

// Transfer POST /api/wallet/transfer
// The sender is always the authenticated user.
func (h *WalletHandler) Transfer(c *gin.Context) {
	uid := c.GetString("userID")
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	out, err := h.Ledger.Transfer(c.Request.Context(), uid, req.RecipientID, req.Amount)
	if err != nil {
		renderDomainError(c, err)
		return
	}

	h.publishReceipt(c, uid, req.RecipientID, req.Amount, out.Fee, out.EnergyUsed)
	response.Success(c, http.StatusOK, out, "transfer applied", nil)
}

// Balance GET /api/wallet/balance
func (h *WalletHandler) Balance(c *gin.Context) {
	uid := c.GetString("userID")
	u, err := h.Svc.GetProfile(uid)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"balance": u.Balance,
		"energy":  u.Energy,
		"credits": u.Credits,
	}, "wallet", nil)
}

// History GET /api/wallet/transfers?limit=50
func (h *WalletHandler) History(c *gin.Context) {
	uid := c.GetString("userID")
	limit := 0
	if s := c.Query("limit"); s != "" {
		if v, ok := atoiOk(s); ok {
			limit = v
		}
	}
	entries, err := h.Ledger.History(uid, limit)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "history unavailable", nil)
		return
	}
	out := make([]gin.H, 0, len(entries))
	for _, t := range entries {
		out = append(out, gin.H{
			"id":           t.ID,
			"sender_id":    t.SenderID,
			"recipient_id": t.RecipientID,
			"amount":       t.Amount,
			"fee":          t.Fee,
			"energy_used":  t.EnergyUsed,
			"created_at":   t.CreatedAt,
		})
	}
	response.Success(c, http.StatusOK, out, "transfer history", map[string]any{"count": len(out)})
}

// Lookup GET /api/users/lookup?username=...
// Absence is a normal outcome: responds 200 with null data.
func (h *WalletHandler) Lookup(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		response.Error[any](c, http.StatusBadRequest, "username is required", nil)
		return
	}
	u, err := h.Ledger.FindUserByUsername(username)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "lookup failed", nil)
		return
	}
	if u == nil {
		response.Success[any](c, http.StatusOK, nil, "no such user", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{
		"id":       u.ID,
		"username": u.Username,
		"role":     u.Role,
	}, "user found", nil)
}

func (h *WalletHandler) publishReceipt(c *gin.Context, senderID, recipientID string, amount, fee float64, energyUsed bool) {
	if h.Pub == nil || !h.MailEnabled {
		return
	}
	sender, err := h.Svc.GetProfile(senderID)
	if err != nil {
		return
	}
	recipient, err := h.Svc.GetProfile(recipientID)
	if err != nil {
		return
	}
	job := mailer.EmailJob{
		To:       sender.Email,
		Template: tpl.TemplateTransferReceipt,
		Data: map[string]any{
			"Amount":     amount,
			"Fee":        fee,
			"EnergyUsed": energyUsed,
			"Recipient":  recipient.Username,
		},
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil && h.Logger != nil {
		h.Logger.WithError(err).Warn("receipt email publish failed")
	}
}

func atoiOk(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
