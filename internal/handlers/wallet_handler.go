package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"investment-service/internal/middleware"
	"investment-service/internal/services"
)

func (h *Handler) GetWallet(c *gin.Context) {
	actor := middleware.GetActor(c)
	wallet, err := h.Services.Wallet.GetWallet(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, wallet, "Wallet fetched")
}

func (h *Handler) ListTransactions(c *gin.Context) {
	actor := middleware.GetActor(c)
	res, err := h.Services.Wallet.ListTransactions(c.Request.Context(), actor, services.ListTransactionsDTO{
		UserID:  actor.UserID,
		Subject: c.Query("subject"),
		TrxType: c.Query("type"),
		Page:    queryInt(c, "page", 1),
		Limit:   queryInt(c, "limit", 0),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, res, res.Message)
}

type DepositRequest struct {
	UserID      uint            `json:"user_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
}

func (h *Handler) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	wallet, err := h.Services.Wallet.Deposit(c.Request.Context(), middleware.GetActor(c), services.DepositDTO{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Description: req.Description,
		Reference:   req.Reference,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, wallet, "Deposit recorded")
}
