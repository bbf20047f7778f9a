package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"investment-service/internal/middleware"
	"investment-service/internal/services"
)

type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) RequestWithdrawal(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	actor := middleware.GetActor(c)
	w, err := h.Services.Withdrawal.RequestWithdrawal(c.Request.Context(), actor, services.WithdrawRequestDTO{
		UserID: actor.UserID,
		Amount: req.Amount,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, w, "Withdrawal requested")
}

func (h *Handler) ListWithdrawals(c *gin.Context) {
	actor := middleware.GetActor(c)
	h.listWithdrawals(c, actor, actor.UserID)
}

func (h *Handler) AdminListWithdrawals(c *gin.Context) {
	h.listWithdrawals(c, middleware.GetActor(c), uint(queryInt(c, "user_id", 0)))
}

func (h *Handler) listWithdrawals(c *gin.Context, actor services.Actor, userID uint) {
	res, err := h.Services.Withdrawal.ListWithdrawals(c.Request.Context(), actor, services.ListWithdrawalRequestsDTO{
		UserID: userID,
		Status: c.Query("status"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 0),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, res, res.Message)
}

type ProcessWithdrawalRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) ApproveWithdrawal(c *gin.Context) {
	h.processWithdrawal(c, true)
}

func (h *Handler) RejectWithdrawal(c *gin.Context) {
	h.processWithdrawal(c, false)
}

func (h *Handler) processWithdrawal(c *gin.Context, approve bool) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	var req ProcessWithdrawalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body")
			return
		}
	}

	data := services.ProcessWithdrawalDTO{ID: id, Comment: req.Comment}
	process, message := h.Services.Withdrawal.Reject, "Withdrawal rejected"
	if approve {
		process, message = h.Services.Withdrawal.Approve, "Withdrawal approved"
	}
	w, err := process(c.Request.Context(), middleware.GetActor(c), data)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, w, message)
}
