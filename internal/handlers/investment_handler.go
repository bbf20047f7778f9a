package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"investment-service/internal/middleware"
	"investment-service/internal/services"
	"investment-service/internal/worker"
	"investment-service/pkg/common"
)

type CreateInvestmentRequest struct {
	Plan   string          `json:"plan" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) CreateInvestment(c *gin.Context) {
	var req CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	actor := middleware.GetActor(c)
	inv, err := h.Services.Investment.Create(c.Request.Context(), actor, services.CreateInvestmentDTO{
		UserID: actor.UserID,
		Plan:   req.Plan,
		Amount: req.Amount,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, inv, "Investment created")
}

func (h *Handler) GetInvestment(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	inv, err := h.Services.Investment.Get(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, inv, "Investment fetched")
}

func (h *Handler) ListInvestments(c *gin.Context) {
	actor := middleware.GetActor(c)
	h.listInvestments(c, actor, actor.UserID)
}

func (h *Handler) AdminListInvestments(c *gin.Context) {
	h.listInvestments(c, middleware.GetActor(c), uint(queryInt(c, "user_id", 0)))
}

func (h *Handler) listInvestments(c *gin.Context, actor services.Actor, userID uint) {
	res, err := h.Services.Investment.List(c.Request.Context(), actor, services.ListInvestmentsDTO{
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

func (h *Handler) CloseInvestment(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	res, err := h.Services.Accrual.CloseEarly(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, res, "Investment closed")
}

func (h *Handler) Plans(c *gin.Context) {
	ok(c, h.Services.Investment.Plans(), "Plans fetched")
}

type DateRequest struct {
	Date string `json:"date"`
}

func (h *Handler) bindDate(c *gin.Context) (DateRequest, bool) {
	var req DateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body")
			return req, false
		}
	}
	return req, true
}

// AccrueInvestment credits one day for a single investment.
func (h *Handler) AccrueInvestment(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	req, valid := h.bindDate(c)
	if !valid {
		return
	}
	date, err := h.dateOrToday(req.Date)
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	res, err := h.Services.Accrual.AccrueDay(c.Request.Context(), id, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, res, "Earning accrued")
}

func (h *Handler) MatureInvestment(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	req, valid := h.bindDate(c)
	if !valid {
		return
	}
	date, err := h.dateOrToday(req.Date)
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	inv, err := h.Services.Accrual.Mature(c.Request.Context(), id, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, inv, "Investment matured")
}

// RunSweep queues the daily sweep, or runs it inline when no queue is
// configured.
func (h *Handler) RunSweep(c *gin.Context) {
	req, valid := h.bindDate(c)
	if !valid {
		return
	}
	date, err := h.dateOrToday(req.Date)
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	day := common.FormatDate(date, h.Config.Investment.Location)

	if h.Queue != nil {
		info, err := worker.EnqueueSweep(h.Queue, day)
		if errors.Is(err, worker.ErrSweepQueued) {
			c.JSON(http.StatusConflict, common.NewErrorResponse(err.Error(), nil, http.StatusConflict))
			return
		}
		if err != nil {
			h.fail(c, err)
			return
		}
		res := common.NewSuccessResponse(gin.H{"task_id": info.ID, "date": day}, "Accrual sweep queued")
		res.Status = http.StatusAccepted
		c.JSON(http.StatusAccepted, res)
		return
	}

	report, err := h.Services.Accrual.Sweep(c.Request.Context(), date)
	if err != nil && report.Failed == 0 {
		h.fail(c, err)
		return
	}
	if err != nil {
		h.Log.Warn("Inline sweep finished with failures", zap.String("date", day), zap.Error(err))
		c.JSON(http.StatusMultiStatus, common.NewSuccessResponse(report, "Accrual sweep finished with failures"))
		return
	}
	ok(c, report, "Accrual sweep finished")
}
