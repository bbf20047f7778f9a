package handlers

import (
	"github.com/gin-gonic/gin"

	"investment-service/internal/middleware"
	"investment-service/internal/services"
)

func (h *Handler) Summary(c *gin.Context) {
	actor := middleware.GetActor(c)
	summary, err := h.Services.Summary.Client(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, summary, "Summary fetched")
}

func (h *Handler) Earnings(c *gin.Context) {
	actor := middleware.GetActor(c)
	h.earnings(c, actor, actor.UserID)
}

// AdminEarnings covers every user unless user_id is given.
func (h *Handler) AdminEarnings(c *gin.Context) {
	h.earnings(c, middleware.GetActor(c), uint(queryInt(c, "user_id", 0)))
}

func (h *Handler) earnings(c *gin.Context, actor services.Actor, userID uint) {
	report, err := h.Services.Dashboard.Earnings(c.Request.Context(), actor, userID, c.DefaultQuery("range", "month"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, report, "Earnings fetched")
}

func (h *Handler) ListCommissions(c *gin.Context) {
	actor := middleware.GetActor(c)
	res, err := h.Services.Commission.ListPayouts(c.Request.Context(), actor, services.ListPayoutsDTO{
		UserID: actor.UserID,
		From:   c.Query("from"),
		To:     c.Query("to"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 0),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, res, res.Message)
}

func (h *Handler) AdminDashboard(c *gin.Context) {
	d, err := h.Services.Dashboard.Admin(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, d, "Dashboard fetched")
}
