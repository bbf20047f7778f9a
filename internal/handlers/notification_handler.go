package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"investment-service/internal/middleware"
	"investment-service/internal/services"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	actor := middleware.GetActor(c)
	res, err := h.Services.Notification.List(c.Request.Context(), actor, services.ListNotificationsDTO{
		UserID:     actor.UserID,
		UnreadOnly: cast.ToBool(c.Query("unread")),
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 0),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, res, res.Message)
}

func (h *Handler) UnreadNotifications(c *gin.Context) {
	actor := middleware.GetActor(c)
	n, err := h.Services.Notification.UnreadCount(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"unread": n}, "Unread count fetched")
}

type MarkReadRequest struct {
	ID uint `json:"id"` // 0 marks all
}

func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	var req MarkReadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body")
			return
		}
	}
	if err := h.Services.Notification.MarkRead(c.Request.Context(), middleware.GetActor(c), req.ID); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, nil, "Notifications marked as read")
}
