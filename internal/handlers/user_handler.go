package handlers

import (
	"github.com/gin-gonic/gin"

	"investment-service/internal/middleware"
	"investment-service/internal/services"
)

func (h *Handler) ListUsers(c *gin.Context) {
	res, err := h.Services.UserAdmin.ListUsers(c.Request.Context(), middleware.GetActor(c), services.ListUsersDTO{
		Search: c.Query("search"),
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

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) SetUserStatus(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	user, err := h.Services.UserAdmin.SetStatus(c.Request.Context(), middleware.GetActor(c), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, user, "User status updated")
}

type SetTierRequest struct {
	Tier int `json:"tier"` // 0 clears the grant
}

func (h *Handler) SetManualTier(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	var req SetTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	user, err := h.Services.UserAdmin.SetManualTier(c.Request.Context(), middleware.GetActor(c), id, req.Tier)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, user, "Manual tier updated")
}
