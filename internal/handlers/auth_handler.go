package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"investment-service/internal/services"
	"investment-service/pkg/common"
)

func (h *Handler) Register(c *gin.Context) {
	var req services.RegisterDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	res, err := h.Services.Auth.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(res.Message, nil, http.StatusBadRequest))
		return
	}
	created(c, res, res.Message)
}

func (h *Handler) Login(c *gin.Context) {
	var req services.LoginDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required")
		return
	}
	res, err := h.Services.Auth.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse(res.Message, nil, http.StatusUnauthorized))
		return
	}
	ok(c, res, res.Message)
}
