package handlers

import (
	"github.com/gin-gonic/gin"

	"investment-service/internal/middleware"
	"investment-service/internal/services"
)

type SubmitKYCRequest struct {
	DocumentRef string `json:"document_ref" binding:"required"`
}

func (h *Handler) SubmitKYC(c *gin.Context) {
	var req SubmitKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "document_ref is required")
		return
	}
	client, err := h.Services.KYC.Submit(c.Request.Context(), middleware.GetActor(c), req.DocumentRef)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, client, "KYC submitted for review")
}

func (h *Handler) KYCStatus(c *gin.Context) {
	actor := middleware.GetActor(c)
	client, err := h.Services.KYC.Status(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, client, "KYC status fetched")
}

func (h *Handler) ListPendingKYC(c *gin.Context) {
	res, err := h.Services.KYC.ListPending(c.Request.Context(), middleware.GetActor(c), queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, res, res.Message)
}

type ReviewKYCRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// ReviewKYC takes the user id in the path.
func (h *Handler) ReviewKYC(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	var req ReviewKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	client, err := h.Services.KYC.Review(c.Request.Context(), middleware.GetActor(c), services.ReviewKYCDTO{
		UserID:  id,
		Approve: req.Approve,
		Note:    req.Note,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, client, "KYC reviewed")
}
