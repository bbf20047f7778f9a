package handlers

import (
	"github.com/gin-gonic/gin"

	"investment-service/internal/middleware"
)

func (h *Handler) DirectReferrals(c *gin.Context) {
	actor := middleware.GetActor(c)
	users, err := h.Services.Referral.DirectReferrals(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, users, "Referrals fetched")
}

func (h *Handler) Tree(c *gin.Context) {
	actor := middleware.GetActor(c)
	tree, err := h.Services.Referral.Tree(c.Request.Context(), actor, actor.UserID, queryInt(c, "depth", 0))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, tree, "Referral tree fetched")
}

func (h *Handler) UserTree(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	tree, err := h.Services.Referral.Tree(c.Request.Context(), middleware.GetActor(c), id, queryInt(c, "depth", 0))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, tree, "Referral tree fetched")
}

func (h *Handler) Tier(c *gin.Context) {
	actor := middleware.GetActor(c)
	info, err := h.Services.Referral.CurrentTier(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, info, "Tier fetched")
}
