package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"investment-service/internal/config"
	"investment-service/internal/middleware"
	"investment-service/internal/models"
	"investment-service/internal/services"
	"investment-service/internal/worker"
	"investment-service/pkg/common"
)

type Handler struct {
	Services *services.Services
	Config   *config.Config
	// Queue receives admin-triggered sweeps. When nil the sweep runs inline.
	Queue worker.Enqueuer
	Log   *zap.Logger
	Now   func() time.Time
}

func New(svc *services.Services, cfg *config.Config, queue worker.Enqueuer, log *zap.Logger) *Handler {
	return &Handler{Services: svc, Config: cfg, Queue: queue, Log: log, Now: time.Now}
}

// Routes mounts every route on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome To Investment service"})
	})

	authGroup := r.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	api := r.Group("/api", middleware.AuthRequired(h.Config.JWT))
	api.GET("/wallet", h.GetWallet)
	api.GET("/transactions", h.ListTransactions)
	api.GET("/summary", h.Summary)
	api.GET("/earnings", h.Earnings)
	api.GET("/commissions", h.ListCommissions)
	api.GET("/tier", h.Tier)
	api.GET("/plans", h.Plans)
	api.GET("/investments", h.ListInvestments)
	api.POST("/investments", h.CreateInvestment)
	api.GET("/investments/:id", h.GetInvestment)
	api.POST("/investments/:id/close", h.CloseInvestment)
	api.GET("/referrals", h.DirectReferrals)
	api.GET("/tree", h.Tree)
	api.GET("/withdrawals", h.ListWithdrawals)
	api.POST("/withdrawals", h.RequestWithdrawal)
	api.GET("/kyc", h.KYCStatus)
	api.POST("/kyc", h.SubmitKYC)
	api.GET("/notifications", h.ListNotifications)
	api.GET("/notifications/unread-count", h.UnreadNotifications)
	api.POST("/notifications/read", h.MarkNotificationsRead)

	admin := api.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.GET("/dashboard", h.AdminDashboard)
	admin.GET("/earnings", h.AdminEarnings)
	admin.GET("/users", h.ListUsers)
	admin.PUT("/users/:id/status", h.SetUserStatus)
	admin.PUT("/users/:id/tier", h.SetManualTier)
	admin.GET("/users/:id/tree", h.UserTree)
	admin.POST("/deposits", h.Deposit)
	admin.GET("/investments", h.AdminListInvestments)
	admin.POST("/investments/:id/accrue", h.AccrueInvestment)
	admin.POST("/investments/:id/mature", h.MatureInvestment)
	admin.POST("/accruals/run", h.RunSweep)
	admin.GET("/kyc", h.ListPendingKYC)
	admin.POST("/kyc/:id/review", h.ReviewKYC)
	admin.GET("/withdrawals", h.AdminListWithdrawals)
	admin.POST("/withdrawals/:id/approve", h.ApproveWithdrawal)
	admin.POST("/withdrawals/:id/reject", h.RejectWithdrawal)
}

func ok(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, common.NewSuccessResponse(data, message))
}

func created(c *gin.Context, data interface{}, message string) {
	res := common.NewSuccessResponse(data, message)
	res.Status = http.StatusCreated
	c.JSON(http.StatusCreated, res)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, common.NewErrorResponse(message, nil, http.StatusBadRequest))
}

// fail maps the service error taxonomy to a status code and envelope.
func (h *Handler) fail(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"

	var ve *services.ValidationError
	var ie *services.IntegrityError
	switch {
	case errors.As(err, &ve):
		status, message = http.StatusBadRequest, ve.Error()
	case errors.Is(err, services.ErrInsufficientFunds):
		status, message = http.StatusBadRequest, "Insufficient balance"
	case errors.Is(err, services.ErrInvalidReferral):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrAlreadyAccrued), errors.Is(err, services.ErrInvestmentNotActive):
		status, message = http.StatusConflict, err.Error()
	case errors.As(err, &ie):
		h.Log.Error("Referral integrity violation", zap.Uint("user_id", ie.UserID), zap.String("reason", ie.Reason))
	default:
		h.Log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, common.NewErrorResponse(message, nil, status))
}

func paramID(c *gin.Context) (uint, bool) {
	id := cast.ToUint(c.Param("id"))
	if id == 0 {
		badRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	return cast.ToInt(v)
}

// dateOrToday parses a YYYY-MM-DD value in the accrual time zone, defaulting
// to the current day there.
func (h *Handler) dateOrToday(value string) (time.Time, error) {
	loc := h.Config.Investment.Location
	if value == "" {
		return h.Now().In(loc), nil
	}
	return common.ParseDate(value, loc)
}
