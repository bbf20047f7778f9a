package services

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"investment-service/internal/config"
)

// Services wires every service against one store and configuration.
type Services struct {
	Helper       *HelperService
	Notification *NotificationService
	Wallet       *WalletService
	Referral     *ReferralService
	Commission   *CommissionService
	Accrual      *AccrualService
	Investment   *InvestmentService
	Withdrawal   *WithdrawalService
	KYC          *KYCService
	UserAdmin    *UserAdminService
	Auth         *AuthService
	Dashboard    *DashboardService
	Summary      *SummaryService
}

func New(db *gorm.DB, cfg *config.Config, log *zap.Logger) *Services {
	s := &Services{}
	s.Helper = NewHelperService(db)
	s.Notification = NewNotificationService(db, log)
	s.Wallet = NewWalletService(db, s.Helper, s.Notification, log)
	s.Referral = NewReferralService(db, cfg.Referral, cfg.Commission)
	s.Commission = NewCommissionService(db, s.Wallet, s.Referral, cfg.Commission, log)
	s.Accrual = NewAccrualService(db, s.Wallet, s.Commission, s.Notification, cfg, log)
	s.Investment = NewInvestmentService(db, s.Wallet, s.Commission, s.Notification, cfg, log)
	s.Withdrawal = NewWithdrawalService(db, s.Wallet, s.Notification, cfg.Withdrawal, log)
	s.KYC = NewKYCService(db, s.Notification)
	s.UserAdmin = NewUserAdminService(db, cfg.Commission.Ladder, s.Notification, log)
	s.Auth = NewAuthService(db, s.Referral, s.Wallet, s.Notification, cfg.JWT, log)
	s.Dashboard = NewDashboardService(db, cfg.Investment)
	s.Summary = NewSummaryService(db, s.Referral, cfg.Investment)
	return s
}
