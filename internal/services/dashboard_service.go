package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"investment-service/internal/config"
	"investment-service/internal/models"
	"investment-service/pkg/common"
)

type DashboardService struct {
	DB     *gorm.DB
	Config config.InvestmentConfig
	Now    func() time.Time
}

func NewDashboardService(db *gorm.DB, cfg config.InvestmentConfig) *DashboardService {
	return &DashboardService{DB: db, Config: cfg, Now: time.Now}
}

// getDateRange returns the inclusive calendar-day bounds of rangeZ around date.
func getDateRange(rangeZ string, date time.Time, loc *time.Location) (string, string) {
	if loc == nil {
		loc = time.UTC
	}
	day := date.In(loc)
	start, end := day, day

	switch rangeZ {
	case "week":
		// Monday as start of week
		weekday := int(day.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = day.AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 6)
	case "month":
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, -1)
	case "30days":
		start = day.AddDate(0, 0, -29)
	case "year":
		start = time.Date(day.Year(), 1, 1, 0, 0, 0, 0, loc)
		end = time.Date(day.Year(), 12, 31, 0, 0, 0, 0, loc)
	case "yesterday":
		start = day.AddDate(0, 0, -1)
		end = start
	}

	return start.Format(common.DateLayout), end.Format(common.DateLayout)
}

// sumExpr sums a money column. SQLite keeps decimal columns as REAL, so its
// sum is returned as text, which SQLite renders with 15 significant digits.
func sumExpr(db *gorm.DB, column string) string {
	expr := "COALESCE(SUM(" + column + "), 0)"
	if db.Dialector.Name() == "sqlite" {
		return "CAST(" + expr + " AS TEXT)"
	}
	return expr
}

func sumColumn(q *gorm.DB, column string) (decimal.Decimal, error) {
	var r struct {
		Total decimal.Decimal
	}
	err := q.Select(sumExpr(q, column) + " AS total").Scan(&r).Error
	return r.Total.Round(2), err
}

type AdminDashboard struct {
	TotalClients            int64           `json:"total_clients"`
	ActiveClients           int64           `json:"active_clients"`
	ActiveInvestments       int64           `json:"active_investments"`
	ActiveInvestmentVolume  decimal.Decimal `json:"active_investment_volume"`
	PendingKYC              int64           `json:"pending_kyc"`
	PendingWithdrawals      int64           `json:"pending_withdrawals"`
	PendingWithdrawalAmount decimal.Decimal `json:"pending_withdrawal_amount"`
	TodayEarnings           decimal.Decimal `json:"today_earnings"`
	MonthEarnings           decimal.Decimal `json:"last_30_days_earnings"`
	TodayCommissions        decimal.Decimal `json:"today_commissions"`
	TotalWalletBalance      decimal.Decimal `json:"total_wallet_balance"`
	TotalCommissionsAllTime decimal.Decimal `json:"total_commissions"`
}

// Admin returns the headline figures shown on the admin dashboard.
func (s *DashboardService) Admin(ctx context.Context, actor Actor) (AdminDashboard, error) {
	var d AdminDashboard
	if err := requireAdmin(actor); err != nil {
		return d, err
	}
	db := s.DB.WithContext(ctx)
	today, _ := getDateRange("day", s.Now(), s.Config.Location)
	from30, _ := getDateRange("30days", s.Now(), s.Config.Location)

	steps := []func() error{
		func() error {
			return db.Model(&models.User{}).Where("role = ?", models.RoleClient).Count(&d.TotalClients).Error
		},
		func() error {
			return db.Model(&models.User{}).Where("role = ? AND status = ?", models.RoleClient, models.StatusActive).Count(&d.ActiveClients).Error
		},
		func() error {
			return db.Model(&models.Investment{}).Where("status = ?", models.InvestmentActive).Count(&d.ActiveInvestments).Error
		},
		func() (err error) {
			d.ActiveInvestmentVolume, err = sumColumn(db.Model(&models.Investment{}).Where("status = ?", models.InvestmentActive), "amount")
			return
		},
		func() error {
			return db.Model(&models.Client{}).Where("kyc_status = ?", models.KYCPending).Count(&d.PendingKYC).Error
		},
		func() error {
			return db.Model(&models.Withdrawal{}).Where("status = ?", models.WithdrawalPending).Count(&d.PendingWithdrawals).Error
		},
		func() (err error) {
			d.PendingWithdrawalAmount, err = sumColumn(db.Model(&models.Withdrawal{}).Where("status = ?", models.WithdrawalPending), "amount")
			return
		},
		func() (err error) {
			d.TodayEarnings, err = sumColumn(db.Model(&models.Earning{}).Where("date = ?", today), "amount")
			return
		},
		func() (err error) {
			d.MonthEarnings, err = sumColumn(db.Model(&models.Earning{}).Where("date >= ? AND date <= ?", from30, today), "amount")
			return
		},
		func() (err error) {
			d.TodayCommissions, err = sumColumn(db.Model(&models.CommissionPayout{}).Where("date = ?", today), "amount")
			return
		},
		func() (err error) {
			d.TotalWalletBalance, err = sumColumn(db.Model(&models.Wallet{}), "balance")
			return
		},
		func() (err error) {
			d.TotalCommissionsAllTime, err = sumColumn(db.Model(&models.CommissionPayout{}), "amount")
			return
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return AdminDashboard{}, asStorage("admin dashboard", err)
		}
	}
	return d, nil
}

type DailyTotal struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

type EarningsReport struct {
	From        string          `json:"from"`
	To          string          `json:"to"`
	Earnings    []DailyTotal    `json:"earnings"`
	Commissions []DailyTotal    `json:"commissions"`
	EarningSum  decimal.Decimal `json:"earning_sum"`
	PayoutSum   decimal.Decimal `json:"commission_sum"`
}

// Earnings groups accrued earnings and commission payouts by day for rangeZ
// (day, yesterday, week, month, 30days, year). userID 0 covers everyone and
// requires an admin.
func (s *DashboardService) Earnings(ctx context.Context, actor Actor, userID uint, rangeZ string) (EarningsReport, error) {
	var r EarningsReport
	if userID == 0 {
		if err := requireAdmin(actor); err != nil {
			return r, err
		}
	} else if err := requireAccess(actor, userID); err != nil {
		return r, err
	}
	r.From, r.To = getDateRange(rangeZ, s.Now(), s.Config.Location)
	db := s.DB.WithContext(ctx)

	earnings := db.Model(&models.Earning{}).Where("date >= ? AND date <= ?", r.From, r.To)
	payouts := db.Model(&models.CommissionPayout{}).Where("date >= ? AND date <= ?", r.From, r.To)
	if userID != 0 {
		earnings = earnings.Where("user_id = ?", userID)
		payouts = payouts.Where("beneficiary_id = ?", userID)
	}

	if err := earnings.Session(&gorm.Session{}).
		Select("date, " + sumExpr(db, "amount") + " AS total").
		Group("date").Order("date").
		Scan(&r.Earnings).Error; err != nil {
		return r, asStorage("group earnings", err)
	}
	if err := payouts.Session(&gorm.Session{}).
		Select("date, " + sumExpr(db, "amount") + " AS total").
		Group("date").Order("date").
		Scan(&r.Commissions).Error; err != nil {
		return r, asStorage("group commissions", err)
	}

	r.EarningSum, r.PayoutSum = decimal.Zero, decimal.Zero
	for _, e := range r.Earnings {
		r.EarningSum = r.EarningSum.Add(e.Total)
	}
	for _, p := range r.Commissions {
		r.PayoutSum = r.PayoutSum.Add(p.Total)
	}
	return r, nil
}
