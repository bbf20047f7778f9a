package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"investment-service/internal/auth"
	"investment-service/internal/config"
	"investment-service/internal/models"
	"investment-service/pkg/common"
)

type AuthService struct {
	DB       *gorm.DB
	Referral *ReferralService
	Wallet   *WalletService
	Notifier *NotificationService
	JWT      config.JWTConfig
	Log      *zap.Logger
	validate *validator.Validate
}

func NewAuthService(db *gorm.DB, referral *ReferralService, wallet *WalletService, notifier *NotificationService, jwtCfg config.JWTConfig, log *zap.Logger) *AuthService {
	return &AuthService{
		DB:       db,
		Referral: referral,
		Wallet:   wallet,
		Notifier: notifier,
		JWT:      jwtCfg,
		Log:      log,
		validate: validator.New(),
	}
}

type RegisterDTO struct {
	Name         string `json:"name" validate:"required,max=150"`
	Email        string `json:"email" validate:"required,email,max=191"`
	Phone        string `json:"phone" validate:"required,numeric,len=10"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	ReferralCode string `json:"referral_code" validate:"required"`
}

// RegisterResult carries user-facing outcomes. Only storage failures are
// returned as errors.
type RegisterResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	UserID       uint   `json:"user_id,omitempty"`
	ClientCode   string `json:"client_code,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"`
}

func failed(message string) RegisterResult {
	return RegisterResult{Success: false, Message: message}
}

// Register creates the user, client profile, wallet and referral edge in one
// transaction.
func (s *AuthService) Register(ctx context.Context, data RegisterDTO) (RegisterResult, error) {
	data.Email = strings.ToLower(strings.TrimSpace(data.Email))
	data.Name = strings.TrimSpace(data.Name)
	data.Phone = strings.TrimSpace(data.Phone)
	data.ReferralCode = strings.TrimSpace(data.ReferralCode)

	if err := s.validate.Struct(data); err != nil {
		return failed(validationMessage(err)), nil
	}

	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", data.Email).Count(&count).Error; err != nil {
		return RegisterResult{}, asStorage("check email", err)
	}
	if count > 0 {
		return failed("Email already registered"), nil
	}
	if err := db.Model(&models.User{}).Where("phone = ?", data.Phone).Count(&count).Error; err != nil {
		return RegisterResult{}, asStorage("check phone", err)
	}
	if count > 0 {
		return failed("Phone number already registered"), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("hash password: %w", err)
	}

	var result RegisterResult
	err = db.Transaction(func(tx *gorm.DB) error {
		referrer, err := s.Referral.ResolveReferralCode(tx, data.ReferralCode)
		if err != nil {
			return err
		}

		user := models.User{
			Name:         data.Name,
			Email:        data.Email,
			Phone:        data.Phone,
			PasswordHash: string(hash),
			Role:         models.RoleClient,
			Status:       models.StatusActive,
			ReferralCode: common.ReferralToken(),
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return NewValidationError("", "Email or phone already registered")
			}
			return asStorage("create user", err)
		}

		client := models.Client{
			UserID:     user.ID,
			ClientCode: common.GenerateCode("SJA" + strconv.Itoa(time.Now().Year())),
			KYCStatus:  models.KYCNotSubmitted,
		}
		if err := tx.Create(&client).Error; err != nil {
			return asStorage("create client", err)
		}

		if _, err := s.Wallet.CreateWallet(tx, user.ID); err != nil {
			return err
		}
		if _, err := s.Referral.RegisterReferral(tx, referrer.ID, user.ID); err != nil {
			return err
		}

		result = RegisterResult{
			Success:      true,
			Message:      "Registration successful",
			UserID:       user.ID,
			ClientCode:   client.ClientCode,
			ReferralCode: user.ReferralCode,
		}
		return nil
	})
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			return failed(ve.Message), nil
		case errors.Is(err, ErrInvalidReferral):
			return failed("Invalid referral code"), nil
		}
		s.Log.Error("Registration failed", zap.String("email", data.Email), zap.Error(err))
		return RegisterResult{}, asStorage("register", err)
	}

	s.Log.Info("User registered", zap.Uint("user_id", result.UserID), zap.String("client_code", result.ClientCode))
	s.Notifier.Notify(result.UserID, "Welcome",
		fmt.Sprintf("Welcome to the platform. Your client code is %s.", result.ClientCode),
		models.NotifySuccess)
	return result, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid registration data"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email format"
	case "numeric", "len":
		if fe.Field() == "Phone" {
			return "Invalid phone number format"
		}
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	}
	return "Invalid " + field
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	User      *models.User `json:"user,omitempty"`
}

// Login checks credentials and issues a bearer token carrying (user, role).
func (s *AuthService) Login(ctx context.Context, data LoginDTO) (LoginResult, error) {
	var user models.User
	email := strings.ToLower(strings.TrimSpace(data.Email))
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginResult{Message: "Invalid email or password"}, nil
		}
		return LoginResult{}, asStorage("load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(data.Password)) != nil {
		return LoginResult{Message: "Invalid email or password"}, nil
	}
	if !user.IsActive() {
		return LoginResult{Message: "Account is " + user.Status}, nil
	}

	token, expires, err := auth.GenerateAccessToken(s.JWT, user.ID, user.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}
	return LoginResult{
		Success:   true,
		Message:   "Login successful",
		Token:     token,
		ExpiresAt: &expires,
		User:      &user,
	}, nil
}

// HashPassword is used when seeding accounts outside registration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

type AdminDTO struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// EnsureAdmin creates the root admin account with its wallet if no user has
// the given email. created is false when the account already existed.
func (s *AuthService) EnsureAdmin(ctx context.Context, data AdminDTO) (user models.User, created bool, err error) {
	data.Email = strings.ToLower(strings.TrimSpace(data.Email))
	if data.Email == "" || len(data.Password) < 8 {
		return user, false, NewValidationError("admin", "email and a password of at least 8 characters are required")
	}

	db := s.DB.WithContext(ctx)
	if err := db.Where("email = ?", data.Email).Limit(1).Find(&user).Error; err != nil {
		return user, false, asStorage("load admin", err)
	}
	if user.ID != 0 {
		return user, false, nil
	}

	hash, err := HashPassword(data.Password)
	if err != nil {
		return user, false, fmt.Errorf("hash password: %w", err)
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		user = models.User{
			Name:         data.Name,
			Email:        data.Email,
			Phone:        data.Phone,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
			Status:       models.StatusActive,
			ReferralCode: common.ReferralToken(),
		}
		if err := tx.Create(&user).Error; err != nil {
			return asStorage("create admin", err)
		}
		_, err := s.Wallet.CreateWallet(tx, user.ID)
		return err
	})
	if err != nil {
		return models.User{}, false, err
	}
	s.Log.Info("Admin account created", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return user, true, nil
}
