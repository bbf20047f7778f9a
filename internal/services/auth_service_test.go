package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investment-service/internal/auth"
	"investment-service/internal/models"
)

func registerDTO(code string) RegisterDTO {
	return RegisterDTO{
		Name:         "Asha Rao",
		Email:        "Asha@Example.com",
		Phone:        "9876543210",
		Password:     "s3cret-pass",
		ReferralCode: code,
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	sponsor := f.user(t, nil)
	ctx := context.Background()

	res, err := f.Auth.Register(ctx, registerDTO(sponsor.ReferralCode))
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.NotZero(t, res.UserID)
	assert.Contains(t, res.ClientCode, "SJA")
	assert.Len(t, res.ReferralCode, 32)

	var user models.User
	require.NoError(t, f.db.First(&user, res.UserID).Error)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, models.RoleClient, user.Role)
	require.NotNil(t, user.ParentID)
	assert.Equal(t, sponsor.ID, *user.ParentID)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	assert.EqualValues(t, 1, count(t, f.db, &models.Wallet{}, "user_id = ?", user.ID))
	assert.EqualValues(t, 1, count(t, f.db, &models.Client{}, "user_id = ?", user.ID))
	assert.EqualValues(t, 1, count(t, f.db, &models.Referral{}, "referred_id = ?", user.ID))

	var welcome models.Notification
	require.NoError(t, f.db.Where("user_id = ?", user.ID).First(&welcome).Error)
	assert.Equal(t, "Welcome", welcome.Title)
	assert.Equal(t, models.NotifySuccess, welcome.Type)
	assert.Contains(t, welcome.Message, res.ClientCode)

	dup, err := f.Auth.Register(ctx, registerDTO(sponsor.ReferralCode))
	require.NoError(t, err)
	assert.False(t, dup.Success)
	assert.Equal(t, "Email already registered", dup.Message)

	phone := registerDTO(sponsor.ReferralCode)
	phone.Email = "other@example.com"
	dup, err = f.Auth.Register(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, "Phone number already registered", dup.Message)
}

func TestRegisterInvalidReferralLeavesNothing(t *testing.T) {
	f := newFixture(t)

	res, err := f.Auth.Register(context.Background(), registerDTO("does-not-exist"))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid referral code", res.Message)
	assert.Zero(t, count(t, f.db, &models.User{}, ""))
	assert.Zero(t, count(t, f.db, &models.Wallet{}, ""))
	assert.Zero(t, count(t, f.db, &models.Client{}, ""))
	assert.Zero(t, count(t, f.db, &models.Notification{}, ""))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	sponsor := f.user(t, nil)
	ctx := context.Background()

	cases := map[string]func(*RegisterDTO){
		"Invalid email format":                   func(d *RegisterDTO) { d.Email = "not-an-email" },
		"Invalid phone number format":            func(d *RegisterDTO) { d.Phone = "12345" },
		"password must be at least 8 characters": func(d *RegisterDTO) { d.Password = "short" },
		"referralcode is required":               func(d *RegisterDTO) { d.ReferralCode = "" },
	}
	for want, mutate := range cases {
		dto := registerDTO(sponsor.ReferralCode)
		mutate(&dto)
		res, err := f.Auth.Register(ctx, dto)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, want, res.Message)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	sponsor := f.user(t, nil)
	ctx := context.Background()

	reg, err := f.Auth.Register(ctx, registerDTO(sponsor.ReferralCode))
	require.NoError(t, err)
	require.True(t, reg.Success)

	res, err := f.Auth.Login(ctx, LoginDTO{Email: "asha@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.User)
	assert.Equal(t, reg.UserID, res.User.ID)

	claims, err := auth.ParseAccessToken(f.cfg.JWT, res.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, claims.UserID)
	assert.Equal(t, models.RoleClient, claims.Role)

	res, err = f.Auth.Login(ctx, LoginDTO{Email: "asha@example.com", Password: "wrong-pass"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Token)

	res, err = f.Auth.Login(ctx, LoginDTO{Email: "nobody@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "Invalid email or password", res.Message)

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", reg.UserID).Update("status", models.StatusBanned).Error)
	res, err = f.Auth.Login(ctx, LoginDTO{Email: "asha@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Account is banned", res.Message)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	data := AdminDTO{Name: "Root", Email: "Root@Example.com", Phone: "9000000001", Password: "admin-pass"}

	admin, created, err := f.Auth.EnsureAdmin(ctx, data)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, "root@example.com", admin.Email)
	assert.NotEmpty(t, admin.ReferralCode)
	assert.EqualValues(t, 1, count(t, f.db, &models.Wallet{}, "user_id = ?", admin.ID))

	again, created, err := f.Auth.EnsureAdmin(ctx, data)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	// the seeded code sponsors the first client
	res, err := f.Auth.Register(ctx, registerDTO(admin.ReferralCode))
	require.NoError(t, err)
	assert.True(t, res.Success, res.Message)

	login, err := f.Auth.Login(ctx, LoginDTO{Email: "root@example.com", Password: "admin-pass"})
	require.NoError(t, err)
	assert.True(t, login.Success)

	_, _, err = f.Auth.EnsureAdmin(ctx, AdminDTO{Email: "x@example.com", Password: "short"})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
