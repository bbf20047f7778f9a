package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investment-service/internal/models"
)

func TestKYCFlow(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, nil)
	admin := f.admin(t)
	ctx := context.Background()

	_, err := f.KYC.Submit(ctx, actorOf(u), "  ")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	client, err := f.KYC.Submit(ctx, actorOf(u), "uploads/kyc/aadhaar.pdf")
	require.NoError(t, err)
	assert.Equal(t, models.KYCPending, client.KYCStatus)

	_, err = f.KYC.Submit(ctx, actorOf(u), "uploads/kyc/again.pdf")
	assert.ErrorAs(t, err, &ve)

	pending, err := f.KYC.ListPending(ctx, actorOf(admin), 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending.Count)

	_, err = f.KYC.Review(ctx, actorOf(admin), ReviewKYCDTO{UserID: u.ID})
	assert.ErrorAs(t, err, &ve, "rejection without a note")

	client, err = f.KYC.Review(ctx, actorOf(admin), ReviewKYCDTO{UserID: u.ID, Note: "blurred scan"})
	require.NoError(t, err)
	assert.Equal(t, models.KYCRejected, client.KYCStatus)

	// a rejected client may resubmit
	_, err = f.KYC.Submit(ctx, actorOf(u), "uploads/kyc/clear.pdf")
	require.NoError(t, err)

	client, err = f.KYC.Review(ctx, actorOf(admin), ReviewKYCDTO{UserID: u.ID, Approve: true})
	require.NoError(t, err)
	assert.Equal(t, models.KYCVerified, client.KYCStatus)
	require.NotNil(t, client.KYCReviewedBy)
	assert.Equal(t, admin.ID, *client.KYCReviewedBy)

	status, err := f.KYC.Status(ctx, actorOf(u), u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KYCVerified, status.KYCStatus)
	assert.Equal(t, "uploads/kyc/clear.pdf", status.KYCDocument)

	_, err = f.KYC.Review(ctx, actorOf(u), ReviewKYCDTO{UserID: u.ID, Approve: true})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.KYC.Review(ctx, actorOf(admin), ReviewKYCDTO{UserID: u.ID, Approve: true})
	assert.ErrorAs(t, err, &ve, "nothing pending")
}

func TestUserAdmin(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, nil)
	admin := f.admin(t)
	ctx := context.Background()

	_, err := f.UserAdmin.SetStatus(ctx, actorOf(u), u.ID, models.StatusSuspended)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.UserAdmin.SetStatus(ctx, actorOf(admin), admin.ID, models.StatusSuspended)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	_, err = f.UserAdmin.SetStatus(ctx, actorOf(admin), u.ID, "gone")
	assert.ErrorAs(t, err, &ve)

	user, err := f.UserAdmin.SetStatus(ctx, actorOf(admin), u.ID, models.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, user.Status)

	res, err := f.UserAdmin.ListUsers(ctx, actorOf(admin), ListUsersDTO{Status: models.StatusSuspended})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Count)
	res, err = f.UserAdmin.ListUsers(ctx, actorOf(admin), ListUsersDTO{Search: u.Email})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Count)

	_, err = f.UserAdmin.SetManualTier(ctx, actorOf(admin), u.ID, 13)
	assert.ErrorAs(t, err, &ve)

	user, err = f.UserAdmin.SetManualTier(ctx, actorOf(admin), u.ID, 11)
	require.NoError(t, err)
	assert.Equal(t, 11, user.ManualTier)

	info, err := f.Referral.CurrentTier(ctx, actorOf(u), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Director", info.Tier.Name)
	assert.Nil(t, info.NextTier)

	user, err = f.UserAdmin.SetManualTier(ctx, actorOf(admin), u.ID, 0)
	require.NoError(t, err)
	assert.Zero(t, user.ManualTier)
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, nil)
	other := f.user(t, nil)
	ctx := context.Background()

	f.Notification.Notify(u.ID, "One", "first", models.NotifyInfo)
	f.Notification.Notify(u.ID, "Two", "second", models.NotifyInfo)

	n, err := f.Notification.UnreadCount(ctx, actorOf(u), u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	var first models.Notification
	require.NoError(t, f.db.Where("user_id = ?", u.ID).Order("id").First(&first).Error)

	assert.ErrorIs(t, f.Notification.MarkRead(ctx, actorOf(other), first.ID), ErrNotFound)
	require.NoError(t, f.Notification.MarkRead(ctx, actorOf(u), first.ID))

	res, err := f.Notification.List(ctx, actorOf(u), ListNotificationsDTO{UserID: u.ID, UnreadOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Count)

	require.NoError(t, f.Notification.MarkRead(ctx, actorOf(u), 0))
	n, err = f.Notification.UnreadCount(ctx, actorOf(u), u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.Notification.List(ctx, actorOf(other), ListNotificationsDTO{UserID: u.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	// a nil notifier is a no-op
	var none *NotificationService
	none.Notify(u.ID, "x", "y", models.NotifyInfo)
}
