package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"investment-service/internal/models"
	"investment-service/pkg/common"
)

type KYCService struct {
	DB       *gorm.DB
	Notifier *NotificationService
	Now      func() time.Time
}

func NewKYCService(db *gorm.DB, notifier *NotificationService) *KYCService {
	return &KYCService{DB: db, Notifier: notifier, Now: time.Now}
}

// Submit records the reference to an uploaded document and queues the
// profile for review. Storing the document itself happens elsewhere.
func (s *KYCService) Submit(ctx context.Context, actor Actor, documentRef string) (models.Client, error) {
	var client models.Client
	documentRef = strings.TrimSpace(documentRef)
	if documentRef == "" {
		return client, NewValidationError("document_ref", "is required")
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", actor.UserID).First(&client).Error; err != nil {
			return notFoundOr("load client", fmt.Sprintf("client profile for user %d", actor.UserID), err)
		}
		switch client.KYCStatus {
		case models.KYCPending:
			return NewValidationError("kyc", "documents are already under review")
		case models.KYCVerified:
			return NewValidationError("kyc", "KYC is already verified")
		}
		client.KYCStatus = models.KYCPending
		client.KYCDocument = documentRef
		return asStorage("submit kyc", tx.Model(&models.Client{}).Where("id = ?", client.ID).Updates(map[string]interface{}{
			"kyc_status":       models.KYCPending,
			"kyc_document_ref": documentRef,
		}).Error)
	})
	if err != nil {
		return models.Client{}, asStorage("submit kyc", err)
	}
	return client, nil
}

type ReviewKYCDTO struct {
	UserID  uint
	Approve bool
	Note    string
}

func (s *KYCService) Review(ctx context.Context, actor Actor, data ReviewKYCDTO) (models.Client, error) {
	var client models.Client
	if err := requireAdmin(actor); err != nil {
		return client, err
	}
	status := models.KYCRejected
	if data.Approve {
		status = models.KYCVerified
	} else if strings.TrimSpace(data.Note) == "" {
		return client, NewValidationError("note", "a reason is required when rejecting")
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", data.UserID).First(&client).Error; err != nil {
			return notFoundOr("load client", fmt.Sprintf("client profile for user %d", data.UserID), err)
		}
		if client.KYCStatus != models.KYCPending {
			return NewValidationError("kyc", "no pending submission to review")
		}
		now := s.Now()
		if err := tx.Model(&models.Client{}).Where("id = ?", client.ID).Updates(map[string]interface{}{
			"kyc_status":      status,
			"kyc_note":        data.Note,
			"kyc_reviewed_by": actor.UserID,
			"kyc_reviewed_at": now,
		}).Error; err != nil {
			return asStorage("review kyc", err)
		}
		client.KYCStatus = status
		client.KYCNote = data.Note
		client.KYCReviewedBy = &actor.UserID
		client.KYCReviewedAt = &now
		return nil
	})
	if err != nil {
		return models.Client{}, asStorage("review kyc", err)
	}

	if data.Approve {
		s.Notifier.Notify(data.UserID, "KYC Approved", "Your KYC documents have been verified.", models.NotifySuccess)
	} else {
		s.Notifier.Notify(data.UserID, "KYC Rejected", "Your KYC documents were rejected: "+data.Note, models.NotifyWarning)
	}
	return client, nil
}

func (s *KYCService) Status(ctx context.Context, actor Actor, userID uint) (models.Client, error) {
	var client models.Client
	if err := requireAccess(actor, userID); err != nil {
		return client, err
	}
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&client).Error; err != nil {
		return client, notFoundOr("load client", fmt.Sprintf("client profile for user %d", userID), err)
	}
	return client, nil
}

func (s *KYCService) ListPending(ctx context.Context, actor Actor, page, limit int) (common.PaginationResult, error) {
	if err := requireAdmin(actor); err != nil {
		return common.PaginationResult{}, err
	}
	page, limit, offset := common.Paging(page, limit)
	query := s.DB.WithContext(ctx).Model(&models.Client{}).Where("kyc_status = ?", models.KYCPending)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, asStorage("count pending kyc", err)
	}
	var items []models.Client
	if err := query.Order("updated_at").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return common.PaginationResult{}, asStorage("list pending kyc", err)
	}
	return common.PaginateResponse(items, total, page, limit, "Pending KYC fetched"), nil
}
