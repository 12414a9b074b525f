package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/collegehub-edu/portal-service/internal/models"
	"github.com/collegehub-edu/portal-service/internal/repositories"
)

type ApprovedEmailPostgres struct {
	db *gorm.DB
}

func NewApprovedEmailPostgres(db *gorm.DB) repositories.ApprovedEmailRepository {
	return &ApprovedEmailPostgres{db: db}
}

func (r *ApprovedEmailPostgres) Create(ctx context.Context, approval *models.ApprovedEmail) error {
	if err := r.db.WithContext(ctx).Create(approval).Error; err != nil {
		return fmt.Errorf("failed to create approved email: %w", err)
	}
	return nil
}

func (r *ApprovedEmailPostgres) GetByID(ctx context.Context, id string) (*models.ApprovedEmail, error) {
	var approval models.ApprovedEmail
	if err := r.db.WithContext(ctx).First(&approval, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *ApprovedEmailPostgres) GetByEmail(ctx context.Context, email string) (*models.ApprovedEmail, error) {
	var approval models.ApprovedEmail
	if err := r.db.WithContext(ctx).First(&approval, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *ApprovedEmailPostgres) List(ctx context.Context, filters repositories.ApprovalFilters) ([]models.ApprovedEmail, error) {
	query := r.db.WithContext(ctx).Model(&models.ApprovedEmail{})
	if filters.ClassCode != "" {
		query = query.Where("class_code = ?", filters.ClassCode)
	}
	if filters.ApprovedBy != "" {
		query = query.Where("approved_by_user_id = ?", filters.ApprovedBy)
	}

	var approvals []models.ApprovedEmail
	if err := query.Order("created_at DESC").Find(&approvals).Error; err != nil {
		return nil, fmt.Errorf("failed to list approved emails: %w", err)
	}
	return approvals, nil
}

func (r *ApprovedEmailPostgres) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.ApprovedEmail{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete approved email: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkRegistered is a conditional update so the approved -> registered
// transition can only ever happen once.
func (r *ApprovedEmailPostgres) MarkRegistered(ctx context.Context, email string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.ApprovedEmail{}).
		Where("email = ? AND status <> ?", email, models.ApprovalRegistered).
		Updates(map[string]interface{}{
			"status":        models.ApprovalRegistered,
			"registered_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark email registered: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
