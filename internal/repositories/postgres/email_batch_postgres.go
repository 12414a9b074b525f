package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/collegehub-edu/portal-service/internal/models"
	"github.com/collegehub-edu/portal-service/internal/repositories"
)

type EmailBatchPostgres struct {
	db *gorm.DB
}

func NewEmailBatchPostgres(db *gorm.DB) repositories.EmailBatchRepository {
	return &EmailBatchPostgres{db: db}
}

func (r *EmailBatchPostgres) Create(ctx context.Context, batch *models.EmailBatch) error {
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		return fmt.Errorf("failed to create email batch: %w", err)
	}
	return nil
}

func (r *EmailBatchPostgres) GetByID(ctx context.Context, id string) (*models.EmailBatch, error) {
	var batch models.EmailBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *EmailBatchPostgres) RecordResult(ctx context.Context, id string, delivered bool) error {
	column := "success_count"
	if !delivered {
		column = "failure_count"
	}
	err := r.db.WithContext(ctx).Model(&models.EmailBatch{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to record email result: %w", err)
	}
	return nil
}

func (r *EmailBatchPostgres) MarkCompleted(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&models.EmailBatch{}).
		Where("id = ?", id).
		Update("status", models.EmailBatchCompleted).Error
	if err != nil {
		return fmt.Errorf("failed to mark email batch completed: %w", err)
	}
	return nil
}
