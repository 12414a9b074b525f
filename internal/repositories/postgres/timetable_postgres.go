package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/collegehub-edu/portal-service/internal/models"
	"github.com/collegehub-edu/portal-service/internal/repositories"
)

type TimetablePostgres struct {
	db *gorm.DB
}

func NewTimetablePostgres(db *gorm.DB) repositories.TimetableRepository {
	return &TimetablePostgres{db: db}
}

func (r *TimetablePostgres) Create(ctx context.Context, event *models.TimetableEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create timetable event: %w", err)
	}
	return nil
}

func (r *TimetablePostgres) GetByID(ctx context.Context, id string) (*models.TimetableEvent, error) {
	var event models.TimetableEvent
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *TimetablePostgres) ListByClass(ctx context.Context, classCode string) ([]models.TimetableEvent, error) {
	var events []models.TimetableEvent
	err := r.db.WithContext(ctx).
		Where("class_code = ?", classCode).
		Order("start ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list timetable events: %w", err)
	}
	return events, nil
}

func (r *TimetablePostgres) Update(ctx context.Context, event *models.TimetableEvent) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("failed to update timetable event: %w", err)
	}
	return nil
}

func (r *TimetablePostgres) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.TimetableEvent{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete timetable event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TimetablePostgres) FindConflict(ctx context.Context, classCode string, start, end time.Time, ignoreID string) (*models.TimetableEvent, error) {
	query := r.db.WithContext(ctx).
		Where("class_code = ? AND start < ? AND \"end\" > ?", classCode, end, start)
	if ignoreID != "" {
		query = query.Where("id <> ?", ignoreID)
	}

	var event models.TimetableEvent
	err := query.First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check timetable conflict: %w", err)
	}
	return &event, nil
}
