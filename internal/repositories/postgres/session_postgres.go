package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/collegehub-edu/portal-service/internal/models"
	"github.com/collegehub-edu/portal-service/internal/repositories"
)

type SessionPostgres struct {
	db *gorm.DB
}

func NewSessionPostgres(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgres{db: db}
}

func (r *SessionPostgres) ListByUser(ctx context.Context, userID string) ([]models.RefreshSession, error) {
	var sessions []models.RefreshSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("expires_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list refresh sessions: %w", err)
	}
	return sessions, nil
}

func (r *SessionPostgres) Append(ctx context.Context, session *models.RefreshSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to append refresh session: %w", err)
	}
	return nil
}

// Remove is the rotation primitive: a conditional delete keyed on the old
// token's hash. RowsAffected decides which of two concurrent exchanges of the
// same token wins.
func (r *SessionPostgres) Remove(ctx context.Context, userID, tokenHash string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND token_hash = ?", userID, tokenHash).
		Delete(&models.RefreshSession{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to remove refresh session: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *SessionPostgres) PruneExpired(ctx context.Context, userID string, now time.Time) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at <= ?", userID, now).
		Delete(&models.RefreshSession{}).Error
	if err != nil {
		return fmt.Errorf("failed to prune refresh sessions: %w", err)
	}
	return nil
}

func (r *SessionPostgres) Trim(ctx context.Context, userID string, max int) error {
	if max <= 0 {
		return nil
	}
	// Keep the max sessions with the latest expiry, evict the rest.
	sub := r.db.WithContext(ctx).Model(&models.RefreshSession{}).
		Select("id").
		Where("user_id = ?", userID).
		Order("expires_at DESC").
		Limit(max)
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id NOT IN (?)", userID, sub).
		Delete(&models.RefreshSession{}).Error
	if err != nil {
		return fmt.Errorf("failed to trim refresh sessions: %w", err)
	}
	return nil
}
