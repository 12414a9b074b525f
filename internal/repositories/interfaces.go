package repositories

import (
	"context"
	"time"

	"github.com/collegehub-edu/portal-service/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

// SessionRepository manages the bounded refresh-session list of a user.
type SessionRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.RefreshSession, error)
	Append(ctx context.Context, session *models.RefreshSession) error

	// Remove deletes the session matching (userID, tokenHash) and reports
	// whether a row was actually removed. Rotation relies on this being a
	// single conditional delete: of two concurrent exchanges of the same
	// token, exactly one observes removed == true.
	Remove(ctx context.Context, userID, tokenHash string) (bool, error)

	PruneExpired(ctx context.Context, userID string, now time.Time) error

	// Trim deletes sessions beyond max, keeping those with the latest expiry.
	Trim(ctx context.Context, userID string, max int) error
}

type ApprovalFilters struct {
	ClassCode  string
	ApprovedBy string
}

type ApprovedEmailRepository interface {
	Create(ctx context.Context, approval *models.ApprovedEmail) error
	GetByID(ctx context.Context, id string) (*models.ApprovedEmail, error)
	GetByEmail(ctx context.Context, email string) (*models.ApprovedEmail, error)
	List(ctx context.Context, filters ApprovalFilters) ([]models.ApprovedEmail, error)
	Delete(ctx context.Context, id string) error

	// MarkRegistered flips status to registered exactly once; it reports
	// whether the row transitioned (false when already registered or absent).
	MarkRegistered(ctx context.Context, email string, at time.Time) (bool, error)
}

type TimetableRepository interface {
	Create(ctx context.Context, event *models.TimetableEvent) error
	GetByID(ctx context.Context, id string) (*models.TimetableEvent, error)
	ListByClass(ctx context.Context, classCode string) ([]models.TimetableEvent, error)
	Update(ctx context.Context, event *models.TimetableEvent) error
	Delete(ctx context.Context, id string) error

	// FindConflict returns the first event of the class overlapping
	// [start, end), ignoring ignoreID when non-empty. Nil when none.
	FindConflict(ctx context.Context, classCode string, start, end time.Time, ignoreID string) (*models.TimetableEvent, error)
}

type EmailBatchRepository interface {
	Create(ctx context.Context, batch *models.EmailBatch) error
	GetByID(ctx context.Context, id string) (*models.EmailBatch, error)
	RecordResult(ctx context.Context, id string, delivered bool) error
	MarkCompleted(ctx context.Context, id string) error
}
