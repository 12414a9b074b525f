package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/collegehub-edu/portal-service/internal/repositories"
)

// PostgresRepository implements the aggregate Repository interface on top of
// a single gorm connection. A transaction-bound copy is handed to
// WithTransaction callbacks.
type PostgresRepository struct {
	db *gorm.DB

	user       repositories.UserRepository
	session    repositories.SessionRepository
	approval   repositories.ApprovedEmailRepository
	timetable  repositories.TimetableRepository
	emailBatch repositories.EmailBatchRepository
}

func NewPostgresRepository(db *gorm.DB) repositories.Repository {
	return &PostgresRepository{
		db:         db,
		user:       NewUserPostgres(db),
		session:    NewSessionPostgres(db),
		approval:   NewApprovedEmailPostgres(db),
		timetable:  NewTimetablePostgres(db),
		emailBatch: NewEmailBatchPostgres(db),
	}
}

func (r *PostgresRepository) User() repositories.UserRepository              { return r.user }
func (r *PostgresRepository) Session() repositories.SessionRepository       { return r.session }
func (r *PostgresRepository) Approval() repositories.ApprovedEmailRepository { return r.approval }
func (r *PostgresRepository) Timetable() repositories.TimetableRepository   { return r.timetable }
func (r *PostgresRepository) EmailBatch() repositories.EmailBatchRepository { return r.emailBatch }

func (r *PostgresRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewPostgresRepository(tx))
	})
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
