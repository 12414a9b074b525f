package repositories

import "context"

// Repository aggregates all per-domain repositories.
type Repository interface {
	User() UserRepository
	Session() SessionRepository
	Approval() ApprovedEmailRepository
	Timetable() TimetableRepository
	EmailBatch() EmailBatchRepository

	// WithTransaction runs fn against a transaction-bound Repository. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}
