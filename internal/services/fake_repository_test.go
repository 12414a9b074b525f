package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/collegehub-edu/portal-service/internal/models"
	"github.com/collegehub-edu/portal-service/internal/repositories"
)

// fakeRepository is an in-memory Repository for service tests. Maps hold
// values, not pointers, so transaction rollback is a snapshot restore.
type fakeRepository struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users     map[string]models.User
	sessions  []models.RefreshSession
	approvals map[string]models.ApprovedEmail
	events    map[string]models.TimetableEvent
	batches   map[string]models.EmailBatch

	nextSessionID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:     make(map[string]models.User),
		approvals: make(map[string]models.ApprovedEmail),
		events:    make(map[string]models.TimetableEvent),
		batches:   make(map[string]models.EmailBatch),
	}
}

func (r *fakeRepository) User() repositories.UserRepository            { return &fakeUserRepo{r} }
func (r *fakeRepository) Session() repositories.SessionRepository      { return &fakeSessionRepo{r} }
func (r *fakeRepository) Approval() repositories.ApprovedEmailRepository {
	return &fakeApprovalRepo{r}
}
func (r *fakeRepository) Timetable() repositories.TimetableRepository { return &fakeTimetableRepo{r} }
func (r *fakeRepository) EmailBatch() repositories.EmailBatchRepository {
	return &fakeEmailBatchRepo{r}
}

// WithTransaction serializes transactions so a rollback never restores state
// that a concurrent transaction has already changed, matching the per-user
// row locking of the real store.
func (r *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	users := copyMap(r.users)
	approvals := copyMap(r.approvals)
	events := copyMap(r.events)
	batches := copyMap(r.batches)
	sessions := append([]models.RefreshSession(nil), r.sessions...)
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.users = users
		r.approvals = approvals
		r.events = events
		r.batches = batches
		r.sessions = sessions
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *fakeRepository) Ping(ctx context.Context) error { return nil }
func (r *fakeRepository) Close() error                   { return nil }

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

type fakeUserRepo struct{ r *fakeRepository }

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, u := range f.r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	f.r.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	u, ok := f.r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, u := range f.r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, u := range f.r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	u, ok := f.r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	f.r.users[id] = u
	return nil
}

type fakeSessionRepo struct{ r *fakeRepository }

func (f *fakeSessionRepo) ListByUser(ctx context.Context, userID string) ([]models.RefreshSession, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []models.RefreshSession
	for _, s := range f.r.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) Append(ctx context.Context, session *models.RefreshSession) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	f.r.nextSessionID++
	session.ID = f.r.nextSessionID
	f.r.sessions = append(f.r.sessions, *session)
	return nil
}

func (f *fakeSessionRepo) Remove(ctx context.Context, userID, tokenHash string) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for i, s := range f.r.sessions {
		if s.UserID == userID && s.TokenHash == tokenHash {
			f.r.sessions = append(f.r.sessions[:i], f.r.sessions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSessionRepo) PruneExpired(ctx context.Context, userID string, now time.Time) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	kept := f.r.sessions[:0]
	for _, s := range f.r.sessions {
		if s.UserID != userID || !s.Expired(now) {
			kept = append(kept, s)
		}
	}
	f.r.sessions = kept
	return nil
}

func (f *fakeSessionRepo) Trim(ctx context.Context, userID string, max int) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var mine, others []models.RefreshSession
	for _, s := range f.r.sessions {
		if s.UserID == userID {
			mine = append(mine, s)
		} else {
			others = append(others, s)
		}
	}
	mine = models.CapSessions(mine, max)
	f.r.sessions = append(others, mine...)
	return nil
}

type fakeApprovalRepo struct{ r *fakeRepository }

func (f *fakeApprovalRepo) Create(ctx context.Context, approval *models.ApprovedEmail) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, a := range f.r.approvals {
		if a.Email == approval.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	f.r.approvals[approval.ID] = *approval
	return nil
}

func (f *fakeApprovalRepo) GetByID(ctx context.Context, id string) (*models.ApprovedEmail, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	a, ok := f.r.approvals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (f *fakeApprovalRepo) GetByEmail(ctx context.Context, email string) (*models.ApprovedEmail, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, a := range f.r.approvals {
		if a.Email == email {
			a := a
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeApprovalRepo) List(ctx context.Context, filters repositories.ApprovalFilters) ([]models.ApprovedEmail, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []models.ApprovedEmail
	for _, a := range f.r.approvals {
		if filters.ClassCode != "" && a.ClassCode != filters.ClassCode {
			continue
		}
		if filters.ApprovedBy != "" && a.ApprovedByUserID != filters.ApprovedBy {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeApprovalRepo) Delete(ctx context.Context, id string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.approvals[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.approvals, id)
	return nil
}

func (f *fakeApprovalRepo) MarkRegistered(ctx context.Context, email string, at time.Time) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for id, a := range f.r.approvals {
		if a.Email == email {
			if a.Status == models.ApprovalRegistered {
				return false, nil
			}
			a.Status = models.ApprovalRegistered
			a.RegisteredAt = &at
			f.r.approvals[id] = a
			return true, nil
		}
	}
	return false, nil
}

type fakeTimetableRepo struct{ r *fakeRepository }

func (f *fakeTimetableRepo) Create(ctx context.Context, event *models.TimetableEvent) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	f.r.events[event.ID] = *event
	return nil
}

func (f *fakeTimetableRepo) GetByID(ctx context.Context, id string) (*models.TimetableEvent, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	e, ok := f.r.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (f *fakeTimetableRepo) ListByClass(ctx context.Context, classCode string) ([]models.TimetableEvent, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []models.TimetableEvent
	for _, e := range f.r.events {
		if e.ClassCode == classCode {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeTimetableRepo) Update(ctx context.Context, event *models.TimetableEvent) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.events[event.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.r.events[event.ID] = *event
	return nil
}

func (f *fakeTimetableRepo) Delete(ctx context.Context, id string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.events[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.events, id)
	return nil
}

func (f *fakeTimetableRepo) FindConflict(ctx context.Context, classCode string, start, end time.Time, ignoreID string) (*models.TimetableEvent, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, e := range f.r.events {
		if e.ClassCode != classCode || e.ID == ignoreID {
			continue
		}
		if e.Overlaps(start, end) {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

type fakeEmailBatchRepo struct{ r *fakeRepository }

func (f *fakeEmailBatchRepo) Create(ctx context.Context, batch *models.EmailBatch) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	f.r.batches[batch.ID] = *batch
	return nil
}

func (f *fakeEmailBatchRepo) GetByID(ctx context.Context, id string) (*models.EmailBatch, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	b, ok := f.r.batches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (f *fakeEmailBatchRepo) RecordResult(ctx context.Context, id string, delivered bool) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	b, ok := f.r.batches[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if delivered {
		b.SuccessCount++
	} else {
		b.FailureCount++
	}
	f.r.batches[id] = b
	return nil
}

func (f *fakeEmailBatchRepo) MarkCompleted(ctx context.Context, id string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	b, ok := f.r.batches[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.Status = models.EmailBatchCompleted
	f.r.batches[id] = b
	return nil
}
