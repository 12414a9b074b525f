package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/collegehub-edu/portal-service/internal/config"
	"github.com/collegehub-edu/portal-service/internal/events"
	"github.com/collegehub-edu/portal-service/internal/models"
	"github.com/collegehub-edu/portal-service/internal/validator"
)

// fakeSender records deliveries and can fail a recipient a fixed number of
// times before succeeding.
type fakeSender struct {
	mu        sync.Mutex
	sent      []string
	attempts  map[string]int
	failTimes map[string]int
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		attempts:  make(map[string]int),
		failTimes: make(map[string]int),
	}
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[to]++
	if f.failTimes[to] >= f.attempts[to] {
		return fmt.Errorf("smtp unavailable")
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) attemptCount(to string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[to]
}

func newMailerTestEnv(t *testing.T, sender EmailSender) (*fakeRepository, MailerService) {
	t.Helper()
	repo := newFakeRepository()
	bus := events.NewGoChannelBus(discardLogger())
	t.Cleanup(func() { _ = bus.Close() })

	cfg := config.SMTPConfig{
		MaxRetries:    2,
		BaseBackoff:   time.Millisecond,
		WorkerCount:   2,
		DispatchTopic: "email.dispatch.test",
	}
	svc := NewMailerService(repo, bus, sender, cfg, discardLogger(), validator.New())
	return repo, svc
}

func seedRecipients(repo *fakeRepository, classCode string, emails ...string) {
	for i, email := range emails {
		_ = repo.Approval().Create(context.Background(), &models.ApprovedEmail{
			ID:               fmt.Sprintf("approval-%d", i),
			Email:            email,
			ClassCode:        classCode,
			ApprovedByUserID: "staff-1",
			Status:           models.ApprovalApproved,
		})
	}
}

func waitForBatch(t *testing.T, repo *fakeRepository, batchID string) *models.EmailBatch {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		batch, err := repo.EmailBatch().GetByID(context.Background(), batchID)
		if err == nil && batch.Status == models.EmailBatchCompleted {
			return batch
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("batch %s did not complete in time", batchID)
	return nil
}

func TestSendBulkDeliversToAllRecipients(t *testing.T) {
	sender := newFakeSender()
	repo, svc := newMailerTestEnv(t, sender)
	seedRecipients(repo, "CS-2025", "a@example.edu", "b@example.edu", "c@example.edu")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.RunWorker(ctx) }()

	batch, err := svc.SendBulk(context.Background(), &BulkEmailRequest{
		ClassCode: "cs-2025",
		Subject:   "Exam schedule",
		Message:   "Finals start Monday.",
	}, "staff-1")
	if err != nil {
		t.Fatalf("send bulk error: %v", err)
	}
	if batch.Status != models.EmailBatchDispatched {
		t.Fatalf("fresh batch must be dispatched, got %q", batch.Status)
	}

	done := waitForBatch(t, repo, batch.ID)
	if done.SuccessCount != 3 || done.FailureCount != 0 {
		t.Fatalf("unexpected counters %d/%d", done.SuccessCount, done.FailureCount)
	}
	if sender.sentCount() != 3 {
		t.Fatalf("expected 3 deliveries, got %d", sender.sentCount())
	}
}

func TestSendBulkRetriesTransientFailures(t *testing.T) {
	sender := newFakeSender()
	sender.failTimes["flaky@example.edu"] = 1
	repo, svc := newMailerTestEnv(t, sender)
	seedRecipients(repo, "CS-2025", "flaky@example.edu")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.RunWorker(ctx) }()

	batch, err := svc.SendBulk(context.Background(), &BulkEmailRequest{
		ClassCode: "CS-2025",
		Subject:   "Reminder",
		Message:   "Hello.",
	}, "staff-1")
	if err != nil {
		t.Fatalf("send bulk error: %v", err)
	}

	done := waitForBatch(t, repo, batch.ID)
	if done.SuccessCount != 1 || done.FailureCount != 0 {
		t.Fatalf("retry must recover the delivery, got %d/%d", done.SuccessCount, done.FailureCount)
	}
	if got := sender.attemptCount("flaky@example.edu"); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestSendBulkRecordsPermanentFailures(t *testing.T) {
	sender := newFakeSender()
	sender.failTimes["dead@example.edu"] = 100
	repo, svc := newMailerTestEnv(t, sender)
	seedRecipients(repo, "CS-2025", "dead@example.edu", "ok@example.edu")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.RunWorker(ctx) }()

	batch, err := svc.SendBulk(context.Background(), &BulkEmailRequest{
		ClassCode: "CS-2025",
		Subject:   "Reminder",
		Message:   "Hello.",
	}, "staff-1")
	if err != nil {
		t.Fatalf("send bulk error: %v", err)
	}

	done := waitForBatch(t, repo, batch.ID)
	if done.SuccessCount != 1 || done.FailureCount != 1 {
		t.Fatalf("unexpected counters %d/%d", done.SuccessCount, done.FailureCount)
	}
}

func TestSendBulkWithoutRecipients(t *testing.T) {
	_, svc := newMailerTestEnv(t, newFakeSender())

	_, err := svc.SendBulk(context.Background(), &BulkEmailRequest{
		ClassCode: "EMPTY-2025",
		Subject:   "Reminder",
		Message:   "Hello.",
	}, "staff-1")
	appErr, ok := AsAppError(err)
	if !ok || appErr.Status != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
	if appErr.Message != "No recipients found for this class." {
		t.Fatalf("unexpected message %q", appErr.Message)
	}
}
