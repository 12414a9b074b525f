package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/collegehub-edu/portal-service/internal/config"
	"github.com/collegehub-edu/portal-service/internal/events"
	"github.com/collegehub-edu/portal-service/internal/models"
	"github.com/collegehub-edu/portal-service/internal/repositories"
	"github.com/collegehub-edu/portal-service/internal/validator"
)

type BulkEmailRequest = validator.BulkEmailRequest

// MailerService fans one bulk send out as per-recipient jobs on the message
// bus; RunWorker consumes them and delivers with bounded retry.
type MailerService interface {
	SendBulk(ctx context.Context, req *BulkEmailRequest, requestedBy string) (*models.EmailBatch, error)
	RunWorker(ctx context.Context) error
}

type mailerService struct {
	repo      repositories.Repository
	bus       *events.Bus
	sender    EmailSender
	cfg       config.SMTPConfig
	logger    *slog.Logger
	validator *validator.Validator
}

func NewMailerService(repo repositories.Repository, bus *events.Bus, sender EmailSender, cfg config.SMTPConfig, logger *slog.Logger, v *validator.Validator) MailerService {
	return &mailerService{
		repo:      repo,
		bus:       bus,
		sender:    sender,
		cfg:       cfg,
		logger:    logger,
		validator: v,
	}
}

func (s *mailerService) SendBulk(ctx context.Context, req *BulkEmailRequest, requestedBy string) (*models.EmailBatch, error) {
	if s.sender == nil {
		return nil, &AppError{Status: http.StatusServiceUnavailable, Message: "Email delivery is not configured."}
	}

	req.ClassCode = strings.ToUpper(strings.TrimSpace(req.ClassCode))
	if ve := s.validator.Validate(req); ve != nil {
		return nil, NewValidationError(ve.Error())
	}

	approvals, err := s.repo.Approval().List(ctx, repositories.ApprovalFilters{ClassCode: req.ClassCode})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}
	recipients := make([]string, 0, len(approvals))
	for _, a := range approvals {
		recipients = append(recipients, a.Email)
	}
	if len(recipients) == 0 {
		return nil, NewNotFoundError("No recipients found for this class.")
	}

	recipientsJSON, err := json.Marshal(recipients)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recipients: %w", err)
	}
	batch := &models.EmailBatch{
		ID:          uuid.NewString(),
		ClassCode:   req.ClassCode,
		Subject:     req.Subject,
		Recipients:  recipientsJSON,
		RequestedBy: requestedBy,
		Status:      models.EmailBatchDispatched,
	}
	if err := s.repo.EmailBatch().Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create email batch: %w", err)
	}

	for _, to := range recipients {
		job := events.EmailJob{
			BatchID: batch.ID,
			To:      to,
			Subject: req.Subject,
			Body:    req.Message,
		}
		msg, err := job.ToMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to encode email job: %w", err)
		}
		if err := s.bus.Publisher.Publish(s.cfg.DispatchTopic, msg); err != nil {
			return nil, fmt.Errorf("failed to publish email job: %w", err)
		}
	}

	s.logger.Info("bulk email dispatched",
		"batch_id", batch.ID, "class_code", req.ClassCode, "recipients", len(recipients))
	return batch, nil
}

// RunWorker consumes email jobs until ctx is cancelled. Worker goroutines
// share one subscription channel.
func (s *mailerService) RunWorker(ctx context.Context) error {
	messages, err := s.bus.Subscriber.Subscribe(ctx, s.cfg.DispatchTopic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to email topic: %w", err)
	}

	workers := s.cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go s.consume(ctx, messages)
	}

	<-ctx.Done()
	return nil
}

func (s *mailerService) consume(ctx context.Context, messages <-chan *message.Message) {
	for msg := range messages {
		job, err := events.EmailJobFromMessage(msg)
		if err != nil {
			s.logger.Error("dropping undecodable email job", "message_id", msg.UUID, "error", err)
			msg.Ack()
			continue
		}

		delivered := s.sendWithRetry(ctx, job)
		if err := s.repo.EmailBatch().RecordResult(ctx, job.BatchID, delivered); err != nil {
			s.logger.Error("failed to record email result", "batch_id", job.BatchID, "error", err)
		}
		s.maybeComplete(ctx, job.BatchID)
		msg.Ack()
	}
}

func (s *mailerService) sendWithRetry(ctx context.Context, job events.EmailJob) bool {
	for attempt := 0; ; attempt++ {
		err := s.sender.Send(job.To, job.Subject, job.Body)
		if err == nil {
			return true
		}
		if attempt >= s.cfg.MaxRetries {
			s.logger.Warn("email delivery failed", "to", job.To, "attempts", attempt+1, "error", err)
			return false
		}

		backoff := s.cfg.BaseBackoff * time.Duration(1<<attempt)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return false
		}
	}
}

func (s *mailerService) maybeComplete(ctx context.Context, batchID string) {
	batch, err := s.repo.EmailBatch().GetByID(ctx, batchID)
	if err != nil {
		return
	}
	var recipients []string
	if err := json.Unmarshal(batch.Recipients, &recipients); err != nil {
		return
	}
	if batch.SuccessCount+batch.FailureCount >= len(recipients) {
		if err := s.repo.EmailBatch().MarkCompleted(ctx, batchID); err != nil {
			s.logger.Error("failed to mark email batch completed", "batch_id", batchID, "error", err)
		}
	}
}
