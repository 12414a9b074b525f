package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/collegehub-edu/portal-service/internal/cache"
	"github.com/collegehub-edu/portal-service/internal/models"
	"github.com/collegehub-edu/portal-service/internal/repositories"
	"github.com/collegehub-edu/portal-service/internal/validator"
)

type ApprovedEmailCreateRequest = validator.ApprovedEmailCreateRequest
type BulkApprovalRequest = validator.BulkApprovalRequest
type BulkApprovalEntry = validator.BulkApprovalEntry

const statusCacheTTL = 2 * time.Minute

type BulkFailure struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

type BulkApprovalResult struct {
	Successful []models.ApprovedEmail `json:"successful"`
	Duplicates []string               `json:"duplicates"`
	Failed     []BulkFailure          `json:"failed"`
}

// ApprovalStatus is the public pre-registration probe result.
type ApprovalStatus struct {
	IsApproved   bool       `json:"isApproved"`
	Status       string     `json:"status"`
	ClassCode    string     `json:"classCode,omitempty"`
	Message      string     `json:"message"`
	RegisteredAt *time.Time `json:"registeredAt,omitempty"`
}

// ApprovalService manages the registration whitelist.
type ApprovalService interface {
	Add(ctx context.Context, req *ApprovedEmailCreateRequest, approvedBy string) (*models.ApprovedEmail, error)
	BulkAdd(ctx context.Context, req *BulkApprovalRequest, approvedBy string) (*BulkApprovalResult, error)
	BulkAddFromWorkbook(ctx context.Context, r io.Reader, defaultClassCode, approvedBy string) (*BulkApprovalResult, error)
	List(ctx context.Context, classCode, approvedBy string) ([]models.ApprovedEmail, error)
	Delete(ctx context.Context, id, requestedBy string) error
	CheckStatus(ctx context.Context, email string) (*ApprovalStatus, error)
}

type approvalService struct {
	repo        repositories.Repository
	statusCache *cache.CacheHelper
	logger      *slog.Logger
	validator   *validator.Validator
}

func NewApprovalService(repo repositories.Repository, statusCache *cache.CacheHelper, logger *slog.Logger, v *validator.Validator) ApprovalService {
	return &approvalService{
		repo:        repo,
		statusCache: statusCache,
		logger:      logger,
		validator:   v,
	}
}

func (s *approvalService) Add(ctx context.Context, req *ApprovedEmailCreateRequest, approvedBy string) (*models.ApprovedEmail, error) {
	normalizeApprovalRequest(req)
	if ve := s.validator.Validate(req); ve != nil {
		return nil, NewValidationError(ve.Error())
	}

	if err := s.checkAvailable(ctx, req.Email); err != nil {
		return nil, err
	}

	approval := &models.ApprovedEmail{
		ID:               uuid.NewString(),
		Email:            req.Email,
		ClassCode:        req.ClassCode,
		FullName:         req.FullName,
		RollNumber:       req.RollNumber,
		ApprovedByUserID: approvedBy,
		Status:           models.ApprovalApproved,
	}
	if err := s.repo.Approval().Create(ctx, approval); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("This email is already in the approval list.")
		}
		return nil, fmt.Errorf("failed to create approval: %w", err)
	}

	_ = s.statusCache.Delete(ctx, approval.Email)
	s.logger.Info("approved email added", "email", approval.Email, "class_code", approval.ClassCode)
	return approval, nil
}

func (s *approvalService) BulkAdd(ctx context.Context, req *BulkApprovalRequest, approvedBy string) (*BulkApprovalResult, error) {
	req.ClassCode = strings.ToUpper(strings.TrimSpace(req.ClassCode))
	if ve := s.validator.Validate(req); ve != nil {
		return nil, NewValidationError(ve.Error())
	}

	result := &BulkApprovalResult{
		Successful: []models.ApprovedEmail{},
		Duplicates: []string{},
		Failed:     []BulkFailure{},
	}

	for _, entry := range req.Emails {
		classCode := entry.ClassCode
		if classCode == "" {
			classCode = req.ClassCode
		}
		rowReq := &ApprovedEmailCreateRequest{
			Email:      entry.Email,
			ClassCode:  classCode,
			FullName:   entry.FullName,
			RollNumber: entry.RollNumber,
		}
		approval, err := s.Add(ctx, rowReq, approvedBy)
		if err == nil {
			result.Successful = append(result.Successful, *approval)
			continue
		}
		if appErr, ok := AsAppError(err); ok {
			if appErr.Status == 409 {
				result.Duplicates = append(result.Duplicates, NormalizeEmail(entry.Email))
			} else {
				result.Failed = append(result.Failed, BulkFailure{Email: entry.Email, Reason: appErr.Message})
			}
			continue
		}
		return nil, err
	}
	return result, nil
}

// BulkAddFromWorkbook parses an .xlsx upload. The first sheet is read with
// columns: email, class code, full name, roll number. A header row whose
// first cell reads "email" is skipped.
func (s *approvalService) BulkAddFromWorkbook(ctx context.Context, r io.Reader, defaultClassCode, approvedBy string) (*BulkApprovalResult, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewValidationError("Could not read workbook file.")
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("Workbook has no sheets.")
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, NewValidationError("Could not read workbook rows.")
	}

	entries := make([]BulkApprovalEntry, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "email") {
			continue
		}
		entry := BulkApprovalEntry{Email: strings.TrimSpace(row[0])}
		if len(row) > 1 {
			entry.ClassCode = strings.ToUpper(strings.TrimSpace(row[1]))
		}
		if len(row) > 2 {
			entry.FullName = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			entry.RollNumber = strings.TrimSpace(row[3])
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, NewValidationError("Workbook contains no email rows.")
	}
	if len(entries) > 100 {
		return nil, NewValidationError("Cannot add more than 100 emails at once.")
	}

	return s.BulkAdd(ctx, &BulkApprovalRequest{
		ClassCode: strings.ToUpper(strings.TrimSpace(defaultClassCode)),
		Emails:    entries,
	}, approvedBy)
}

func (s *approvalService) List(ctx context.Context, classCode, approvedBy string) ([]models.ApprovedEmail, error) {
	classCode = strings.ToUpper(strings.TrimSpace(classCode))
	if classCode == "" {
		return nil, NewValidationError("classCode query parameter is required.")
	}
	return s.repo.Approval().List(ctx, repositories.ApprovalFilters{
		ClassCode:  classCode,
		ApprovedBy: approvedBy,
	})
}

func (s *approvalService) Delete(ctx context.Context, id, requestedBy string) error {
	approval, err := s.repo.Approval().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("Approved email not found.")
		}
		return fmt.Errorf("failed to look up approval: %w", err)
	}
	if approval.Registered() {
		return NewConflictError("Cannot delete an email that has already been registered.")
	}
	if approval.ApprovedByUserID != requestedBy {
		return ErrForbidden
	}

	if err := s.repo.Approval().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete approval: %w", err)
	}
	_ = s.statusCache.Delete(ctx, approval.Email)
	return nil
}

func (s *approvalService) CheckStatus(ctx context.Context, email string) (*ApprovalStatus, error) {
	email = NormalizeEmail(email)
	if ve := s.validator.Validate(&struct {
		Email string `validate:"required,email"`
	}{Email: email}); ve != nil {
		return nil, NewValidationError("Invalid email format.")
	}

	var cached ApprovalStatus
	if hit, err := s.statusCache.Get(ctx, email, &cached); err == nil && hit {
		return &cached, nil
	}

	status, err := s.lookupStatus(ctx, email)
	if err != nil {
		return nil, err
	}
	_ = s.statusCache.Set(ctx, email, status, statusCacheTTL)
	return status, nil
}

func (s *approvalService) lookupStatus(ctx context.Context, email string) (*ApprovalStatus, error) {
	approval, err := s.repo.Approval().GetByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &ApprovalStatus{
				IsApproved: false,
				Status:     "not_approved",
				Message:    "Email has not been approved for registration.",
			}, nil
		}
		return nil, fmt.Errorf("failed to look up approval: %w", err)
	}

	if approval.Registered() {
		return &ApprovalStatus{
			IsApproved:   false,
			Status:       string(models.ApprovalRegistered),
			Message:      "This email has already been registered.",
			RegisteredAt: approval.RegisteredAt,
		}, nil
	}

	return &ApprovalStatus{
		IsApproved: true,
		Status:     string(models.ApprovalApproved),
		ClassCode:  approval.ClassCode,
		Message:    "Email is approved for registration.",
	}, nil
}

func (s *approvalService) checkAvailable(ctx context.Context, email string) error {
	existing, err := s.repo.Approval().GetByEmail(ctx, email)
	if err == nil {
		if existing.Registered() {
			return NewConflictError("This email has already been registered.")
		}
		return NewConflictError("This email is already in the approval list.")
	}
	if !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to look up approval: %w", err)
	}

	hasUser, err := s.repo.User().ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if hasUser {
		return NewConflictError("This email is already registered as a user.")
	}
	return nil
}

func normalizeApprovalRequest(req *ApprovedEmailCreateRequest) {
	req.Email = NormalizeEmail(req.Email)
	req.ClassCode = strings.ToUpper(strings.TrimSpace(req.ClassCode))
	req.FullName = strings.TrimSpace(req.FullName)
	req.RollNumber = strings.TrimSpace(req.RollNumber)
}
