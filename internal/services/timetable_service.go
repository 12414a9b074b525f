package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/collegehub-edu/portal-service/internal/models"
	"github.com/collegehub-edu/portal-service/internal/repositories"
	"github.com/collegehub-edu/portal-service/internal/validator"
)

type TimetableEventCreateRequest = validator.TimetableEventCreateRequest
type TimetableEventUpdateRequest = validator.TimetableEventUpdateRequest

const maxEventDuration = 24 * time.Hour

// TimetableService is the class-scoped scheduling CRUD with overlap conflict
// detection.
type TimetableService interface {
	List(ctx context.Context, classCode string) ([]models.TimetableEvent, error)
	Create(ctx context.Context, req *TimetableEventCreateRequest, createdBy string) (*models.TimetableEvent, error)
	Update(ctx context.Context, id string, req *TimetableEventUpdateRequest, updatedBy string) (*models.TimetableEvent, error)
	Delete(ctx context.Context, id string) error
}

type timetableService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTimetableService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) TimetableService {
	return &timetableService{repo: repo, logger: logger, validator: v}
}

func (s *timetableService) List(ctx context.Context, classCode string) ([]models.TimetableEvent, error) {
	classCode = strings.ToUpper(strings.TrimSpace(classCode))
	if classCode == "" {
		return nil, NewValidationError("classCode query parameter is required.")
	}
	return s.repo.Timetable().ListByClass(ctx, classCode)
}

func (s *timetableService) Create(ctx context.Context, req *TimetableEventCreateRequest, createdBy string) (*models.TimetableEvent, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.ClassCode = strings.ToUpper(strings.TrimSpace(req.ClassCode))
	req.Room = strings.TrimSpace(req.Room)
	if ve := s.validator.Validate(req); ve != nil {
		return nil, NewValidationError(ve.Error())
	}
	if err := validateEventWindow(req.Start, req.End); err != nil {
		return nil, err
	}

	conflict, err := s.repo.Timetable().FindConflict(ctx, req.ClassCode, req.Start, req.End, "")
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, NewConflictError(fmt.Sprintf(
			"Conflict detected: %q is already scheduled for %s in this time slot.",
			conflict.Title, req.ClassCode))
	}

	event := &models.TimetableEvent{
		ID:        uuid.NewString(),
		Title:     req.Title,
		ClassCode: req.ClassCode,
		Room:      req.Room,
		Start:     req.Start,
		End:       req.End,
		CreatedBy: createdBy,
		UpdatedBy: createdBy,
	}
	if err := s.repo.Timetable().Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info("timetable event created", "event_id", event.ID, "class_code", event.ClassCode)
	return event, nil
}

func (s *timetableService) Update(ctx context.Context, id string, req *TimetableEventUpdateRequest, updatedBy string) (*models.TimetableEvent, error) {
	if ve := s.validator.Validate(req); ve != nil {
		return nil, NewValidationError(ve.Error())
	}

	event, err := s.repo.Timetable().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("Timetable event not found.")
		}
		return nil, fmt.Errorf("failed to look up timetable event: %w", err)
	}

	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Room != nil {
		event.Room = strings.TrimSpace(*req.Room)
	}
	if req.Start != nil {
		event.Start = *req.Start
	}
	if req.End != nil {
		event.End = *req.End
	}
	if err := validateEventWindow(event.Start, event.End); err != nil {
		return nil, err
	}

	conflict, err := s.repo.Timetable().FindConflict(ctx, event.ClassCode, event.Start, event.End, event.ID)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, NewConflictError(fmt.Sprintf(
			"Conflict detected: %q is already scheduled for %s in this time slot.",
			conflict.Title, event.ClassCode))
	}

	event.UpdatedBy = updatedBy
	if err := s.repo.Timetable().Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *timetableService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Timetable().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("Timetable event not found.")
		}
		return err
	}
	return nil
}

func validateEventWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return NewValidationError("start and end are required.")
	}
	if !end.After(start) {
		return NewValidationError("end must be after start.")
	}
	if end.Sub(start) > maxEventDuration {
		return NewValidationError("Event duration cannot exceed 24 hours.")
	}
	return nil
}
