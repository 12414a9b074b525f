package services

import (
	"context"
	"testing"
	"time"

	"github.com/collegehub-edu/portal-service/internal/validator"
)

func newTimetableTestEnv() TimetableService {
	return NewTimetableService(newFakeRepository(), discardLogger(), validator.New())
}

func eventWindow(hour, durationHours int) (time.Time, time.Time) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	start := day.Add(time.Duration(hour) * time.Hour)
	return start, start.Add(time.Duration(durationHours) * time.Hour)
}

func TestTimetableCreateAndList(t *testing.T) {
	svc := newTimetableTestEnv()
	start, end := eventWindow(10, 1)

	event, err := svc.Create(context.Background(), &TimetableEventCreateRequest{
		Title:     "Algorithms",
		ClassCode: "cs-2025",
		Room:      "B-204",
		Start:     start,
		End:       end,
	}, "staff-1")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if event.ClassCode != "CS-2025" {
		t.Fatalf("class code must be uppercased, got %q", event.ClassCode)
	}
	if event.CreatedBy != "staff-1" || event.UpdatedBy != "staff-1" {
		t.Fatalf("audit fields not set: %+v", event)
	}

	events, err := svc.List(context.Background(), "CS-2025")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
}

func TestTimetableOverlapConflicts(t *testing.T) {
	svc := newTimetableTestEnv()
	start, end := eventWindow(10, 2)

	if _, err := svc.Create(context.Background(), &TimetableEventCreateRequest{
		Title:     "Algorithms",
		ClassCode: "CS-2025",
		Start:     start,
		End:       end,
	}, "staff-1"); err != nil {
		t.Fatalf("create error: %v", err)
	}

	// Overlapping slot in the same class conflicts.
	overlapStart, overlapEnd := eventWindow(11, 2)
	_, err := svc.Create(context.Background(), &TimetableEventCreateRequest{
		Title:     "Databases",
		ClassCode: "CS-2025",
		Start:     overlapStart,
		End:       overlapEnd,
	}, "staff-1")
	appErr, ok := AsAppError(err)
	if !ok || appErr.Status != 409 {
		t.Fatalf("expected 409 conflict, got %v", err)
	}

	// Back-to-back slots do not conflict.
	nextStart, nextEnd := eventWindow(12, 1)
	if _, err := svc.Create(context.Background(), &TimetableEventCreateRequest{
		Title:     "Databases",
		ClassCode: "CS-2025",
		Start:     nextStart,
		End:       nextEnd,
	}, "staff-1"); err != nil {
		t.Fatalf("adjacent create error: %v", err)
	}

	// Same slot in another class is fine.
	if _, err := svc.Create(context.Background(), &TimetableEventCreateRequest{
		Title:     "Circuits",
		ClassCode: "EE-2025",
		Start:     start,
		End:       end,
	}, "staff-1"); err != nil {
		t.Fatalf("other class create error: %v", err)
	}
}

func TestTimetableUpdate(t *testing.T) {
	svc := newTimetableTestEnv()
	start, end := eventWindow(9, 1)

	first, err := svc.Create(context.Background(), &TimetableEventCreateRequest{
		Title:     "Algorithms",
		ClassCode: "CS-2025",
		Start:     start,
		End:       end,
	}, "staff-1")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	secondStart, secondEnd := eventWindow(11, 1)
	if _, err := svc.Create(context.Background(), &TimetableEventCreateRequest{
		Title:     "Databases",
		ClassCode: "CS-2025",
		Start:     secondStart,
		End:       secondEnd,
	}, "staff-1"); err != nil {
		t.Fatalf("create error: %v", err)
	}

	// Re-saving an event over its own slot is not a conflict.
	title := "Algorithms II"
	updated, err := svc.Update(context.Background(), first.ID, &TimetableEventUpdateRequest{Title: &title}, "staff-2")
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if updated.Title != "Algorithms II" || updated.UpdatedBy != "staff-2" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	// Moving into another event's slot conflicts.
	_, err = svc.Update(context.Background(), first.ID, &TimetableEventUpdateRequest{
		Start: &secondStart,
		End:   &secondEnd,
	}, "staff-2")
	appErr, ok := AsAppError(err)
	if !ok || appErr.Status != 409 {
		t.Fatalf("expected 409 conflict, got %v", err)
	}

	if _, err := svc.Update(context.Background(), "missing", &TimetableEventUpdateRequest{Title: &title}, "staff-1"); err == nil {
		t.Fatalf("expected missing event to 404")
	}
}

func TestTimetableWindowValidation(t *testing.T) {
	svc := newTimetableTestEnv()
	start, _ := eventWindow(10, 1)

	// End before start.
	_, err := svc.Create(context.Background(), &TimetableEventCreateRequest{
		Title:     "Backwards",
		ClassCode: "CS-2025",
		Start:     start,
		End:       start.Add(-time.Hour),
	}, "staff-1")
	if appErr, ok := AsAppError(err); !ok || appErr.Status != 400 {
		t.Fatalf("expected 400, got %v", err)
	}

	// Longer than a day.
	_, err = svc.Create(context.Background(), &TimetableEventCreateRequest{
		Title:     "Marathon",
		ClassCode: "CS-2025",
		Start:     start,
		End:       start.Add(25 * time.Hour),
	}, "staff-1")
	if appErr, ok := AsAppError(err); !ok || appErr.Status != 400 {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestTimetableDelete(t *testing.T) {
	svc := newTimetableTestEnv()
	start, end := eventWindow(10, 1)

	event, err := svc.Create(context.Background(), &TimetableEventCreateRequest{
		Title:     "Algorithms",
		ClassCode: "CS-2025",
		Start:     start,
		End:       end,
	}, "staff-1")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	if err := svc.Delete(context.Background(), event.ID); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	err = svc.Delete(context.Background(), event.ID)
	if appErr, ok := AsAppError(err); !ok || appErr.Status != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
}
