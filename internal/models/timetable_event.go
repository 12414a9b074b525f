package models

import (
	"time"
)

// TimetableEvent is a scheduled slot for one class. Two events of the same
// class conflict when their [Start, End) intervals overlap.
type TimetableEvent struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	Title     string    `json:"title" gorm:"not null;size:120"`
	ClassCode string    `json:"class_code" gorm:"index;not null;size:40"`
	Room      string    `json:"room" gorm:"size:60"`
	Start     time.Time `json:"start" gorm:"index;not null"`
	End       time.Time `json:"end" gorm:"not null"`
	CreatedBy string    `json:"created_by" gorm:"size:64"`
	UpdatedBy string    `json:"updated_by" gorm:"size:64"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TimetableEvent) TableName() string {
	return "timetable_events"
}

func (e *TimetableEvent) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && e.End.After(start)
}
