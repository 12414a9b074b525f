package models

import (
	"time"

	"gorm.io/datatypes"
)

type EmailBatchStatus string

const (
	EmailBatchDispatched EmailBatchStatus = "dispatched"
	EmailBatchCompleted  EmailBatchStatus = "completed"
)

// EmailBatch is the audit record of one bulk send. Recipients are stored as a
// JSON array; per-recipient delivery results only bump the counters.
type EmailBatch struct {
	ID           string           `json:"id" gorm:"primaryKey;size:64"`
	ClassCode    string           `json:"class_code" gorm:"index;not null;size:40"`
	Subject      string           `json:"subject" gorm:"not null;size:200"`
	Recipients   datatypes.JSON   `json:"recipients" gorm:"not null"`
	RequestedBy  string           `json:"requested_by" gorm:"index;size:64"`
	Status       EmailBatchStatus `json:"status" gorm:"not null;size:20;default:dispatched"`
	SuccessCount int              `json:"success_count"`
	FailureCount int              `json:"failure_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (EmailBatch) TableName() string {
	return "email_batches"
}
