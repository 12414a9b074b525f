package models

import (
	"time"
)

type ApprovalStatus string

const (
	ApprovalPending    ApprovalStatus = "pending"
	ApprovalApproved   ApprovalStatus = "approved"
	ApprovalRegistered ApprovalStatus = "registered"
)

// ApprovedEmail is one row of the registration whitelist. The transition to
// "registered" is one-way and happens exactly once, at successful
// self-registration with a matching email.
type ApprovedEmail struct {
	ID               string         `json:"id" gorm:"primaryKey;size:64"`
	Email            string         `json:"email" gorm:"uniqueIndex;not null;size:255"`
	ClassCode        string         `json:"class_code" gorm:"index;not null;size:40"`
	FullName         string         `json:"full_name" gorm:"size:100"`
	RollNumber       string         `json:"roll_number" gorm:"size:40"`
	ApprovedByUserID string         `json:"approved_by" gorm:"index;not null;size:64"`
	Status           ApprovalStatus `json:"status" gorm:"not null;size:20;default:pending"`
	RegisteredAt     *time.Time     `json:"registered_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ApprovedEmail) TableName() string {
	return "approved_emails"
}

func (a *ApprovedEmail) Registered() bool {
	return a.Status == ApprovalRegistered
}
