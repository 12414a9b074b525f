package validator

import (
	"time"
)

// RegisterRequest is the self-registration payload.
type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// ApprovedEmailCreateRequest adds one email to the registration whitelist.
type ApprovedEmailCreateRequest struct {
	Email      string `json:"email" validate:"required,email"`
	ClassCode  string `json:"classCode" validate:"required,class_code"`
	FullName   string `json:"fullName" validate:"omitempty,max=100"`
	RollNumber string `json:"rollNumber" validate:"omitempty,max=40"`
}

// BulkApprovalEntry allows per-row class codes; rows without one inherit the
// request-level ClassCode. Rows are validated individually so one bad row
// lands in the failure report instead of rejecting the whole batch.
type BulkApprovalEntry struct {
	Email      string `json:"email"`
	ClassCode  string `json:"classCode"`
	FullName   string `json:"fullName"`
	RollNumber string `json:"rollNumber"`
}

type BulkApprovalRequest struct {
	ClassCode string              `json:"classCode" validate:"omitempty,class_code"`
	Emails    []BulkApprovalEntry `json:"emails" validate:"required,min=1,max=100"`
}

type TimetableEventCreateRequest struct {
	Title     string    `json:"title" validate:"required,min=1,max=120"`
	ClassCode string    `json:"classCode" validate:"required,class_code"`
	Room      string    `json:"room" validate:"omitempty,max=60"`
	Start     time.Time `json:"start" validate:"required"`
	End       time.Time `json:"end" validate:"required"`
}

type TimetableEventUpdateRequest struct {
	Title *string    `json:"title" validate:"omitempty,min=1,max=120"`
	Room  *string    `json:"room" validate:"omitempty,max=60"`
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

type BulkEmailRequest struct {
	ClassCode string `json:"classCode" validate:"required,class_code"`
	Subject   string `json:"subject" validate:"required,max=200"`
	Message   string `json:"message" validate:"required,max=10000"`
}
