package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleTeacher    UserRole = "teacher"
	RolePromoAdmin UserRole = "promo_admin"
	RoleSuperAdmin UserRole = "super_admin"
)

// StaffRoles may manage approvals, timetables and bulk mail.
var StaffRoles = []UserRole{RoleTeacher, RolePromoAdmin, RoleSuperAdmin}

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RolePromoAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string   `json:"id" gorm:"primaryKey;size:64"`
	FullName     string   `json:"full_name" gorm:"not null;size:100"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string   `json:"-" gorm:"not null;size:100"`
	Role         UserRole `json:"role" gorm:"not null;size:20;default:student"`
	ClassCode    string   `json:"class_code" gorm:"size:40"`
	ClassID      string   `json:"class_id" gorm:"size:40"`

	RefreshSessions []RefreshSession `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// SanitizedUser is the client-facing user representation. It never carries
// the password hash or the refresh session list.
type SanitizedUser struct {
	ID        string   `json:"id"`
	FullName  string   `json:"fullName"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	ClassCode string   `json:"classCode"`
	ClassID   string   `json:"classId"`
}

func (u *User) Sanitize() *SanitizedUser {
	return &SanitizedUser{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		ClassCode: u.ClassCode,
		ClassID:   u.ClassID,
	}
}
