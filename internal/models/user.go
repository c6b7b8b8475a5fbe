package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleWorker   Role = "WORKER"
	RoleEmployer Role = "EMPLOYER"
	RoleAdmin    Role = "ADMIN"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// User is a marketplace account. Registration, profile editing and the
// admin approval workflow live in the onboarding service; this backend only
// reads the rows it produces.
type User struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex" json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`

	Role   Role           `gorm:"type:text;default:'WORKER'" json:"role"`
	Status ApprovalStatus `gorm:"type:text;default:'PENDING'" json:"status"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
