package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job is a posting by an employer. Managed by the listings service; read
// here to validate conversation participants and decorate the inbox.
type Job struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	EmployerID  string `gorm:"index;type:text;not null" json:"employerId"`
	Title       string `gorm:"not null" json:"title"`
	Location    string `json:"location"`
	Description string `gorm:"type:text" json:"description"`
	IsOpen      bool   `gorm:"default:true" json:"isOpen"`

	// Relations
	Employer User `gorm:"foreignKey:EmployerID" json:"employer,omitempty"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return
}
