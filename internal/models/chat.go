package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is the single message thread between one worker and one
// employer about one job. The composite unique index backs the
// insert-if-absent semantics of the directory: concurrent creates for the
// same triple collapse to one row.
type Conversation struct {
	ID         string `gorm:"primaryKey;type:text" json:"id"`
	JobID      string `gorm:"type:text;not null;uniqueIndex:idx_conversation_triple" json:"jobId"`
	WorkerID   string `gorm:"type:text;not null;uniqueIndex:idx_conversation_triple;index" json:"workerId"`
	EmployerID string `gorm:"type:text;not null;uniqueIndex:idx_conversation_triple;index" json:"employerId"`

	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `gorm:"index" json:"lastActivityAt"`

	// Relations
	Job      Job  `gorm:"foreignKey:JobID" json:"-"`
	Worker   User `gorm:"foreignKey:WorkerID" json:"-"`
	Employer User `gorm:"foreignKey:EmployerID" json:"-"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.LastActivityAt.IsZero() {
		c.LastActivityAt = time.Now()
	}
	return
}

// HasParticipant reports whether the user is one of the two parties.
func (c *Conversation) HasParticipant(userID string) bool {
	return userID == c.WorkerID || userID == c.EmployerID
}

// Counterpart returns the other party's ID. Callers must have checked
// participation first.
func (c *Conversation) Counterpart(userID string) string {
	if userID == c.WorkerID {
		return c.EmployerID
	}
	return c.WorkerID
}

// Message is one unit of text inside a conversation. Immutable after
// insert except ReadAt, which transitions null -> time exactly once when
// the recipient fetches history.
type Message struct {
	ID             string `gorm:"primaryKey;type:text" json:"id"`
	ConversationID string `gorm:"index;type:text;not null" json:"conversationId"`
	SenderID       string `gorm:"index;type:text;not null" json:"senderId"`
	Body           string `gorm:"type:text;not null" json:"body"`

	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt"`

	// Relations
	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		// V7 ids sort by creation time, so ordering by (created_at, id)
		// breaks timestamp ties in insertion sequence.
		id, uerr := uuid.NewV7()
		if uerr != nil {
			return uerr
		}
		m.ID = id.String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return
}
