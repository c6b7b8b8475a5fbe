package services

import (
	"strings"
	"time"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/database"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/models"
	"gorm.io/gorm"
)

// FetchHistory returns every message in the conversation, oldest first.
// Fetching history is the read action: it marks the counterpart's unread
// messages as read for this viewer (there is no separate mark-read call).
func FetchHistory(conversationID, viewerID string) ([]models.Message, error) {
	conv, err := GetConversation(conversationID, viewerID)
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	if err := database.DB.
		Where("conversation_id = ?", conv.ID).
		Order("created_at asc, id asc").
		Find(&messages).Error; err != nil {
		return nil, storeErr(err)
	}

	if _, err := markRead(conv, viewerID); err != nil {
		return nil, err
	}
	return messages, nil
}

// Send appends a message to the conversation and bumps its activity
// timestamp in one transaction, so a failed send leaves no partial state.
// This is the only write path for message content.
func Send(conversationID, senderID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := GetConversation(conversationID, senderID)
	if err != nil {
		return nil, err
	}

	msg := models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conv.ID).
			Update("last_activity_at", msg.CreatedAt).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}

	database.Events.Publish(database.Change{
		Table: database.TableMessages,
		Kind:  database.ChangeInsert,
		Row:   msg,
	})
	return &msg, nil
}
