package services

import (
	"time"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/database"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/models"
)

// MarkRead stamps every unread counterpart message in the conversation as
// read by the viewer. Returns how many messages were affected; zero on a
// repeat call with no new messages in between.
func MarkRead(conversationID, viewerID string) (int64, error) {
	conv, err := GetConversation(conversationID, viewerID)
	if err != nil {
		return 0, err
	}
	return markRead(conv, viewerID)
}

// markRead is the shared implementation behind MarkRead and FetchHistory.
// The update is a single conditional statement: the read_at IS NULL guard
// keeps a message sent concurrently with the read from being stamped
// before the viewer's history actually included it, and a failure leaves
// every count unchanged rather than partially cleared.
func markRead(conv *models.Conversation, viewerID string) (int64, error) {
	counterpart := conv.Counterpart(viewerID)
	now := time.Now()

	res := database.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id = ? AND read_at IS NULL", conv.ID, counterpart).
		Update("read_at", now)
	if res.Error != nil {
		return 0, storeErr(res.Error)
	}

	if res.RowsAffected > 0 {
		// The sender of the read messages is the one who cares; the row on
		// the feed carries what fan-out needs to target their sessions.
		database.Events.Publish(database.Change{
			Table: database.TableMessages,
			Kind:  database.ChangeUpdate,
			Row: models.Message{
				ConversationID: conv.ID,
				SenderID:       counterpart,
				ReadAt:         &now,
			},
		})
	}
	return res.RowsAffected, nil
}

// UnreadCount is the number of counterpart messages the viewer has not
// read. Always computed against the message log; a cached badge count
// drifting from the log is a user-visible bug.
func UnreadCount(conversationID, viewerID string) (int64, error) {
	conv, err := GetConversation(conversationID, viewerID)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := database.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id = ? AND read_at IS NULL", conv.ID, conv.Counterpart(viewerID)).
		Count(&count).Error; err != nil {
		return 0, storeErr(err)
	}
	return count, nil
}
