package realtime

import (
	"encoding/json"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/database"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/models"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/pkg/logger"
)

// Server push frame types.
const (
	FrameNewMessage  = "new_message"
	FrameListChanged = "conversation_list_changed"
)

// Frame is the JSON envelope pushed to clients.
type Frame struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversationId,omitempty"`
	Message        *models.Message `json:"message,omitempty"`
}

// Fanout bridges the store change feed to live sessions. It subscribes to
// row-level events on the message and conversation tables and re-dispatches
// each one to the sessions whose interests match. Delivery is best-effort;
// nothing is buffered for sessions that are gone.
type Fanout struct {
	hub    *Hub
	feed   *database.Feed
	cancel func()
}

func NewFanout(hub *Hub, feed *database.Feed) *Fanout {
	return &Fanout{hub: hub, feed: feed}
}

// Start subscribes to the feed and begins dispatching in the background.
func (f *Fanout) Start() {
	ch, cancel := f.feed.Subscribe(256)
	f.cancel = cancel
	go func() {
		for change := range ch {
			f.dispatch(change)
		}
	}()
}

// Stop unsubscribes from the feed, ending the dispatch loop.
func (f *Fanout) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
}

func (f *Fanout) dispatch(change database.Change) {
	switch change.Table {
	case database.TableMessages:
		msg, ok := change.Row.(models.Message)
		if !ok {
			logger.Warn().Str("table", change.Table).Msg("change feed row has unexpected type")
			return
		}
		switch change.Kind {
		case database.ChangeInsert:
			f.onMessageInsert(msg)
		case database.ChangeUpdate:
			f.onMessageRead(msg)
		}
	case database.TableConversations:
		conv, ok := change.Row.(models.Conversation)
		if !ok {
			logger.Warn().Str("table", change.Table).Msg("change feed row has unexpected type")
			return
		}
		if change.Kind == database.ChangeInsert {
			f.notifyListChanged(conv.WorkerID, conv.EmployerID)
		}
	}
}

// onMessageInsert pushes the message to every session with the conversation
// open, then tells both parties' sessions to refresh their lists. Watchers
// append in timestamp order on their side; arrival never reorders.
func (f *Fanout) onMessageInsert(msg models.Message) {
	payload, err := json.Marshal(Frame{
		Type:           FrameNewMessage,
		ConversationID: msg.ConversationID,
		Message:        &msg,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode new_message frame")
		return
	}
	f.hub.BroadcastToConversation(msg.ConversationID, payload)

	var conv models.Conversation
	if err := database.DB.First(&conv, "id = ?", msg.ConversationID).Error; err != nil {
		logger.Error().Err(err).Str("conversation_id", msg.ConversationID).Msg("failed to resolve participants for fan-out")
		return
	}
	f.notifyListChanged(conv.WorkerID, conv.EmployerID)
}

// onMessageRead notifies the sender of the read messages that their
// receipts changed. The reader's own sessions already know.
func (f *Fanout) onMessageRead(msg models.Message) {
	payload, err := json.Marshal(Frame{
		Type:           FrameListChanged,
		ConversationID: msg.ConversationID,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode list-changed frame")
		return
	}
	f.hub.BroadcastToUser(msg.SenderID, payload)
}

func (f *Fanout) notifyListChanged(userIDs ...string) {
	payload, err := json.Marshal(Frame{Type: FrameListChanged})
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode list-changed frame")
		return
	}
	for _, id := range userIDs {
		f.hub.BroadcastToUser(id, payload)
	}
}
