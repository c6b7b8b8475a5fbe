package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/realtime"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/services"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/pkg/logger"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ChatHub is the shared session registry, set once from main.
var ChatHub *realtime.Hub

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin enforcement rides on the JWT; sockets without a valid
		// token never get attached.
		return true
	},
}

const socketReadTimeout = 60 * time.Second

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
}

type ackFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// ChatSocket upgrades the connection and serves push frames until the
// client disconnects. Clients register interest with watch/unwatch frames;
// list-level refresh signals arrive regardless of what is watched.
func ChatSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}
	claims, err := utils.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ws, err := chatUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the response.
		return
	}

	sess := realtime.NewSession(claims.UserID, ws)
	ChatHub.Attach(sess)
	sess.Start()
	defer func() {
		ChatHub.Detach(sess)
		sess.Close(websocket.CloseNormalClosure, "session closed")
	}()

	logger.Debug().Str("user_id", claims.UserID).Str("session_id", sess.ID).Msg("socket attached")

	ws.SetReadLimit(1 << 16)
	_ = ws.SetReadDeadline(time.Now().Add(socketReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(socketReadTimeout))
	})

	if payload, err := json.Marshal(ackFrame{Type: "connected"}); err == nil {
		_ = sess.Send(payload)
	}

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
				errors.Is(err, websocket.ErrCloseSent) {
				return
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			replySocketError(sess, "bad_request", "invalid payload")
			continue
		}

		switch frame.Type {
		case "watch":
			handleWatch(sess, claims.UserID, frame.ConversationID)
		case "unwatch":
			ChatHub.Unwatch(sess)
			if payload, err := json.Marshal(ackFrame{Type: "unwatched"}); err == nil {
				_ = sess.Send(payload)
			}
		default:
			replySocketError(sess, "unsupported_type", "unknown frame type")
		}
	}
}

func handleWatch(sess *realtime.Session, userID, conversationID string) {
	if conversationID == "" {
		replySocketError(sess, "bad_request", "conversationId is required")
		return
	}

	// Only participants may watch a conversation.
	if _, err := services.GetConversation(conversationID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotAParticipant):
			replySocketError(sess, "forbidden", "not a participant in this conversation")
		case errors.Is(err, services.ErrNotFound):
			replySocketError(sess, "not_found", "conversation not found")
		default:
			replySocketError(sess, "internal_error", "failed to resolve conversation")
		}
		return
	}

	ChatHub.Watch(conversationID, sess)
	if payload, err := json.Marshal(ackFrame{Type: "watching", ConversationID: conversationID}); err == nil {
		_ = sess.Send(payload)
	}
}

func replySocketError(sess *realtime.Session, code, message string) {
	if payload, err := json.Marshal(errorFrame{Type: "error", Code: code, Error: message}); err == nil {
		_ = sess.Send(payload)
	}
}
