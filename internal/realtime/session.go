package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Session wraps one websocket client and serializes outbound writes
// through a buffered channel. A user with several open tabs holds several
// sessions; each carries its own push interests in the hub.
type Session struct {
	ID     string
	UserID string

	ws   *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func NewSession(userID string, ws *websocket.Conn) *Session {
	return &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		ws:     ws,
		send:   make(chan []byte, 128),
		done:   make(chan struct{}),
	}
}

// Start launches the write loop. It must be called exactly once per session.
func (s *Session) Start() {
	go s.writeLoop()
}

// Send enqueues payload for delivery. A session that cannot drain its
// buffer is closed rather than allowed to stall the fan-out; the client
// reconciles by re-fetching when it reconnects.
func (s *Session) Send(payload []byte) error {
	select {
	case <-s.done:
		return errors.New("session closed")
	case s.send <- payload:
		return nil
	default:
		s.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("session buffer exceeded")
	}
}

// Close terminates the session and stops the write loop.
func (s *Session) Close(code int, reason string) {
	// send stays open so concurrent broadcasts race the done channel
	// instead of panicking; the write loop exits via done.
	s.once.Do(func() {
		close(s.done)
		if s.ws != nil {
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
			_ = s.ws.Close()
		}
	})
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case msg := <-s.send:
			if err := s.writeMessage(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.writePing(); err != nil {
				return
			}
		}
	}
}

func (s *Session) writeMessage(payload []byte) error {
	if err := s.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.ws.WriteMessage(websocket.TextMessage, payload)
}

func (s *Session) writePing() error {
	if err := s.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.ws.WriteMessage(websocket.PingMessage, nil)
}
