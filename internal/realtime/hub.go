package realtime

import "sync"

// Hub tracks connected sessions and their push interests. Every session is
// implicitly interested in its user's conversation-list view; on top of
// that it may watch the single conversation it currently has open. The hub
// filters events server-side so a session only ever receives what it
// registered for.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session            // sessionID -> session
	users    map[string]map[string]*Session // userID -> sessionID -> session
	watchers map[string]map[string]*Session // conversationID -> sessionID -> session
	watching map[string]string              // sessionID -> conversationID
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		users:    make(map[string]map[string]*Session),
		watchers: make(map[string]map[string]*Session),
		watching: make(map[string]string),
	}
}

// Attach registers a session. Unlike a one-socket-per-user registry, every
// tab keeps its own session so multi-tab delivery behaves correctly.
func (h *Hub) Attach(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	userSet := h.users[s.UserID]
	if userSet == nil {
		userSet = make(map[string]*Session)
		h.users[s.UserID] = userSet
	}
	userSet[s.ID] = s
	h.mu.Unlock()
}

// Detach removes a session and drops its interests.
func (h *Hub) Detach(s *Session) {
	h.mu.Lock()
	h.detachLocked(s.ID)
	h.mu.Unlock()
}

// Watch points the session's open-conversation interest at the given
// conversation, replacing any previous one. Closing a view is just
// Unwatch; in-flight operations are never cancelled by it.
func (h *Hub) Watch(conversationID string, s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.ID]; !ok {
		h.mu.Unlock()
		return
	}
	h.unwatchLocked(s.ID)

	room := h.watchers[conversationID]
	if room == nil {
		room = make(map[string]*Session)
		h.watchers[conversationID] = room
	}
	room[s.ID] = s
	h.watching[s.ID] = conversationID
	h.mu.Unlock()
}

// Unwatch clears the session's open-conversation interest.
func (h *Hub) Unwatch(s *Session) {
	h.mu.Lock()
	h.unwatchLocked(s.ID)
	h.mu.Unlock()
}

// BroadcastToConversation delivers payload to every session currently
// watching the conversation. Returns the number of deliveries.
func (h *Hub) BroadcastToConversation(conversationID string, payload []byte) int {
	h.mu.RLock()
	room := h.watchers[conversationID]
	targets := make([]*Session, 0, len(room))
	for _, s := range room {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if err := s.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// BroadcastToUser delivers payload to every session of the user.
func (h *Hub) BroadcastToUser(userID string, payload []byte) int {
	h.mu.RLock()
	userSet := h.users[userID]
	targets := make([]*Session, 0, len(userSet))
	for _, s := range userSet {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if err := s.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates all tracked sessions and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.users = make(map[string]map[string]*Session)
	h.watchers = make(map[string]map[string]*Session)
	h.watching = make(map[string]string)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close(1001, "hub shutdown")
	}
}

func (h *Hub) detachLocked(sessionID string) {
	s, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	delete(h.sessions, sessionID)

	if userSet, ok := h.users[s.UserID]; ok {
		delete(userSet, sessionID)
		if len(userSet) == 0 {
			delete(h.users, s.UserID)
		}
	}
	h.unwatchLocked(sessionID)
}

func (h *Hub) unwatchLocked(sessionID string) {
	conversationID, ok := h.watching[sessionID]
	if !ok {
		return
	}
	delete(h.watching, sessionID)
	if room, ok := h.watchers[conversationID]; ok {
		delete(room, sessionID)
		if len(room) == 0 {
			delete(h.watchers, conversationID)
		}
	}
}
