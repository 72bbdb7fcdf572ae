package chat

import (
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/Jarvistrey/Jarvis-AI/internal/model/chat"
)

// Service holds the in-memory context window of every live session.
// It never fails: an unknown session simply starts from the system prompt.
type Service struct {
	mu           sync.RWMutex
	systemPrompt string
	windows      map[string][]*schema.Message
}

// NewService creates a window manager seeding new sessions with systemPrompt.
func NewService(systemPrompt string) *Service {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = chat.DefaultSystemPrompt
	}
	return &Service{
		systemPrompt: systemPrompt,
		windows:      make(map[string][]*schema.Message),
	}
}

// SystemPrompt returns the prompt used to seed new windows.
func (s *Service) SystemPrompt() string {
	return s.systemPrompt
}

// AppendUserTurn makes prompt the latest entry of the session window unless it
// already is.
func (s *Service) AppendUserTurn(sessionID, prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.ensureLocked(sessionID)
	if chat.HasUserTail(window, prompt) {
		return
	}
	s.windows[sessionID] = s.boundLocked(append(window, schema.UserMessage(prompt)))
}

// AppendAssistantTurn records a backend response in the session window.
func (s *Service) AppendAssistantTurn(sessionID, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.ensureLocked(sessionID)
	s.windows[sessionID] = s.boundLocked(append(window, schema.AssistantMessage(response, nil)))
}

// WindowFor returns a copy of at most chat.MaxWindowMessages messages in
// chronological order. A session without history yields the system prompt only.
func (s *Service) WindowFor(sessionID string) []*schema.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	window, ok := s.windows[sessionID]
	if !ok || len(window) == 0 {
		return []*schema.Message{schema.SystemMessage(s.systemPrompt)}
	}
	return chat.Trim(window, chat.MaxWindowMessages)
}

// Has reports whether the session has an in-memory window.
func (s *Service) Has(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.windows[sessionID]
	return ok
}

// Reset drops the in-memory window. Persisted turns are untouched.
func (s *Service) Reset(sessionID string) {
	s.mu.Lock()
	delete(s.windows, sessionID)
	s.mu.Unlock()
}

// Restore rebuilds a window from persisted turns given most recent first.
// An existing window is replaced.
func (s *Service) Restore(sessionID string, turns []chat.Turn) {
	window := make([]*schema.Message, 0, 1+2*len(turns))
	window = append(window, schema.SystemMessage(s.systemPrompt))
	for i := len(turns) - 1; i >= 0; i-- {
		window = append(window,
			schema.UserMessage(turns[i].UserInput),
			schema.AssistantMessage(turns[i].Response, nil),
		)
	}

	s.mu.Lock()
	s.windows[sessionID] = s.boundLocked(window)
	s.mu.Unlock()
}

func (s *Service) ensureLocked(sessionID string) []*schema.Message {
	window, ok := s.windows[sessionID]
	if !ok || len(window) == 0 {
		window = []*schema.Message{schema.SystemMessage(s.systemPrompt)}
		s.windows[sessionID] = window
	}
	return window
}

// boundLocked keeps stored history from growing past what a window can show.
func (s *Service) boundLocked(window []*schema.Message) []*schema.Message {
	if len(window) <= chat.MaxWindowMessages {
		return window
	}
	return chat.Trim(window, chat.MaxWindowMessages)
}
