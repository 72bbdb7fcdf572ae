package chat

import "time"

// Turn is one persisted user-prompt/assistant-response exchange.
type Turn struct {
	ID        int64          `json:"id" yaml:"id"`
	SessionID string         `json:"sessionId" yaml:"session_id"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	UserInput string         `json:"userInput" yaml:"user_input"`
	Response  string         `json:"response" yaml:"response"`
	Context   map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
}
