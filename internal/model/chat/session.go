package chat

import "time"

// Session summarizes a conversation derived from its stored turns.
type Session struct {
	ID         string    `json:"id" yaml:"id"`
	Turns      int       `json:"turns" yaml:"turns"`
	LastActive time.Time `json:"lastActive" yaml:"last_active"`
}
