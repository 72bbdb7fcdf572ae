// Package store persists conversation turns.
package store

import (
	"context"
	"errors"

	"github.com/Jarvistrey/Jarvis-AI/internal/model/chat"
)

// DefaultRecentLimit is used when RecentTurns is called without a positive limit.
const DefaultRecentLimit = 5

var (
	ErrSessionRequired = errors.New("session id is required")
	ErrNilTurn         = errors.New("turn is nil")
)

// Store is the durable, append-only log of turns keyed by session.
type Store interface {
	// RecordTurn appends one turn atomically. It assigns the turn's ID and,
	// when unset, its timestamp.
	RecordTurn(ctx context.Context, turn *chat.Turn) error

	// RecentTurns returns up to limit turns of a session, most recent first.
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]chat.Turn, error)

	// Sessions lists known sessions, most recently active first.
	Sessions(ctx context.Context) ([]chat.Session, error)

	Close() error
}
