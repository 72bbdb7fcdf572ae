package router

import (
	"context"
	"sync"
)

// sessionGate serializes exchanges within a session while letting different
// sessions proceed in parallel.
type sessionGate struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func newSessionGate() *sessionGate {
	return &sessionGate{slots: make(map[string]*slot)}
}

// acquire blocks until the session is free or ctx is done. The returned
// release func must be called exactly once on success.
func (g *sessionGate) acquire(ctx context.Context, sessionID string) (func(), error) {
	g.mu.Lock()
	s, ok := g.slots[sessionID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		g.slots[sessionID] = s
	}
	s.refs++
	g.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return func() {
			<-s.ch
			g.drop(sessionID, s)
		}, nil
	case <-ctx.Done():
		g.drop(sessionID, s)
		return nil, ctx.Err()
	}
}

func (g *sessionGate) drop(sessionID string, s *slot) {
	g.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(g.slots, sessionID)
	}
	g.mu.Unlock()
}
