package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jarvistrey/Jarvis-AI/internal/model/chat"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "memory", "jarvis_memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_RecordAndRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	turn := &chat.Turn{
		SessionID: "s1",
		UserInput: "hello",
		Response:  "Good evening, sir.",
		Context:   map[string]any{"backend": "openai"},
	}
	require.NoError(t, s.RecordTurn(ctx, turn))
	assert.NotZero(t, turn.ID)
	assert.False(t, turn.Timestamp.IsZero())

	turns, err := s.RecentTurns(ctx, "s1", 5)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "hello", turns[0].UserInput)
	assert.Equal(t, "Good evening, sir.", turns[0].Response)
	assert.Equal(t, "openai", turns[0].Context["backend"])
	assert.Equal(t, turn.ID, turns[0].ID)
}

func TestSQLiteStore_RecentTurnsOrderingAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		require.NoError(t, s.RecordTurn(ctx, &chat.Turn{
			SessionID: "s1",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			UserInput: fmt.Sprintf("q%d", i),
			Response:  fmt.Sprintf("a%d", i),
		}))
	}
	require.NoError(t, s.RecordTurn(ctx, &chat.Turn{SessionID: "other", UserInput: "x", Response: "y"}))

	turns, err := s.RecentTurns(ctx, "s1", 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "q6", turns[0].UserInput)
	assert.Equal(t, "q5", turns[1].UserInput)
	assert.Equal(t, "q4", turns[2].UserInput)

	turns, err = s.RecentTurns(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Len(t, turns, DefaultRecentLimit)
}

func TestSQLiteStore_SameTimestampOrdersByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordTurn(ctx, &chat.Turn{SessionID: "s1", Timestamp: ts, UserInput: "first"}))
	require.NoError(t, s.RecordTurn(ctx, &chat.Turn{SessionID: "s1", Timestamp: ts, UserInput: "second"}))

	turns, err := s.RecentTurns(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "second", turns[0].UserInput)
}

func TestSQLiteStore_RejectsMissingSession(t *testing.T) {
	s := newTestStore(t)

	err := s.RecordTurn(context.Background(), &chat.Turn{UserInput: "hi"})
	assert.ErrorIs(t, err, ErrSessionRequired)

	err = s.RecordTurn(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilTurn)
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jarvis.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordTurn(ctx, &chat.Turn{SessionID: "s1", UserInput: "hi", Response: "hello"}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	turns, err := s.RecentTurns(ctx, "s1", 5)
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}

func TestSQLiteStore_MigratesLegacyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		user_input TEXT,
		response TEXT,
		context TEXT
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO conversations (timestamp, user_input, response, context) VALUES ('2023-05-01T10:00:00.123456', 'old', 'reply', '{}')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.RecordTurn(ctx, &chat.Turn{SessionID: "s1", UserInput: "new", Response: "ok"}))

	turns, err := s.RecentTurns(ctx, "s1", 5)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "new", turns[0].UserInput)

	var total int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&total))
	assert.Equal(t, 2, total)
}

func TestSQLiteStore_Sessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordTurn(ctx, &chat.Turn{SessionID: "a", Timestamp: base}))
	require.NoError(t, s.RecordTurn(ctx, &chat.Turn{SessionID: "a", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, s.RecordTurn(ctx, &chat.Turn{SessionID: "b", Timestamp: base.Add(time.Hour)}))

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[0].ID)
	assert.Equal(t, 1, sessions[0].Turns)
	assert.Equal(t, "a", sessions[1].ID)
	assert.Equal(t, 2, sessions[1].Turns)
	assert.True(t, sessions[1].LastActive.Equal(base.Add(time.Minute)))
}

func TestSQLiteStore_ConcurrentWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session := fmt.Sprintf("s%d", i%2)
			assert.NoError(t, s.RecordTurn(ctx, &chat.Turn{SessionID: session, UserInput: fmt.Sprintf("q%d", i)}))
		}(i)
	}
	wg.Wait()

	for _, session := range []string{"s0", "s1"} {
		turns, err := s.RecentTurns(ctx, session, 100)
		require.NoError(t, err)
		assert.Len(t, turns, 10)
	}
}

func TestSQLiteStore_InMemory(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.RecordTurn(context.Background(), &chat.Turn{SessionID: "m", UserInput: "hi"}))
	turns, err := s.RecentTurns(context.Background(), "m", 1)
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}

func TestSQLiteStore_OrdersSubSecondTimestamps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 100_000_000, time.UTC)

	// .1s and .12s would sort the wrong way round as variable-width text.
	require.NoError(t, s.RecordTurn(ctx, &chat.Turn{SessionID: "s1", Timestamp: base, UserInput: "earlier"}))
	require.NoError(t, s.RecordTurn(ctx, &chat.Turn{SessionID: "s1", Timestamp: base.Add(20 * time.Millisecond), UserInput: "later"}))

	turns, err := s.RecentTurns(ctx, "s1", 1)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "later", turns[0].UserInput)
}
