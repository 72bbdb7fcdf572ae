package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Jarvistrey/Jarvis-AI/internal/model/chat"
)

// timestampLayout is fixed width so that text ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and runs migrations.
// Opening an existing database never drops data.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	memory := isMemoryDSN(path)
	if !memory {
		if dir := filepath.Dir(fileName(path)); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn(path, memory))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if memory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func isMemoryDSN(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// fileName strips a "file:" prefix and query string from a DSN.
func fileName(path string) string {
	name := strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	return name
}

func dsn(path string, memory bool) string {
	if memory || strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}

// migrate creates the schema. Every statement is idempotent.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT,
			user_input TEXT,
			response TEXT,
			context TEXT
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	// Databases written before sessions existed lack the column.
	if err := s.ensureColumn("conversations", "session_id", "ALTER TABLE conversations ADD COLUMN session_id TEXT"); err != nil {
		return err
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_conversations_session ON conversations(session_id, timestamp)`); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) ensureColumn(tableName, columnName, ddl string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dfltValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == columnName {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	log.Printf("[store] adding column %s.%s", tableName, columnName)
	_, err = s.db.Exec(ddl)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordTurn inserts the turn inside a transaction.
func (s *SQLiteStore) RecordTurn(ctx context.Context, turn *chat.Turn) error {
	if turn == nil {
		return ErrNilTurn
	}
	if strings.TrimSpace(turn.SessionID) == "" {
		return ErrSessionRequired
	}

	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	turn.Timestamp = turn.Timestamp.UTC()

	contextJSON, err := marshalContext(turn.Context)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (timestamp, user_input, response, context, session_id) VALUES (?, ?, ?, ?, ?)`,
		turn.Timestamp.Format(timestampLayout), turn.UserInput, turn.Response, contextJSON, turn.SessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read turn id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit turn: %w", err)
	}
	turn.ID = id
	return nil
}

// RecentTurns returns the newest turns of a session first.
func (s *SQLiteStore) RecentTurns(ctx context.Context, sessionID string, limit int) ([]chat.Turn, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, user_input, response, context, session_id
		 FROM conversations
		 WHERE session_id = ?
		 ORDER BY timestamp DESC, id DESC
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	turns := make([]chat.Turn, 0, limit)
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return turns, nil
}

// Sessions summarizes every stored session.
func (s *SQLiteStore) Sessions(ctx context.Context) ([]chat.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, COUNT(*), MAX(timestamp)
		 FROM conversations
		 WHERE session_id IS NOT NULL AND session_id != ''
		 GROUP BY session_id
		 ORDER BY MAX(timestamp) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []chat.Session
	for rows.Next() {
		var session chat.Session
		var last sql.NullString
		if err := rows.Scan(&session.ID, &session.Turns, &last); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if last.Valid {
			session.LastActive = parseTimestamp(last.String)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTurn(row scanner) (chat.Turn, error) {
	var turn chat.Turn
	var ts, userInput, response, contextJSON, sessionID sql.NullString
	if err := row.Scan(&turn.ID, &ts, &userInput, &response, &contextJSON, &sessionID); err != nil {
		return chat.Turn{}, fmt.Errorf("scan failed: %w", err)
	}

	turn.Timestamp = parseTimestamp(ts.String)
	turn.UserInput = userInput.String
	turn.Response = response.String
	turn.SessionID = sessionID.String

	if contextJSON.Valid && contextJSON.String != "" {
		if err := json.Unmarshal([]byte(contextJSON.String), &turn.Context); err != nil {
			log.Printf("[store] ignoring malformed context for turn %d: %v", turn.ID, err)
			turn.Context = nil
		}
	}
	return turn, nil
}

func marshalContext(ctx map[string]any) (string, error) {
	if ctx == nil {
		return "{}", nil
	}
	data, err := json.Marshal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to marshal turn context: %w", err)
	}
	return string(data), nil
}

// parseTimestamp accepts RFC 3339 as well as the naive ISO form written by
// older versions of the assistant.
func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
