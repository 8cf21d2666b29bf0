package memory

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/go-sql-driver/mysql"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultMySQLTable is the table MySQLMemory creates when none is configured.
const DefaultMySQLTable = "llm_messages"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// MySQLMemory stores messages as rows with an optional expiry.
//
// Example:
//
//	mem, err := memory.NewMySQLMemory(ctx, memory.MySQLConfig{
//	    DSN: "user:password@tcp(localhost:3306)/llm?charset=utf8mb4&parseTime=true",
//	    TTL: 24 * time.Hour,
//	})
type MySQLMemory struct {
	db    *sql.DB
	ttl   time.Duration
	table string
	now   func() time.Time
}

// MySQLConfig holds configuration for MySQLMemory.
type MySQLConfig struct {
	// DB is an open database. If nil, DSN is opened with the mysql driver.
	DB *sql.DB

	// DSN is the data source name, used only if DB is nil.
	DSN string

	// TTL is the time-to-live of stored messages. Zero means no expiration.
	TTL time.Duration

	// Table defaults to DefaultMySQLTable.
	Table string
}

// NewMySQLMemory opens (or reuses) the database, pings it and creates the table.
func NewMySQLMemory(ctx context.Context, cfg MySQLConfig) (*MySQLMemory, error) {
	table := cfg.Table
	if table == "" {
		table = DefaultMySQLTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db := cfg.DB
	if db == nil {
		var err error
		db, err = sql.Open("mysql", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL: %w", err)
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	m := &MySQLMemory{db: db, ttl: cfg.TTL, table: table, now: time.Now}
	if err := m.createTable(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MySQLMemory) createTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			conversation_id VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL,
			content MEDIUMTEXT NOT NULL,
			created_at TIMESTAMP(6) DEFAULT CURRENT_TIMESTAMP(6),
			expires_at TIMESTAMP(6) NULL,
			INDEX idx_conversation_id (conversation_id),
			INDEX idx_expires_at (expires_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
	`, m.table)

	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", m.table, err)
	}
	return nil
}

// LoadMessages returns unexpired messages in insertion order.
func (m *MySQLMemory) LoadMessages(ctx context.Context, conversationID string) ([]openai.ChatCompletionMessage, error) {
	query := fmt.Sprintf(`
		SELECT role, content
		FROM %s
		WHERE conversation_id = ?
			AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY id ASC
	`, m.table)

	rows, err := m.db.QueryContext(ctx, query, conversationKey(conversationID), m.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []openai.ChatCompletionMessage{}
	for rows.Next() {
		var msg openai.ChatCompletionMessage
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// SaveMessages inserts messages in one transaction.
func (m *MySQLMemory) SaveMessages(ctx context.Context, conversationID string, messages []openai.ChatCompletionMessage) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (conversation_id, role, content, expires_at) VALUES (?, ?, ?, ?)", m.table))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	var expiresAt sql.NullTime
	if m.ttl > 0 {
		expiresAt = sql.NullTime{Time: m.now().UTC().Add(m.ttl), Valid: true}
	}

	convID := conversationKey(conversationID)
	for _, msg := range messages {
		if _, err := stmt.ExecContext(ctx, convID, msg.Role, msg.Content, expiresAt); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearMessages deletes every row of the conversation.
func (m *MySQLMemory) ClearMessages(ctx context.Context, conversationID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE conversation_id = ?", m.table)
	if _, err := m.db.ExecContext(ctx, query, conversationKey(conversationID)); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}

// CleanupExpired removes expired rows of every conversation and reports how many.
func (m *MySQLMemory) CleanupExpired(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at IS NOT NULL AND expires_at <= ?", m.table)
	res, err := m.db.ExecContext(ctx, query, m.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired messages: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (m *MySQLMemory) Close() error {
	return m.db.Close()
}
