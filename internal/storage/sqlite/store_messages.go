package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/torcida/fanhub/internal/storage"
)

// unknownAuthorName is used when a human author row cannot be joined, for
// example after an account is removed.
const unknownAuthorName = "Usuário"

const messageColumns = `m.id, m.principal_id, m.body, m.is_bot, m.created_at,
	 CASE WHEN m.principal_id = 0 THEN ? ELSE COALESCE(p.display_name, ?) END AS author_name`

// AppendMessage durably appends one chat message and returns the stored row.
func (s *Store) AppendMessage(ctx context.Context, authorID int64, body string, isBot bool) (storage.ChatMessage, error) {
	if err := s.ready(); err != nil {
		return storage.ChatMessage{}, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return storage.ChatMessage{}, fmt.Errorf("message body is required")
	}

	isBotInt := 0
	if isBot {
		isBotInt = 1
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO messages (principal_id, body, is_bot, created_at) VALUES (?, ?, ?, ?)`,
		authorID,
		body,
		isBotInt,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return storage.ChatMessage{}, fmt.Errorf("append message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.ChatMessage{}, fmt.Errorf("message insert id: %w", err)
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+messageColumns+`
		 FROM messages m
		 LEFT JOIN principals p ON p.id = m.principal_id
		 WHERE m.id = ?`,
		storage.BotDisplayName,
		unknownAuthorName,
		id,
	)
	msg, err := scanMessage(row)
	if err != nil {
		return storage.ChatMessage{}, fmt.Errorf("load appended message: %w", err)
	}
	return msg, nil
}

// RecentMessages returns at most limit messages in ascending id order.
//
// Rows are fetched newest-first and reversed so callers always receive a
// chronological sequence.
func (s *Store) RecentMessages(ctx context.Context, limit int) ([]storage.ChatMessage, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+messageColumns+`
		 FROM messages m
		 LEFT JOIN principals p ON p.id = m.principal_id
		 ORDER BY m.id DESC
		 LIMIT ?`,
		storage.BotDisplayName,
		unknownAuthorName,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer rows.Close()

	var messages []storage.ChatMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (storage.ChatMessage, error) {
	var msg storage.ChatMessage
	var isBotInt int64
	var createdAt int64
	if err := row.Scan(&msg.ID, &msg.AuthorID, &msg.Body, &isBotInt, &createdAt, &msg.AuthorName); err != nil {
		return storage.ChatMessage{}, err
	}
	msg.IsBot = isBotInt != 0
	msg.CreatedAt = unixMillisToTime(createdAt)
	return msg, nil
}
