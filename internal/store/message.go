package store

import "time"

// UpsertMessage inserts or updates a message (idempotent on chat_id + msg_id).
func (db *DB) UpsertMessage(m *Message) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO messages (chat_id, msg_id, sender_id, body, deleted_for_everyone, from_me, status, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chat_id, msg_id) DO UPDATE SET
			body = excluded.body,
			deleted_for_everyone = excluded.deleted_for_everyone,
			status = excluded.status`,
		m.ChatID, m.MsgID, m.SenderID, m.Body, m.DeletedForEveryone, m.FromMe, m.Status, m.Timestamp, now)
	return err
}

// ListMessages returns messages for a chat using keyset pagination by timestamp.
func (db *DB) ListMessages(chatID string, beforeTs int64, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if beforeTs <= 0 {
		beforeTs = time.Now().UnixMilli() + 1
	}
	rows, err := db.Query(`
		SELECT id, chat_id, msg_id, sender_id, body, deleted_for_everyone, from_me, status, timestamp
		FROM messages
		WHERE chat_id = ? AND timestamp < ?
		ORDER BY timestamp DESC
		LIMIT ?`, chatID, beforeTs, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.MsgID, &m.SenderID, &m.Body, &m.DeletedForEveryone, &m.FromMe, &m.Status, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkDeletedForEveryone flags a message as retracted. The stored body is
// kept as-is; rendering substitutes the redaction notice. When the message
// is the chat's most recent one, the chat summary is flagged too so the
// conversation list redacts its preview.
func (db *DB) MarkDeletedForEveryone(chatID, msgID string) error {
	now := time.Now().UnixMilli()
	if _, err := db.Exec(`
		UPDATE messages SET deleted_for_everyone = 1
		WHERE chat_id = ? AND msg_id = ?`, chatID, msgID); err != nil {
		return err
	}
	_, err := db.Exec(`
		UPDATE chats SET last_message_deleted = 1, updated_at = ?
		WHERE chat_id = ? AND last_message_id = ?`, now, chatID, msgID)
	return err
}
