package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AI-ML-Modelor/aa/internal/chatlist"
)

// ErrSelfChat is returned when a chat is requested between a user and
// themselves; a conversation needs two distinct participants.
var ErrSelfChat = fmt.Errorf("chat participants must be distinct")

// CreateOrGetChat returns the chat between selfID and peerID, creating it
// if it does not exist. The chat id is the canonical id derived from the
// sorted pair, so the operation is idempotent: calling it twice for the
// same pair affects the same row. The peer's display name and avatar are
// recorded as contact info without clobbering existing values.
func (db *DB) CreateOrGetChat(selfID, peerID, displayName, avatar string) (*Chat, error) {
	if selfID == "" || peerID == "" || selfID == peerID {
		return nil, ErrSelfChat
	}

	a, b := selfID, peerID
	if b < a {
		a, b = b, a
	}
	chatID := chatlist.ChatID(selfID, peerID)
	now := time.Now().UnixMilli()

	if _, err := db.Exec(`
		INSERT INTO chats (chat_id, user_a, user_b, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO NOTHING`,
		chatID, a, b, now, now); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	if displayName != "" || avatar != "" {
		if _, err := db.Exec(`
			INSERT INTO contacts (user_id, display_name, avatar, paired_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET
				display_name = CASE WHEN excluded.display_name != '' THEN excluded.display_name ELSE contacts.display_name END,
				avatar = CASE WHEN excluded.avatar != '' THEN excluded.avatar ELSE contacts.avatar END,
				updated_at = excluded.updated_at`,
			peerID, displayName, avatar, now, now); err != nil {
			return nil, fmt.Errorf("record peer contact: %w", err)
		}
	}

	return db.GetChat(selfID, chatID)
}

// ListChats returns the user's chats sorted by last message timestamp
// descending. The peer display name is resolved with the alias fallback
// chain: contact.local_alias -> contact.display_name -> peer id.
func (db *DB) ListChats(selfID string, limit, offset int) ([]Chat, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT c.chat_id, c.user_a, c.user_b,
			CASE WHEN c.user_a = ?1 THEN c.user_b ELSE c.user_a END AS peer_id,
			COALESCE(NULLIF(ct.local_alias,''), NULLIF(ct.display_name,''),
				CASE WHEN c.user_a = ?1 THEN c.user_b ELSE c.user_a END) AS peer_name,
			COALESCE(ct.avatar, '') AS peer_avatar,
			c.unread_count, c.last_message_id, c.last_message_text, c.last_message_at, c.last_message_deleted
		FROM chats c
		LEFT JOIN contacts ct ON ct.user_id = CASE WHEN c.user_a = ?1 THEN c.user_b ELSE c.user_a END
		WHERE c.user_a = ?1 OR c.user_b = ?1
		ORDER BY c.last_message_at DESC
		LIMIT ?2 OFFSET ?3`, selfID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chats []Chat
	for rows.Next() {
		var c Chat
		if err := rows.Scan(&c.ChatID, &c.UserA, &c.UserB, &c.PeerID, &c.PeerName, &c.PeerAvatar,
			&c.UnreadCount, &c.LastMessageID, &c.LastMessageText, &c.LastMessageAt, &c.LastMessageDeleted); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// GetChat returns a single chat by id, with peer fields resolved relative
// to selfID.
func (db *DB) GetChat(selfID, chatID string) (*Chat, error) {
	var c Chat
	err := db.QueryRow(`
		SELECT c.chat_id, c.user_a, c.user_b,
			CASE WHEN c.user_a = ?1 THEN c.user_b ELSE c.user_a END AS peer_id,
			COALESCE(NULLIF(ct.local_alias,''), NULLIF(ct.display_name,''),
				CASE WHEN c.user_a = ?1 THEN c.user_b ELSE c.user_a END) AS peer_name,
			COALESCE(ct.avatar, '') AS peer_avatar,
			c.unread_count, c.last_message_id, c.last_message_text, c.last_message_at, c.last_message_deleted
		FROM chats c
		LEFT JOIN contacts ct ON ct.user_id = CASE WHEN c.user_a = ?1 THEN c.user_b ELSE c.user_a END
		WHERE c.chat_id = ?2`, selfID, chatID).
		Scan(&c.ChatID, &c.UserA, &c.UserB, &c.PeerID, &c.PeerName, &c.PeerAvatar,
			&c.UnreadCount, &c.LastMessageID, &c.LastMessageText, &c.LastMessageAt, &c.LastMessageDeleted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// TouchLastMessage updates a chat's last-message summary and bumps the
// unread count for inbound messages. Older messages never overwrite a
// newer summary.
func (db *DB) TouchLastMessage(chatID string, m *Message) error {
	now := time.Now().UnixMilli()
	unread := 0
	if !m.FromMe {
		unread = 1
	}
	_, err := db.Exec(`
		UPDATE chats SET
			last_message_id = CASE WHEN ? >= last_message_at THEN ? ELSE last_message_id END,
			last_message_text = CASE WHEN ? >= last_message_at THEN ? ELSE last_message_text END,
			last_message_deleted = CASE WHEN ? >= last_message_at THEN ? ELSE last_message_deleted END,
			last_message_at = MAX(last_message_at, ?),
			unread_count = unread_count + ?,
			updated_at = ?
		WHERE chat_id = ?`,
		m.Timestamp, m.MsgID,
		m.Timestamp, m.Body,
		m.Timestamp, m.DeletedForEveryone,
		m.Timestamp, unread, now, chatID)
	return err
}

// MarkChatRead resets a chat's unread counter.
func (db *DB) MarkChatRead(chatID string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE chats SET unread_count = 0, updated_at = ? WHERE chat_id = ?`, now, chatID)
	return err
}

// ChatCount returns the total number of chats.
func (db *DB) ChatCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM chats`).Scan(&count)
	return count, err
}

// MessageCount returns the total number of messages.
func (db *DB) MessageCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}
