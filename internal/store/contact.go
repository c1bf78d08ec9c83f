package store

import (
	"database/sql"
	"time"
)

// UpsertContact inserts or updates a paired contact. Empty incoming fields
// never erase known values; the local alias is only ever set explicitly
// via SetLocalAlias.
func (db *DB) UpsertContact(c *Contact) error {
	now := time.Now().UnixMilli()
	pairedAt := c.PairedAt
	if pairedAt == 0 {
		pairedAt = now
	}
	_, err := db.Exec(`
		INSERT INTO contacts (user_id, display_name, avatar, paired_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = CASE WHEN excluded.display_name != '' THEN excluded.display_name ELSE contacts.display_name END,
			avatar = CASE WHEN excluded.avatar != '' THEN excluded.avatar ELSE contacts.avatar END,
			updated_at = excluded.updated_at`,
		c.UserID, c.DisplayName, c.Avatar, pairedAt, now)
	return err
}

// SetLocalAlias assigns a user-chosen nickname to a contact. An empty
// alias clears the override, falling back to the contact's reported name.
func (db *DB) SetLocalAlias(userID, alias string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE contacts SET local_alias = ?, updated_at = ? WHERE user_id = ?`,
		alias, now, userID)
	return err
}

// GetContact returns a contact by user id.
func (db *DB) GetContact(userID string) (*Contact, error) {
	var c Contact
	err := db.QueryRow(`SELECT user_id, display_name, local_alias, avatar, paired_at FROM contacts WHERE user_id = ?`, userID).
		Scan(&c.UserID, &c.DisplayName, &c.LocalAlias, &c.Avatar, &c.PairedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListContacts returns all paired contacts, most recently paired first.
func (db *DB) ListContacts() ([]Contact, error) {
	rows, err := db.Query(`
		SELECT user_id, display_name, local_alias, avatar, paired_at
		FROM contacts
		ORDER BY paired_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.UserID, &c.DisplayName, &c.LocalAlias, &c.Avatar, &c.PairedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
