package store

import (
	"database/sql"
	"time"
)

// GetProfile returns the local user's profile, or nil if onboarding has
// not completed yet.
func (db *DB) GetProfile() (*Profile, error) {
	var p Profile
	err := db.QueryRow(`SELECT user_id, display_name, avatar FROM profile LIMIT 1`).
		Scan(&p.UserID, &p.DisplayName, &p.Avatar)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProfile inserts or updates the local user's profile row.
func (db *DB) SaveProfile(p *Profile) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO profile (user_id, display_name, avatar, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			avatar = excluded.avatar,
			updated_at = excluded.updated_at`,
		p.UserID, p.DisplayName, p.Avatar, now, now)
	return err
}
