package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mireyav/crescendo/internal/domain"
)

// CreateUser inserts a new account. Returns ErrConflict when the username
// or email is already taken.
func (db *DB) CreateUser(user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	rows, err := db.NamedQuery(`
		INSERT INTO users (username, email, password_hash, display_name, profile_pic_url, created_at)
		VALUES (:username, :email, :password_hash, :display_name, :profile_pic_url, :created_at)
		RETURNING id
	`, user)
	if err != nil {
		return classify(err)
	}
	defer rows.Close() //nolint:errcheck // deferred cleanup

	if rows.Next() {
		if err := rows.Scan(&user.ID); err != nil {
			return fmt.Errorf("failed to scan user id: %w", err)
		}
	} else if err := rows.Err(); err != nil {
		return classify(err)
	}

	return nil
}

// GetUserByID returns (nil, nil) when no such user exists.
func (db *DB) GetUserByID(id int64) (*domain.User, error) {
	var user domain.User
	err := db.Get(&user, `SELECT * FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail returns (nil, nil) when no such user exists.
func (db *DB) GetUserByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := db.Get(&user, `SELECT * FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserSpotifyTokens persists a user's delegated upstream credential.
// A nil refreshToken keeps the stored refresh token (refresh responses
// usually omit it).
func (db *DB) UpdateUserSpotifyTokens(userID int64, refreshToken *string, accessToken string, expires time.Time) error {
	result, err := db.Exec(`
		UPDATE users SET
			spotify_refresh_token = COALESCE(?, spotify_refresh_token),
			spotify_access_token = ?,
			spotify_token_expires = ?
		WHERE id = ?
	`, refreshToken, accessToken, expires, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user with id %d not found", userID)
	}
	return nil
}

// ServiceCredential is the shared client-credentials token row.
type ServiceCredential struct {
	AccessToken string    `db:"access_token"`
	ExpiresAt   time.Time `db:"expires_at"`
}

// GetServiceCredential returns (nil, nil) when no service token has been
// issued yet.
func (db *DB) GetServiceCredential() (*ServiceCredential, error) {
	var cred ServiceCredential
	err := db.Get(&cred, `SELECT access_token, expires_at FROM service_credential WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// UpsertServiceCredential stores the shared service token. Concurrent
// refreshes are last-write-wins; a stale overwrite only wastes one future
// refresh call.
func (db *DB) UpsertServiceCredential(accessToken string, expiresAt time.Time) error {
	_, err := db.Exec(`
		INSERT INTO service_credential (id, access_token, expires_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET access_token = excluded.access_token, expires_at = excluded.expires_at
	`, accessToken, expiresAt)
	return err
}
