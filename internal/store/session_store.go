package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"summarist/internal/models"
)

// CreateSession creates a new session for a user and returns the session token.
func (s *Store) CreateSession(userID int64) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	expiry := time.Now().Add(7 * 24 * time.Hour) // 1 week session
	_, err = s.db.Exec("INSERT INTO sessions (token, user_id, expiry) VALUES (?, ?, ?)", token, userID, expiry)
	return token, err
}

// GetUserFromSession retrieves a user based on a session token.
func (s *Store) GetUserFromSession(token string) (*models.User, error) {
	var userID int64
	var expiry time.Time
	err := s.db.QueryRow("SELECT user_id, expiry FROM sessions WHERE token = ?", token).Scan(&userID, &expiry)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("invalid session token")
		}
		return nil, err
	}

	if time.Now().After(expiry) {
		s.DeleteSession(token) // Clean up expired session
		return nil, errors.New("session expired")
	}

	return s.GetUserByID(userID)
}

// DeleteSession removes a session from the database (used for logout).
func (s *Store) DeleteSession(token string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// CreatePasswordResetToken issues a short-lived token for the account.
func (s *Store) CreatePasswordResetToken(userID int64) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	expiry := time.Now().Add(1 * time.Hour)
	_, err = s.db.Exec("INSERT INTO password_reset_tokens (token, user_id, expiry) VALUES (?, ?, ?)",
		token, userID, expiry)
	return token, err
}

// RedeemPasswordResetToken validates a reset token, consumes it and returns
// the account it belongs to. A token can be redeemed once.
func (s *Store) RedeemPasswordResetToken(token string) (*models.User, error) {
	var userID int64
	var expiry time.Time
	err := s.db.QueryRow("SELECT user_id, expiry FROM password_reset_tokens WHERE token = ?", token).
		Scan(&userID, &expiry)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("invalid reset token")
		}
		return nil, err
	}

	if _, err := s.db.Exec("DELETE FROM password_reset_tokens WHERE token = ?", token); err != nil {
		return nil, err
	}
	if time.Now().After(expiry) {
		return nil, errors.New("reset token expired")
	}
	return s.GetUserByID(userID)
}

func randomToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}
