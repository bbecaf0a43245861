package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"summarist/internal/models"
)

// CreateUser adds a new account. The uid is generated here; email may be
// empty for guest accounts.
func (s *Store) CreateUser(email, displayName, passwordHash string, isGuest bool) (*models.User, error) {
	uid := uuid.NewString()
	var emailValue interface{}
	if email != "" {
		emailValue = email
	}
	query := `INSERT INTO users (uid, email, display_name, is_guest, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.db.Exec(query, uid, emailValue, displayName, isGuest, passwordHash, time.Now())
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return &models.User{
		ID:          id,
		UID:         uid,
		Email:       email,
		DisplayName: displayName,
		IsGuest:     isGuest,
	}, nil
}

// GetUserByEmail retrieves an account by its unique email.
func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	query := `SELECT id, uid, email, display_name, is_guest, password_hash, sub_status, sub_plan, sub_expires_at, created_at
		FROM users WHERE email = ?`
	return s.scanUser(s.db.QueryRow(query, email))
}

// GetUserByUID retrieves an account by its public uid.
func (s *Store) GetUserByUID(uid string) (*models.User, error) {
	query := `SELECT id, uid, email, display_name, is_guest, password_hash, sub_status, sub_plan, sub_expires_at, created_at
		FROM users WHERE uid = ?`
	return s.scanUser(s.db.QueryRow(query, uid))
}

// GetUserByID retrieves an account by its primary key.
func (s *Store) GetUserByID(id int64) (*models.User, error) {
	query := `SELECT id, uid, email, display_name, is_guest, password_hash, sub_status, sub_plan, sub_expires_at, created_at
		FROM users WHERE id = ?`
	return s.scanUser(s.db.QueryRow(query, id))
}

// ListUsers retrieves all accounts, newest first.
func (s *Store) ListUsers() ([]*models.User, error) {
	query := `SELECT id, uid, email, display_name, is_guest, password_hash, sub_status, sub_plan, sub_expires_at, created_at
		FROM users ORDER BY created_at DESC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := s.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUserPassword updates only the account's password hash.
func (s *Store) UpdateUserPassword(id int64, passwordHash string) error {
	_, err := s.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	return err
}

// UpdateSubscription replaces the account's entitlement record. A nil
// subscription clears it.
func (s *Store) UpdateSubscription(id int64, sub *models.Subscription) error {
	if sub == nil {
		_, err := s.db.Exec("UPDATE users SET sub_status = NULL, sub_plan = NULL, sub_expires_at = NULL WHERE id = ?", id)
		return err
	}
	_, err := s.db.Exec("UPDATE users SET sub_status = ?, sub_plan = ?, sub_expires_at = ? WHERE id = ?",
		sub.Status, sub.Plan, sub.ExpiresAt, id)
	return err
}

// DeleteUser removes an account. Cascading deletes handle its sessions.
func (s *Store) DeleteUser(id int64) error {
	_, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	return err
}

// CountUsers returns the total number of accounts.
func (s *Store) CountUsers() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *Store) scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var email sql.NullString
	var subStatus, subPlan sql.NullString
	var subExpires sql.NullTime
	err := row.Scan(&user.ID, &user.UID, &email, &user.DisplayName, &user.IsGuest,
		&user.PasswordHash, &subStatus, &subPlan, &subExpires, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	user.Email = email.String
	if subStatus.Valid {
		sub := &models.Subscription{
			Status: subStatus.String,
			Plan:   subPlan.String,
		}
		if subExpires.Valid {
			t := subExpires.Time
			sub.ExpiresAt = &t
		}
		user.Subscription = sub
	}
	return &user, nil
}
