package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func (s *Store) CreateUser(name, email, passwordHash string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, email, passwordHash, s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUser(id)
}

func (s *Store) GetUser(id string) (*User, error) {
	return s.scanUser(`WHERE id = ?`, id)
}

func (s *Store) GetUserByEmail(email string) (*User, error) {
	return s.scanUser(`WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) scanUser(where string, arg any) (*User, error) {
	u := &User{}
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, name, email, password_hash, created_at FROM users `+where, arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", notFound(err))
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// CreateToken issues a new opaque bearer token for the user.
func (s *Store) CreateToken(userID string) (string, error) {
	token := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO tokens (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, userID, s.timestamp(),
	)
	if err != nil {
		return "", fmt.Errorf("insert token: %w", err)
	}
	return token, nil
}

// UserByToken resolves a bearer token. Unknown tokens yield ErrNotFound.
func (s *Store) UserByToken(token string) (*User, error) {
	var userID string
	err := s.db.QueryRow(`SELECT user_id FROM tokens WHERE token = ?`, token).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("resolve token: %w", notFound(err))
	}
	return s.GetUser(userID)
}

func (s *Store) DeleteToken(token string) error {
	_, err := s.db.Exec(`DELETE FROM tokens WHERE token = ?`, token)
	return err
}
