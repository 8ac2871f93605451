package repositories

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/reel/internal/models"
)

// UserRepository is the credential store backed by the users table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Register stores username with the digest of password.
//
// Returns false with a nil error when the username is already taken.
func (r *UserRepository) Register(username, password string) (bool, error) {
	user := &models.User{Username: username, PasswordHash: Digest(password)}
	if err := user.Validate(); err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}

	_, err := r.db.Exec("INSERT INTO users (username, password_hash) VALUES (?, ?)", user.Username, user.PasswordHash)
	if isDuplicate(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert user: %w", err)
	}

	return true, nil
}

// Authenticate reports whether username exists and password matches its stored digest.
//
// An unknown username and a wrong password are indistinguishable to the caller.
func (r *UserRepository) Authenticate(username, password string) (bool, error) {
	var stored string
	err := r.db.QueryRow("SELECT password_hash FROM users WHERE username = ?", username).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query user: %w", err)
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(Digest(password))) == 1, nil
}

// Exists reports whether username is registered.
func (r *UserRepository) Exists(username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)", username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}
