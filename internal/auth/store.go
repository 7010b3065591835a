// Package auth is the case session boundary: a local user/credential
// table used only to validate sign-in, plus a fixed-key identity row.
// It is an explicit local stand-in, not a production credential system;
// there is no server-side session, and sign-out clears the identity row
// only.
package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"golang.org/x/crypto/bcrypt"

	"github.com/solaris-forensic/casegraph/internal/models"
)

var (
	// ErrEmailTaken is returned by SignUp for a duplicate email.
	ErrEmailTaken = errors.New("user with this email already exists")
	// ErrInvalidCredentials is returned by SignIn on any mismatch.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Store manages the local auth.db database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) auth.db under dataDir and runs migrations.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dbPath := filepath.Join(dataDir, "auth.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open auth db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate auth db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SignUp creates a user and signs them in.
func (s *Store) SignUp(email, password, username string) (*models.User, error) {
	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Email:    email,
		Username: username,
	}
	_, err = s.db.Exec(
		`INSERT INTO users (id, email, username, password_hash) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, user.Username, string(hash),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if err := s.setCurrent(user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// SignIn validates the credentials and records the identity under the
// fixed session key.
func (s *Store) SignIn(email, password string) (*models.User, error) {
	var user models.User
	var hash string
	err := s.db.QueryRow(
		`SELECT id, email, username, password_hash FROM users WHERE email = ?`, email,
	).Scan(&user.ID, &user.Email, &user.Username, &hash)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.setCurrent(user.ID); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignOut clears the identity row. The user record itself stays.
func (s *Store) SignOut() error {
	if _, err := s.db.Exec(`DELETE FROM session WHERE key = ?`, sessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns the signed-in user, or nil when nobody is.
func (s *Store) Current() (*models.User, error) {
	var user models.User
	err := s.db.QueryRow(
		`SELECT u.id, u.email, u.username FROM session s JOIN users u ON u.id = s.user_id WHERE s.key = ?`,
		sessionKey,
	).Scan(&user.ID, &user.Email, &user.Username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	return &user, nil
}

func (s *Store) setCurrent(userID string) error {
	_, err := s.db.Exec(
		`INSERT INTO session (key, user_id) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET user_id = excluded.user_id`,
		sessionKey, userID,
	)
	if err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}
