package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/yatube/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	GetUserByUsername(username string) (models.User, error)
	CreateUser(username, email, password string) (models.User, error)
	AuthenticateUser(username, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT id, username, email, created_at FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
	}
	return user, err
}

// GetUserByUsername retrieves a single user by their username.
func (s *UserService) GetUserByUsername(username string) (models.User, error) {
	row := s.db.QueryRow("SELECT id, username, email, created_at FROM users WHERE username = ?", username)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %q: %w", username, ErrUserNotFound)
	}
	return user, err
}

func scanUser(scanner interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	var email sql.NullString
	if err := scanner.Scan(&user.ID, &user.Username, &email, &user.CreatedAt); err != nil {
		return models.User{}, err
	}
	user.Email = email.String
	return user, nil
}

// CreateUser creates a new user, hashing their password.
func (s *UserService) CreateUser(username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if _, err := s.GetUserByUsername(username); err == nil {
		return models.User{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hashedPassword),
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, username, email, password_hash) VALUES(?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.ID, user.Username, nullString(user.Email), user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, err
	}

	// Re-read so the hash is not returned and created_at is filled in
	return s.GetUserByID(user.ID)
}

// AuthenticateUser verifies a user's credentials.
func (s *UserService) AuthenticateUser(username, password string) (models.User, error) {
	var hash string
	err := s.db.QueryRow("SELECT password_hash FROM users WHERE username = ?", username).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrInvalidLogin
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidLogin
	}

	return s.GetUserByUsername(username)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
