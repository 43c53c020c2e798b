package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/hoot-be/internal/common"
	"github.com/isdelr/hoot-be/internal/models"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(user models.User) (string, error)
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, username, password string) (models.User, string, error)
	Authenticate(ctx context.Context, username, password string) (models.User, string, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// UserService registers users and verifies their credentials.
type UserService struct {
	db         *sql.DB
	tokens     TokenIssuer
	bcryptCost int
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, tokens TokenIssuer, bcryptCost int) *UserService {
	return &UserService{db: db, tokens: tokens, bcryptCost: bcryptCost}
}

// Register creates a new user, hashing their password, and issues a token for them.
func (s *UserService) Register(ctx context.Context, username, password string) (models.User, string, error) {
	if err := validateCredentials(username, password); err != nil {
		return models.User{}, "", err
	}

	if _, err := s.getUserByUsername(ctx, username); err == nil {
		return models.User{}, "", fmt.Errorf("username %s: %w", username, common.ErrorAlreadyExists)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return models.User{}, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users(id, username, password_hash, created_at) VALUES(?, ?, ?, ?)",
		user.ID, user.Username, user.PasswordHash, user.CreatedAt.UnixNano())
	if err != nil {
		// Lost a race with a concurrent signup for the same name.
		if isUniqueViolation(err) {
			return models.User{}, "", fmt.Errorf("username %s: %w", username, common.ErrorAlreadyExists)
		}
		return models.User{}, "", fmt.Errorf("failed to insert user: %w", err)
	}

	user.PasswordHash = ""
	token, err := s.tokens.Issue(user)
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// Authenticate verifies a user's credentials and issues a token.
// Unknown usernames and wrong passwords produce the same error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, string, error) {
	user, err := s.getUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.User{}, "", common.ErrorInvalidCredentials
		}
		return models.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", common.ErrorInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	token, err := s.tokens.Issue(user)
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, username, created_at FROM users WHERE id = ?", id)
	var user models.User
	var createdAt int64
	if err := row.Scan(&user.ID, &user.Username, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %s: %w", id, common.ErrorNotFound)
		}
		return models.User{}, err
	}
	user.CreatedAt = fromUnixNano(createdAt)
	return user, nil
}

// getUserByUsername retrieves a single user by username, including the password hash.
func (s *UserService) getUserByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
	var user models.User
	var createdAt int64
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %s: %w", username, common.ErrorNotFound)
		}
		return models.User{}, err
	}
	user.CreatedAt = fromUnixNano(createdAt)
	return user, nil
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	// bcrypt ignores everything past 72 bytes.
	if len(password) > 72 {
		return fmt.Errorf("%w: password must be at most 72 bytes", common.ErrorValidation)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func fromUnixNano(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
