package usecase

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/example/ecolife/internal/auth"
	"github.com/example/ecolife/internal/repository"
)

// Account validation failures surfaced to the handlers as 400s.
var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingFields      = errors.New("username and password are required")
)

// AccountRepository defines the persistence operations the account flow
// needs.
type AccountRepository interface {
	CreateUser(ctx context.Context, user *repository.User) error
	FindByUsername(ctx context.Context, username string) (*repository.User, error)
}

// AuthResult is the body returned on successful login or registration.
type AuthResult struct {
	Token    string `json:"token"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// AccountUseCase handles registration and login.
type AccountUseCase struct {
	repo      AccountRepository
	jwtSecret string
	logger    *zap.Logger
}

// NewAccountUseCase constructs a new account use case.
func NewAccountUseCase(repo AccountRepository, jwtSecret string, logger *zap.Logger) *AccountUseCase {
	return &AccountUseCase{
		repo:      repo,
		jwtSecret: jwtSecret,
		logger:    logger.Named("account_usecase"),
	}
}

// Register creates an account and issues its first credential.
func (uc *AccountUseCase) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}

	if _, err := uc.repo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &repository.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := uc.repo.CreateUser(ctx, user); err != nil {
		uc.logger.Error("failed to create user", zap.Error(err), zap.String("username", username))
		return nil, err
	}

	return uc.issue(user)
}

// Login verifies credentials and issues a fresh credential.
func (uc *AccountUseCase) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := uc.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return uc.issue(user)
}

func (uc *AccountUseCase) issue(user *repository.User) (*AuthResult, error) {
	token, err := auth.IssueToken(strconv.FormatUint(uint64(user.ID), 10), user.Username, uc.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: user.ID, Username: user.Username}, nil
}
