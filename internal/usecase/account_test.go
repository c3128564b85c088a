package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/example/ecolife/internal/repository"
)

type stubAccountRepo struct {
	users  map[string]*repository.User
	nextID uint
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{users: make(map[string]*repository.User), nextID: 1}
}

func (s *stubAccountRepo) CreateUser(ctx context.Context, user *repository.User) error {
	user.ID = s.nextID
	s.nextID++
	s.users[user.Username] = user
	return nil
}

func (s *stubAccountRepo) FindByUsername(ctx context.Context, username string) (*repository.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

const testSecret = "test-secret"

func TestRegisterIssuesToken(t *testing.T) {
	repo := newStubAccountRepo()
	uc := NewAccountUseCase(repo, testSecret, zap.NewNop())

	result, err := uc.Register(context.Background(), "eco", "eco@example.com", "hunter2")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}
	if result.UserID == 0 || result.Username != "eco" {
		t.Fatalf("unexpected result: %+v", result)
	}

	stored := repo.users["eco"]
	if stored == nil {
		t.Fatal("user was not persisted")
	}
	if stored.PasswordHash == "hunter2" {
		t.Fatal("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2")) != nil {
		t.Fatal("stored hash does not verify the password")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newStubAccountRepo()
	uc := NewAccountUseCase(repo, testSecret, zap.NewNop())

	if _, err := uc.Register(context.Background(), "eco", "", "hunter2"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := uc.Register(context.Background(), "eco", "", "other"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	uc := NewAccountUseCase(newStubAccountRepo(), testSecret, zap.NewNop())

	if _, err := uc.Register(context.Background(), "", "", "hunter2"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := uc.Register(context.Background(), "eco", "", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newStubAccountRepo()
	uc := NewAccountUseCase(repo, testSecret, zap.NewNop())

	if _, err := uc.Register(context.Background(), "eco", "", "hunter2"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := uc.Login(context.Background(), "eco", "hunter2")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" || result.Username != "eco" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubAccountRepo()
	uc := NewAccountUseCase(repo, testSecret, zap.NewNop())

	if _, err := uc.Register(context.Background(), "eco", "", "hunter2"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := uc.Login(context.Background(), "eco", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	uc := NewAccountUseCase(newStubAccountRepo(), testSecret, zap.NewNop())

	if _, err := uc.Login(context.Background(), "ghost", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
