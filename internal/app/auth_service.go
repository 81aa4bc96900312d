package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"escaperoom-service/internal/domain"
)

// AuthService verifies admin credentials. Passwords are stored only as
// bcrypt hashes; unknown emails and bad passwords return the same error.
type AuthService struct {
	users UserRepository
	now   func() time.Time
}

func NewAuthService(users UserRepository) *AuthService {
	return &AuthService{users: users, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return domain.User{}, err
	}
	logrus.WithField("email", email).Info("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}
