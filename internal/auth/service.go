package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service registers and logs in users, returning a signed token.
type Service struct {
	DB  *gorm.DB
	JWT *JWT
}

// Registration is the sign-up form. Only Email and Password are required;
// the profile fields may also be filled in later.
type Registration struct {
	Email    string
	Password string
	FullName string
	Country  string
	DueDate  *time.Time
}

func (s *Service) Register(ctx context.Context, in Registration) (string, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || len(in.Password) < MinPasswordLength {
		return "", ErrInvalidInput
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return "", err
	}

	u := User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Country:      strings.TrimSpace(in.Country),
		DueDate:      in.DueDate,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if isUniqueViolation(err) {
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	return s.JWT.Sign(u.ID)
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrInvalidInput
	}

	var u User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("load user: %w", err)
	}
	if !ComparePassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	return s.JWT.Sign(u.ID)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// isUniqueViolation recognises duplicate-key errors from Postgres (lib/pq)
// and SQLite.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
