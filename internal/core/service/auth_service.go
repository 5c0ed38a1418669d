package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
)

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareDummy burns the same bcrypt work as a real check so unknown emails
// are not distinguishable by response time.
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// AuthService implements registration, login and token verification.
type AuthService struct {
	repo     ports.UserRepository
	tokens   *TokenIssuer
	throttle ports.LoginThrottle
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService wires the service. throttle may be nil, which disables
// failed-login counting.
func NewAuthService(repo ports.UserRepository, tokens *TokenIssuer, throttle ports.LoginThrottle, logger zerolog.Logger) *AuthService {
	if throttle == nil {
		throttle = noopThrottle{}
	}
	return &AuthService{repo: repo, tokens: tokens, throttle: throttle, logger: logger, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)

	var verr domain.ValidationError
	if name == "" {
		verr.Fields = append(verr.Fields, domain.FieldError{Field: "name", Message: "is required"})
	}
	if email == "" {
		verr.Fields = append(verr.Fields, domain.FieldError{Field: "email", Message: "is required"})
	}
	if in.Password == "" {
		verr.Fields = append(verr.Fields, domain.FieldError{Field: "password", Message: "is required"})
	}
	if len(verr.Fields) > 0 {
		return nil, &verr
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrUserExists
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("user registered")
	return s.authResult(created)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	blocked, err := s.throttle.Blocked(ctx, email)
	if err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("login throttle check failed, continuing")
	} else if blocked {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		compareDummy(password)
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Info().Str("user_id", user.ID).Msg("login refused for inactive user")
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.throttle.Reset(ctx, email); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to reset login throttle")
	}

	return s.authResult(user)
}

// Verify validates a bearer token and returns the identity it carries.
func (s *AuthService) Verify(token string) (*domain.Principal, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) authResult(user *domain.User) (*ports.AuthResult, error) {
	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	s.logger.Info().Str("email", email).Msg("login failed")
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to record login failure")
	}
}

type noopThrottle struct{}

func (noopThrottle) Blocked(context.Context, string) (bool, error) { return false, nil }
func (noopThrottle) RecordFailure(context.Context, string) error   { return nil }
func (noopThrottle) Reset(context.Context, string) error           { return nil }
