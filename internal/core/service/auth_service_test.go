package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
)

// ----- Stubs -----

type stubUserRepo struct {
	users  map[string]*domain.User // keyed by email
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = "u" + strconv.Itoa(r.nextID)
	r.users[stored.Email] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubThrottle struct {
	failures  map[string]int
	max       int
	blockedFn func() error
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), max: max}
}

func (t *stubThrottle) Blocked(_ context.Context, email string) (bool, error) {
	if t.blockedFn != nil {
		return false, t.blockedFn()
	}
	return t.failures[email] >= t.max, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, email string) error {
	t.failures[email]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, email string) error {
	delete(t.failures, email)
	return nil
}

func newTestAuthService(repo *stubUserRepo, throttle ports.LoginThrottle) *AuthService {
	return NewAuthService(repo, NewTokenIssuer("secret", time.Hour), throttle, zerolog.Nop())
}

// ----- Register -----

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)

	res, err := svc.Register(context.Background(), ports.RegisterInput{Name: " Alice ", Email: "Alice@Example.com ", Password: "pass123"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token")
	}
	if res.User.Email != "alice@example.com" || res.User.Name != "Alice" {
		t.Fatalf("expected normalised name/email, got %q %q", res.User.Name, res.User.Email)
	}
	if res.User.Role != domain.RoleUser || !res.User.IsActive {
		t.Fatalf("unexpected defaults: role=%s active=%v", res.User.Role, res.User.IsActive)
	}

	stored := repo.users["alice@example.com"]
	if stored.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(stored.PasswordHash)); cost != bcrypt.DefaultCost {
		t.Fatalf("expected cost %d, got %d", bcrypt.DefaultCost, cost)
	}
}

func TestAuthService_Register_DuplicateAnyCasing(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), nil)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "pass"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Bob", Email: "BOB@example.COM", Password: "pass2"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), nil)

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "  ", Email: "", Password: ""})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %+v", verr.Fields)
	}
}

// ----- Login -----

func TestAuthService_Login_TokenRoundTrip(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), nil)

	reg, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Carol", Email: "carol@example.com", Password: "s3cret"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(context.Background(), "CAROL@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	p, err := svc.Verify(res.Token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if p.UserID != reg.User.ID || p.Email != "carol@example.com" || p.Role != domain.RoleUser {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestAuthService_Login_SameErrorForUnknownEmailAndBadPassword(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), nil)
	_, _ = svc.Register(context.Background(), ports.RegisterInput{Name: "Dave", Email: "dave@example.com", Password: "goodpass"})

	_, errBadPass := svc.Login(context.Background(), "dave@example.com", "badpass")
	_, errUnknown := svc.Login(context.Background(), "ghost@example.com", "goodpass")

	if !errors.Is(errBadPass, domain.ErrInvalidCredentials) || !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", errBadPass, errUnknown)
	}
	if errBadPass.Error() != errUnknown.Error() {
		t.Fatalf("messages differ: %q vs %q", errBadPass, errUnknown)
	}
}

func TestAuthService_Login_InactiveUserRejected(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)
	_, _ = svc.Register(context.Background(), ports.RegisterInput{Name: "Eve", Email: "eve@example.com", Password: "pass"})
	repo.users["eve@example.com"].IsActive = false

	if _, err := svc.Login(context.Background(), "eve@example.com", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	throttle := newStubThrottle(2)
	svc := newTestAuthService(newStubUserRepo(), throttle)
	_, _ = svc.Register(context.Background(), ports.RegisterInput{Name: "Fay", Email: "fay@example.com", Password: "right"})

	for i := 0; i < 2; i++ {
		if _, err := svc.Login(context.Background(), "fay@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, err := svc.Login(context.Background(), "fay@example.com", "right"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	delete(throttle.failures, "fay@example.com")
	if _, err := svc.Login(context.Background(), "fay@example.com", "right"); err != nil {
		t.Fatalf("expected login after window, got %v", err)
	}
}

func TestAuthService_Login_ThrottleStoreDownDoesNotBlock(t *testing.T) {
	throttle := newStubThrottle(1)
	throttle.blockedFn = func() error { return errors.New("redis down") }
	svc := newTestAuthService(newStubUserRepo(), throttle)
	_, _ = svc.Register(context.Background(), ports.RegisterInput{Name: "Gus", Email: "gus@example.com", Password: "pw"})

	if _, err := svc.Login(context.Background(), "gus@example.com", "pw"); err != nil {
		t.Fatalf("expected login to proceed, got %v", err)
	}
}

// ----- Profile -----

func TestAuthService_GetProfile(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), nil)
	reg, _ := svc.Register(context.Background(), ports.RegisterInput{Name: "Hal", Email: "hal@example.com", Password: "pw"})

	user, err := svc.GetProfile(context.Background(), reg.User.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if user.PasswordHash != "" {
		t.Fatalf("expected password hash to be stripped")
	}

	if _, err := svc.GetProfile(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
