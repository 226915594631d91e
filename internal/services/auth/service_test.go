package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/devbn3li/movies-api/internal/domain/model"
	pgrepo "github.com/devbn3li/movies-api/internal/repo/postgres"
	redisrepo "github.com/devbn3li/movies-api/internal/repo/redis"
)

type accountStoreStub struct {
	nextID   int64
	byEmail  map[string]*model.Account
	hashes   map[int64]string
	verified map[int64]bool
}

func newAccountStoreStub() *accountStoreStub {
	return &accountStoreStub{
		byEmail:  map[string]*model.Account{},
		hashes:   map[int64]string{},
		verified: map[int64]bool{},
	}
}

func (s *accountStoreStub) Create(_ context.Context, a *model.Account, passwordHash string) error {
	if _, ok := s.byEmail[a.Email]; ok {
		return pgrepo.ErrEmailTaken
	}
	for _, existing := range s.byEmail {
		if existing.Username == a.Username {
			return pgrepo.ErrUsernameTaken
		}
	}

	s.nextID++
	a.ID = s.nextID
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	copied := *a
	s.byEmail[a.Email] = &copied
	s.hashes[a.ID] = passwordHash
	return nil
}

func (s *accountStoreStub) GetByID(_ context.Context, id int64) (model.Account, error) {
	for _, a := range s.byEmail {
		if a.ID == id {
			out := *a
			out.IsVerified = s.verified[id]
			return out, nil
		}
	}
	return model.Account{}, pgrepo.ErrAccountNotFound
}

func (s *accountStoreStub) GetByEmail(_ context.Context, email string) (model.Account, string, error) {
	a, ok := s.byEmail[email]
	if !ok {
		return model.Account{}, "", pgrepo.ErrAccountNotFound
	}
	out := *a
	out.IsVerified = s.verified[a.ID]
	return out, s.hashes[a.ID], nil
}

func (s *accountStoreStub) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	if _, ok := s.hashes[id]; !ok {
		return pgrepo.ErrAccountNotFound
	}
	s.hashes[id] = passwordHash
	return nil
}

func (s *accountStoreStub) SetVerified(_ context.Context, id int64) error {
	s.verified[id] = true
	return nil
}

type mailerStub struct {
	sent []string
}

func (m *mailerStub) Send(_ context.Context, to, subject, _ string) error {
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

func newAuthServiceForTest(t *testing.T) (*Service, *accountStoreStub, *mailerStub, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	accounts := newAccountStoreStub()
	mailer := &mailerStub{}
	svc := NewService(
		accounts,
		redisrepo.NewCodeRepo(client),
		mailer,
		redisrepo.NewRateRepo(client),
		NewJWTManager("test-secret", time.Hour),
		Config{CodeTTL: 10 * time.Minute, ResendMax: 2, ResendWindow: time.Hour, BcryptCost: bcrypt.MinCost},
		nil,
	)

	code := 0
	svc.genCode = func() (string, error) {
		code++
		return fmt.Sprintf("%06d", code), nil
	}

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return svc, accounts, mailer, cleanup
}

func TestRegisterAndVerifyEmail(t *testing.T) {
	svc, _, mailer, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	res, err := svc.Register(ctx, RegisterInput{
		Email:    "user@example.com",
		Username: "movie_fan",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Account.ID == 0 {
		t.Fatalf("expected account id to be assigned")
	}
	if res.Account.DisplayName != "movie_fan" {
		t.Fatalf("display name should default to username, got %q", res.Account.DisplayName)
	}
	if claims, err := svc.jwt.Parse(res.Token); err != nil || claims.AccountID != res.Account.ID {
		t.Fatalf("register should issue a usable token: err=%v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one verification mail, got %d", len(mailer.sent))
	}

	if err := svc.VerifyEmail(ctx, "user@example.com", "999999"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("wrong code should be rejected, got err=%v", err)
	}
	if err := svc.VerifyEmail(ctx, "user@example.com", "000001"); err != nil {
		t.Fatalf("verify email: %v", err)
	}
	if err := svc.VerifyEmail(ctx, "user@example.com", "000001"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("second verification should report already verified, got err=%v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	in := RegisterInput{Email: "dup@example.com", Username: "first_user", Password: "password123"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("register: %v", err)
	}

	in.Username = "second_user"
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate email should conflict, got err=%v", err)
	}
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	svc, _, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{
		Email: "login@example.com", Username: "login_user", Password: "password123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "login@example.com", "password123"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("unverified login should fail, got err=%v", err)
	}

	if err := svc.VerifyEmail(ctx, "login@example.com", "000001"); err != nil {
		t.Fatalf("verify email: %v", err)
	}

	if _, err := svc.Login(ctx, "login@example.com", "wrong-password"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("bad password should be unauthorized, got err=%v", err)
	}

	res, err := svc.Login(ctx, "login@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := svc.jwt.Parse(res.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.AccountID != res.Account.ID {
		t.Fatalf("token subject mismatch: got %d want %d", claims.AccountID, res.Account.ID)
	}
}

func TestResendVerificationRateLimited(t *testing.T) {
	svc, _, mailer, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{
		Email: "resend@example.com", Username: "resend_user", Password: "password123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.ResendVerification(ctx, "resend@example.com"); err != nil {
			t.Fatalf("resend %d: %v", i, err)
		}
	}
	if err := svc.ResendVerification(ctx, "resend@example.com"); !errors.Is(err, ErrTooManyRequests) {
		t.Fatalf("third resend should be limited, got err=%v", err)
	}
	if len(mailer.sent) != 3 {
		t.Fatalf("expected 3 mails (register + 2 resends), got %d", len(mailer.sent))
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, accounts, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	res, err := svc.Register(ctx, RegisterInput{
		Email: "reset@example.com", Username: "reset_user", Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ForgotPassword(ctx, "reset@example.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if err := svc.VerifyResetCode(ctx, "reset@example.com", "000002"); err != nil {
		t.Fatalf("verify reset code: %v", err)
	}
	if err := svc.ResetPassword(ctx, "reset@example.com", "000002", "newpassword456"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	hash := accounts.hashes[res.Account.ID]
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpassword456")) != nil {
		t.Fatalf("password hash was not updated")
	}
	if err := svc.ResetPassword(ctx, "reset@example.com", "000002", "anotherpassword"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("reset code should be single use, got err=%v", err)
	}

	if err := svc.ForgotPassword(ctx, "unknown@example.com"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("unknown email should not get reset code, got err=%v", err)
	}
}
