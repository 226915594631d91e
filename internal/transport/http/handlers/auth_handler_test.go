package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/devbn3li/movies-api/internal/domain/model"
	pgrepo "github.com/devbn3li/movies-api/internal/repo/postgres"
	redrepo "github.com/devbn3li/movies-api/internal/repo/redis"
	authsvc "github.com/devbn3li/movies-api/internal/services/auth"
)

type accountStoreStub struct {
	accounts map[string]model.Account
	hashes   map[string]string
}

func (s *accountStoreStub) Create(_ context.Context, a *model.Account, passwordHash string) error {
	a.ID = int64(len(s.accounts) + 1)
	s.accounts[a.Email] = *a
	s.hashes[a.Email] = passwordHash
	return nil
}

func (s *accountStoreStub) GetByID(_ context.Context, id int64) (model.Account, error) {
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Account{}, pgrepo.ErrAccountNotFound
}

func (s *accountStoreStub) GetByEmail(_ context.Context, email string) (model.Account, string, error) {
	a, ok := s.accounts[email]
	if !ok {
		return model.Account{}, "", pgrepo.ErrAccountNotFound
	}
	return a, s.hashes[email], nil
}

func (s *accountStoreStub) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	for email, a := range s.accounts {
		if a.ID == id {
			s.hashes[email] = passwordHash
		}
	}
	return nil
}

func (s *accountStoreStub) SetVerified(_ context.Context, id int64) error {
	for email, a := range s.accounts {
		if a.ID == id {
			a.IsVerified = true
			s.accounts[email] = a
		}
	}
	return nil
}

type mailerStub struct{}

func (mailerStub) Send(_ context.Context, _, _, _ string) error { return nil }

func newAuthHandlerForTest(t *testing.T) (*AuthHandler, *accountStoreStub, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	store := &accountStoreStub{
		accounts: map[string]model.Account{},
		hashes:   map[string]string{},
	}
	svc := authsvc.NewService(
		store,
		redrepo.NewCodeRepo(redisClient),
		mailerStub{},
		redrepo.NewRateRepo(redisClient),
		authsvc.NewJWTManager("test-secret", time.Hour),
		authsvc.Config{BcryptCost: bcrypt.MinCost, LoginMax: 3},
		zap.NewNop(),
	)

	cleanup := func() {
		_ = redisClient.Close()
		mr.Close()
	}
	return NewAuthHandler(svc), store, cleanup
}

func seedAccount(t *testing.T, store *accountStoreStub, email string, verified bool) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	store.accounts[email] = model.Account{
		ID:         int64(len(store.accounts) + 1),
		Email:      email,
		Username:   "someone",
		IsVerified: verified,
	}
	store.hashes[email] = string(hash)
}

func performLogin(t *testing.T, h *AuthHandler, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)
	return rr
}

func TestLoginReturnsTokenForVerifiedAccount(t *testing.T) {
	h, store, cleanup := newAuthHandlerForTest(t)
	defer cleanup()
	seedAccount(t, store, "viewer@example.com", true)

	rr := performLogin(t, h, "viewer@example.com", "hunter2pass")
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var payload struct {
		Token        string `json:"token"`
		ExpiresInSec int64  `json:"expires_in_sec"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Token == "" {
		t.Fatalf("expected a token in the response")
	}
	if payload.ExpiresInSec <= 0 {
		t.Fatalf("expected positive expiry, got %d", payload.ExpiresInSec)
	}
}

func TestLoginRejectsUnverifiedAccount(t *testing.T) {
	h, store, cleanup := newAuthHandlerForTest(t)
	defer cleanup()
	seedAccount(t, store, "fresh@example.com", false)

	rr := performLogin(t, h, "fresh@example.com", "hunter2pass")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "EMAIL_NOT_VERIFIED" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	h, store, cleanup := newAuthHandlerForTest(t)
	defer cleanup()
	seedAccount(t, store, "viewer@example.com", true)

	for i := 0; i < 3; i++ {
		if rr := performLogin(t, h, "viewer@example.com", "wrong-password"); rr.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: unexpected status %d", i+1, rr.Code)
		}
	}

	rr := performLogin(t, h, "viewer@example.com", "hunter2pass")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status after burst: got %d want %d", rr.Code, http.StatusTooManyRequests)
	}
}
