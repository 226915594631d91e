package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/devbn3li/movies-api/internal/domain/model"
	"github.com/devbn3li/movies-api/internal/pkg/validate"
	pgrepo "github.com/devbn3li/movies-api/internal/repo/postgres"
	redisrepo "github.com/devbn3li/movies-api/internal/repo/redis"
)

type AccountStore interface {
	Create(ctx context.Context, a *model.Account, passwordHash string) error
	GetByID(ctx context.Context, id int64) (model.Account, error)
	GetByEmail(ctx context.Context, email string) (model.Account, string, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetVerified(ctx context.Context, id int64) error
}

type CodeStore interface {
	SetVerificationCode(ctx context.Context, accountID int64, code string, ttl time.Duration) error
	GetVerificationCode(ctx context.Context, accountID int64) (string, error)
	DeleteVerificationCode(ctx context.Context, accountID int64) error
	SetResetCode(ctx context.Context, accountID int64, code string, ttl time.Duration) error
	GetResetCode(ctx context.Context, accountID int64) (string, error)
	DeleteResetCode(ctx context.Context, accountID int64) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type RateStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Config struct {
	CodeTTL      time.Duration
	ResendMax    int64
	ResendWindow time.Duration
	LoginMax     int64
	LoginWindow  time.Duration
	BcryptCost   int
}

type Service struct {
	accounts AccountStore
	codes    CodeStore
	mailer   Mailer
	rates    RateStore
	jwt      *JWTManager
	cfg      Config
	logger   *zap.Logger
	genCode  func() (string, error)
}

func NewService(accounts AccountStore, codes CodeStore, mailer Mailer, rates RateStore, jwtManager *JWTManager, cfg Config, logger *zap.Logger) *Service {
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 15 * time.Minute
	}
	if cfg.ResendMax <= 0 {
		cfg.ResendMax = 3
	}
	if cfg.ResendWindow <= 0 {
		cfg.ResendWindow = time.Hour
	}
	if cfg.LoginMax <= 0 {
		cfg.LoginMax = 10
	}
	if cfg.LoginWindow <= 0 {
		cfg.LoginWindow = 15 * time.Minute
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		accounts: accounts,
		codes:    codes,
		mailer:   mailer,
		rates:    rates,
		jwt:      jwtManager,
		cfg:      cfg,
		logger:   logger,
		genCode:  newSixDigitCode,
	}
}

type RegisterInput struct {
	Email       string
	Username    string
	DisplayName string
	Country     string
	Password    string
}

// Register creates the account, sends a verification code and issues a
// session token. The token lets the fresh account verify itself from an
// authenticated client; subsequent logins still require verification.
func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	if !validate.Email(in.Email) || !validate.Username(in.Username) || !validate.Password(in.Password) {
		return AuthResult{}, ErrInvalidInput
	}
	if in.DisplayName == "" {
		in.DisplayName = in.Username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	account := model.Account{
		Email:       in.Email,
		Username:    in.Username,
		DisplayName: in.DisplayName,
		Country:     strings.TrimSpace(in.Country),
	}
	if err := s.accounts.Create(ctx, &account, string(hash)); err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrEmailTaken):
			return AuthResult{}, ErrEmailTaken
		case errors.Is(err, pgrepo.ErrUsernameTaken):
			return AuthResult{}, ErrUsernameTaken
		}
		return AuthResult{}, fmt.Errorf("create account: %w", err)
	}

	if err := s.issueVerificationCode(ctx, account); err != nil {
		// The account exists; verification can be retried via resend.
		s.logger.Warn("send verification code failed",
			zap.Int64("account_id", account.ID),
			zap.Error(err),
		)
	}

	token, expiresAt, err := s.jwt.Generate(account.ID, account.IsAdmin)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate token: %w", err)
	}

	return AuthResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidInput
	}

	if s.rates != nil {
		count, _, err := s.rates.IncrementWindow(ctx, "login:"+email, s.cfg.LoginWindow)
		if err != nil {
			s.logger.Warn("login rate window unavailable", zap.Error(err))
		} else if count > s.cfg.LoginMax {
			return AuthResult{}, ErrTooManyRequests
		}
	}

	account, hash, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgrepo.ErrAccountNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("get account for login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return AuthResult{}, ErrUnauthorized
	}
	if !account.IsVerified {
		return AuthResult{}, ErrNotVerified
	}

	token, expiresAt, err := s.jwt.Generate(account.ID, account.IsAdmin)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate token: %w", err)
	}

	return AuthResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

func (s *Service) VerifyEmail(ctx context.Context, email, code string) error {
	account, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account.IsVerified {
		return ErrAlreadyVerified
	}

	stored, err := s.codes.GetVerificationCode(ctx, account.ID)
	if err != nil {
		if errors.Is(err, redisrepo.ErrCodeNotFound) {
			return ErrInvalidCode
		}
		return fmt.Errorf("get verification code: %w", err)
	}
	if stored == "" || stored != strings.TrimSpace(code) {
		return ErrInvalidCode
	}

	if err := s.accounts.SetVerified(ctx, account.ID); err != nil {
		return fmt.Errorf("mark account verified: %w", err)
	}
	if err := s.codes.DeleteVerificationCode(ctx, account.ID); err != nil {
		s.logger.Warn("delete verification code failed",
			zap.Int64("account_id", account.ID),
			zap.Error(err),
		)
	}

	return nil
}

func (s *Service) ResendVerification(ctx context.Context, email string) error {
	account, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account.IsVerified {
		return ErrAlreadyVerified
	}

	if s.rates != nil {
		count, _, err := s.rates.IncrementWindow(ctx, fmt.Sprintf("resend:%d", account.ID), s.cfg.ResendWindow)
		if err != nil {
			s.logger.Warn("resend rate window unavailable", zap.Error(err))
		} else if count > s.cfg.ResendMax {
			return ErrTooManyRequests
		}
	}

	return s.issueVerificationCode(ctx, account)
}

func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.genCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}
	if err := s.codes.SetResetCode(ctx, account.ID, code, s.cfg.CodeTTL); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	body := fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.",
		code, int(s.cfg.CodeTTL.Minutes()))
	if err := s.mailer.Send(ctx, account.Email, "Password reset", body); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	return nil
}

func (s *Service) VerifyResetCode(ctx context.Context, email, code string) error {
	account, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return err
	}

	stored, err := s.codes.GetResetCode(ctx, account.ID)
	if err != nil {
		if errors.Is(err, redisrepo.ErrCodeNotFound) {
			return ErrInvalidCode
		}
		return fmt.Errorf("get reset code: %w", err)
	}
	if stored == "" || stored != strings.TrimSpace(code) {
		return ErrInvalidCode
	}

	return nil
}

func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if !validate.Password(newPassword) {
		return ErrInvalidInput
	}

	account, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.VerifyResetCode(ctx, email, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.codes.DeleteResetCode(ctx, account.ID); err != nil {
		s.logger.Warn("delete reset code failed",
			zap.Int64("account_id", account.ID),
			zap.Error(err),
		)
	}

	return nil
}

// Authenticate resolves a bearer token into an identity.
func (s *Service) Authenticate(ctx context.Context, token string) (Identity, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}

	// The admin flag is re-read so a revoked admin loses access before
	// the token expires.
	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrAccountNotFound) {
			return Identity{}, ErrUnauthorized
		}
		return Identity{}, fmt.Errorf("get account for token: %w", err)
	}

	return Identity{AccountID: account.ID, IsAdmin: account.IsAdmin}, nil
}

func (s *Service) lookupByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return model.Account{}, ErrInvalidInput
	}

	account, _, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgrepo.ErrAccountNotFound) {
			return model.Account{}, ErrAccountNotFound
		}
		return model.Account{}, fmt.Errorf("get account by email: %w", err)
	}

	return account, nil
}

func (s *Service) issueVerificationCode(ctx context.Context, account model.Account) error {
	code, err := s.genCode()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}
	if err := s.codes.SetVerificationCode(ctx, account.ID, code, s.cfg.CodeTTL); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(s.cfg.CodeTTL.Minutes()))
	if err := s.mailer.Send(ctx, account.Email, "Verify your email", body); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}

	return nil
}

func newSixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
