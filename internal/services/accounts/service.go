package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/devbn3li/movies-api/internal/domain/model"
	"github.com/devbn3li/movies-api/internal/pkg/validate"
	pgrepo "github.com/devbn3li/movies-api/internal/repo/postgres"
	"github.com/devbn3li/movies-api/internal/services/catalog"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("account not found")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrEmailTaken       = errors.New("email already registered")
	ErrMediaNotFound    = errors.New("media not found")
	ErrFavoriteExists   = errors.New("media already in favorites")
	ErrFavoriteNotFound = errors.New("media not in favorites")
)

type AccountStore interface {
	GetByID(ctx context.Context, id int64) (model.Account, error)
	GetByUsername(ctx context.Context, username string) (model.Account, error)
	UpdateProfile(ctx context.Context, a *model.Account) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
	SetShowAdultContent(ctx context.Context, id int64, show bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, search string, limit, offset int) ([]model.Account, error)
	Count(ctx context.Context, search string) (int, error)
}

type FavoriteStore interface {
	Add(ctx context.Context, accountID int64, media model.MediaRef) error
	Remove(ctx context.Context, accountID int64, media model.MediaRef) error
	List(ctx context.Context, accountID int64, limit, offset int) ([]pgrepo.FavoriteEntry, error)
	Count(ctx context.Context, accountID int64) (int, error)
}

type Catalog interface {
	ResolveMedia(ctx context.Context, id int64) (model.MediaRef, error)
	Hydrate(ctx context.Context, refs []model.MediaRef) ([]catalog.MediaItem, error)
}

type Config struct {
	DefaultAvatarURL string
	BcryptCost       int
}

type Service struct {
	accounts  AccountStore
	favorites FavoriteStore
	catalog   Catalog
	cfg       Config
}

func NewService(accounts AccountStore, favorites FavoriteStore, cat Catalog, cfg Config) *Service {
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{accounts: accounts, favorites: favorites, catalog: cat, cfg: cfg}
}

func (s *Service) Profile(ctx context.Context, id int64) (model.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrAccountNotFound) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("get account: %w", err)
	}
	return s.decorate(account), nil
}

func (s *Service) ProfileByUsername(ctx context.Context, username string) (model.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.Account{}, ErrInvalidInput
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgrepo.ErrAccountNotFound) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("get account by username: %w", err)
	}
	return s.decorate(account), nil
}

// UpdateInput carries partial profile changes; nil fields keep their
// current value.
type UpdateInput struct {
	Email       *string
	Username    *string
	DisplayName *string
	Country     *string
	AvatarURL   *string
	Password    *string
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, in UpdateInput) (model.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrAccountNotFound) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("get account: %w", err)
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !validate.Email(email) {
			return model.Account{}, ErrInvalidInput
		}
		account.Email = email
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if !validate.Username(username) {
			return model.Account{}, ErrInvalidInput
		}
		account.Username = username
	}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" {
			return model.Account{}, ErrInvalidInput
		}
		account.DisplayName = name
	}
	if in.Country != nil {
		account.Country = strings.TrimSpace(*in.Country)
	}
	if in.AvatarURL != nil {
		account.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}

	if in.Password != nil {
		if !validate.Password(*in.Password) {
			return model.Account{}, ErrInvalidInput
		}
	}

	if err := s.accounts.UpdateProfile(ctx, &account); err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrAccountNotFound):
			return model.Account{}, ErrNotFound
		case errors.Is(err, pgrepo.ErrUsernameTaken):
			return model.Account{}, ErrUsernameTaken
		case errors.Is(err, pgrepo.ErrEmailTaken):
			return model.Account{}, ErrEmailTaken
		}
		return model.Account{}, fmt.Errorf("update profile: %w", err)
	}

	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.cfg.BcryptCost)
		if err != nil {
			return model.Account{}, fmt.Errorf("hash password: %w", err)
		}
		if err := s.accounts.UpdatePassword(ctx, account.ID, string(hash)); err != nil {
			return model.Account{}, fmt.Errorf("update password: %w", err)
		}
	}

	return s.decorate(account), nil
}

// ToggleAdmin flips the admin flag and reports the new value.
func (s *Service) ToggleAdmin(ctx context.Context, id int64) (bool, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrAccountNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("get account: %w", err)
	}

	next := !account.IsAdmin
	if err := s.accounts.SetAdmin(ctx, id, next); err != nil {
		if errors.Is(err, pgrepo.ErrAccountNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("update admin flag: %w", err)
	}

	return next, nil
}

func (s *Service) SetShowAdultContent(ctx context.Context, id int64, show bool) error {
	if err := s.accounts.SetShowAdultContent(ctx, id, show); err != nil {
		if errors.Is(err, pgrepo.ErrAccountNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update adult content setting: %w", err)
	}
	return nil
}

func (s *Service) AddFavorite(ctx context.Context, accountID, mediaID int64) error {
	ref, err := s.resolve(ctx, mediaID)
	if err != nil {
		return err
	}

	if err := s.favorites.Add(ctx, accountID, ref); err != nil {
		if errors.Is(err, pgrepo.ErrFavoriteExists) {
			return ErrFavoriteExists
		}
		return fmt.Errorf("add favorite: %w", err)
	}

	return nil
}

func (s *Service) RemoveFavorite(ctx context.Context, accountID, mediaID int64) error {
	ref, err := s.resolve(ctx, mediaID)
	if err != nil {
		return err
	}

	if err := s.favorites.Remove(ctx, accountID, ref); err != nil {
		if errors.Is(err, pgrepo.ErrFavoriteNotFound) {
			return ErrFavoriteNotFound
		}
		return fmt.Errorf("remove favorite: %w", err)
	}

	return nil
}

func (s *Service) ListFavorites(ctx context.Context, accountID int64, page, limit int) ([]catalog.MediaItem, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	total, err := s.favorites.Count(ctx, accountID)
	if err != nil {
		return nil, 0, fmt.Errorf("count favorites: %w", err)
	}
	entries, err := s.favorites.List(ctx, accountID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list favorites: %w", err)
	}

	refs := make([]model.MediaRef, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, e.Media)
	}
	items, err := s.catalog.Hydrate(ctx, refs)
	if err != nil {
		return nil, 0, fmt.Errorf("hydrate favorites: %w", err)
	}

	return items, total, nil
}

func (s *Service) ListAccounts(ctx context.Context, search string, page, limit int) ([]model.Account, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	search = strings.TrimSpace(search)

	total, err := s.accounts.Count(ctx, search)
	if err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}
	list, err := s.accounts.List(ctx, search, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}

	for i := range list {
		list[i] = s.decorate(list[i])
	}
	return list, total, nil
}

func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, pgrepo.ErrAccountNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (s *Service) resolve(ctx context.Context, mediaID int64) (model.MediaRef, error) {
	ref, err := s.catalog.ResolveMedia(ctx, mediaID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return model.MediaRef{}, ErrMediaNotFound
		}
		return model.MediaRef{}, fmt.Errorf("resolve media: %w", err)
	}
	return ref, nil
}

func (s *Service) decorate(a model.Account) model.Account {
	if a.AvatarURL == "" {
		a.AvatarURL = s.cfg.DefaultAvatarURL
	}
	return a
}
