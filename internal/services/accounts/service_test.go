package accounts

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/devbn3li/movies-api/internal/domain/enums"
	"github.com/devbn3li/movies-api/internal/domain/model"
	pgrepo "github.com/devbn3li/movies-api/internal/repo/postgres"
	"github.com/devbn3li/movies-api/internal/services/catalog"
)

type accountStoreStub struct {
	byID      map[int64]model.Account
	passwords map[int64]string
}

func (s *accountStoreStub) GetByID(_ context.Context, id int64) (model.Account, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return model.Account{}, pgrepo.ErrAccountNotFound
}

func (s *accountStoreStub) GetByUsername(_ context.Context, username string) (model.Account, error) {
	for _, a := range s.byID {
		if a.Username == username {
			return a, nil
		}
	}
	return model.Account{}, pgrepo.ErrAccountNotFound
}

func (s *accountStoreStub) UpdateProfile(_ context.Context, a *model.Account) error {
	if _, ok := s.byID[a.ID]; !ok {
		return pgrepo.ErrAccountNotFound
	}
	for id, existing := range s.byID {
		if id != a.ID && existing.Username == a.Username {
			return pgrepo.ErrUsernameTaken
		}
		if id != a.ID && existing.Email != "" && existing.Email == a.Email {
			return pgrepo.ErrEmailTaken
		}
	}
	s.byID[a.ID] = *a
	return nil
}

func (s *accountStoreStub) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	if _, ok := s.byID[id]; !ok {
		return pgrepo.ErrAccountNotFound
	}
	if s.passwords == nil {
		s.passwords = map[int64]string{}
	}
	s.passwords[id] = passwordHash
	return nil
}

func (s *accountStoreStub) SetAdmin(_ context.Context, id int64, isAdmin bool) error {
	a, ok := s.byID[id]
	if !ok {
		return pgrepo.ErrAccountNotFound
	}
	a.IsAdmin = isAdmin
	s.byID[id] = a
	return nil
}

func (s *accountStoreStub) SetShowAdultContent(_ context.Context, id int64, show bool) error {
	a, ok := s.byID[id]
	if !ok {
		return pgrepo.ErrAccountNotFound
	}
	a.ShowAdultContent = show
	s.byID[id] = a
	return nil
}

func (s *accountStoreStub) Delete(_ context.Context, id int64) error {
	if _, ok := s.byID[id]; !ok {
		return pgrepo.ErrAccountNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *accountStoreStub) List(_ context.Context, search string, limit, offset int) ([]model.Account, error) {
	var out []model.Account
	for _, a := range s.byID {
		out = append(out, a)
	}
	return out, nil
}

func (s *accountStoreStub) Count(_ context.Context, search string) (int, error) {
	return len(s.byID), nil
}

type favoriteStoreStub struct {
	entries map[int64][]pgrepo.FavoriteEntry
}

func (s *favoriteStoreStub) Add(_ context.Context, accountID int64, media model.MediaRef) error {
	for _, e := range s.entries[accountID] {
		if e.Media == media {
			return pgrepo.ErrFavoriteExists
		}
	}
	s.entries[accountID] = append(s.entries[accountID], pgrepo.FavoriteEntry{Media: media})
	return nil
}

func (s *favoriteStoreStub) Remove(_ context.Context, accountID int64, media model.MediaRef) error {
	list := s.entries[accountID]
	for i, e := range list {
		if e.Media == media {
			s.entries[accountID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return pgrepo.ErrFavoriteNotFound
}

func (s *favoriteStoreStub) List(_ context.Context, accountID int64, limit, offset int) ([]pgrepo.FavoriteEntry, error) {
	return s.entries[accountID], nil
}

func (s *favoriteStoreStub) Count(_ context.Context, accountID int64) (int, error) {
	return len(s.entries[accountID]), nil
}

type catalogStub struct {
	known map[int64]enums.MediaType
}

func (c *catalogStub) ResolveMedia(_ context.Context, id int64) (model.MediaRef, error) {
	if t, ok := c.known[id]; ok {
		return model.MediaRef{ID: id, Type: t}, nil
	}
	return model.MediaRef{}, catalog.ErrNotFound
}

func (c *catalogStub) Hydrate(_ context.Context, refs []model.MediaRef) ([]catalog.MediaItem, error) {
	items := make([]catalog.MediaItem, 0, len(refs))
	for _, ref := range refs {
		items = append(items, catalog.MediaItem{ID: ref.ID, Type: ref.Type})
	}
	return items, nil
}

func newAccountsForTest() (*Service, *accountStoreStub) {
	accounts := &accountStoreStub{byID: map[int64]model.Account{
		1: {ID: 1, Username: "first_user", DisplayName: "First"},
		2: {ID: 2, Username: "second_user", DisplayName: "Second"},
	}}
	favorites := &favoriteStoreStub{entries: map[int64][]pgrepo.FavoriteEntry{}}
	cat := &catalogStub{known: map[int64]enums.MediaType{
		10: enums.MediaTypeMovie,
		20: enums.MediaTypeTVShow,
	}}
	svc := NewService(accounts, favorites, cat, Config{
		DefaultAvatarURL: "https://cdn.example.com/avatar.png",
		BcryptCost:       bcrypt.MinCost,
	})
	return svc, accounts
}

func TestProfileAppliesDefaultAvatar(t *testing.T) {
	svc, _ := newAccountsForTest()

	account, err := svc.Profile(context.Background(), 1)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if account.AvatarURL != "https://cdn.example.com/avatar.png" {
		t.Fatalf("default avatar not applied: %q", account.AvatarURL)
	}

	if _, err := svc.Profile(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown account should be not found, got err=%v", err)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, accounts := newAccountsForTest()
	ctx := context.Background()

	name := "Renamed"
	updated, err := svc.UpdateProfile(ctx, 1, UpdateInput{DisplayName: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DisplayName != "Renamed" || updated.Username != "first_user" {
		t.Fatalf("partial update wrong: %+v", updated)
	}

	bad := "x"
	if _, err := svc.UpdateProfile(ctx, 1, UpdateInput{Username: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("short username should be invalid, got err=%v", err)
	}

	taken := "second_user"
	if _, err := svc.UpdateProfile(ctx, 1, UpdateInput{Username: &taken}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("taken username should conflict, got err=%v", err)
	}
	if accounts.byID[1].Username != "first_user" {
		t.Fatalf("failed update must not change stored username")
	}
}

func TestUpdateProfileEmailAndPassword(t *testing.T) {
	svc, accounts := newAccountsForTest()
	ctx := context.Background()

	email := "First@Example.com"
	password := "new-password-123"
	updated, err := svc.UpdateProfile(ctx, 1, UpdateInput{Email: &email, Password: &password})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "first@example.com" {
		t.Fatalf("email not lowercased: %q", updated.Email)
	}
	hash := accounts.passwords[1]
	if hash == "" {
		t.Fatalf("password not updated")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		t.Fatalf("stored hash does not match new password")
	}

	bad := "short"
	if _, err := svc.UpdateProfile(ctx, 1, UpdateInput{Password: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("weak password should be invalid, got err=%v", err)
	}
	malformed := "not-an-email"
	if _, err := svc.UpdateProfile(ctx, 1, UpdateInput{Email: &malformed}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("malformed email should be invalid, got err=%v", err)
	}
}

func TestToggleAdmin(t *testing.T) {
	svc, accounts := newAccountsForTest()
	ctx := context.Background()

	isAdmin, err := svc.ToggleAdmin(ctx, 1)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !isAdmin || !accounts.byID[1].IsAdmin {
		t.Fatalf("first toggle should grant admin")
	}

	isAdmin, err = svc.ToggleAdmin(ctx, 1)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if isAdmin || accounts.byID[1].IsAdmin {
		t.Fatalf("second toggle should revoke admin")
	}

	if _, err := svc.ToggleAdmin(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown account should be not found, got err=%v", err)
	}
}

func TestFavoritesLifecycle(t *testing.T) {
	svc, _ := newAccountsForTest()
	ctx := context.Background()

	if err := svc.AddFavorite(ctx, 1, 10); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	if err := svc.AddFavorite(ctx, 1, 10); !errors.Is(err, ErrFavoriteExists) {
		t.Fatalf("duplicate favorite should conflict, got err=%v", err)
	}
	if err := svc.AddFavorite(ctx, 1, 999); !errors.Is(err, ErrMediaNotFound) {
		t.Fatalf("unknown media should not be favoritable, got err=%v", err)
	}

	if err := svc.AddFavorite(ctx, 1, 20); err != nil {
		t.Fatalf("add tv favorite: %v", err)
	}
	items, total, err := svc.ListFavorites(ctx, 1, 1, 20)
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("favorites listing wrong: total=%d items=%d", total, len(items))
	}

	if err := svc.RemoveFavorite(ctx, 1, 10); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}
	if err := svc.RemoveFavorite(ctx, 1, 10); !errors.Is(err, ErrFavoriteNotFound) {
		t.Fatalf("removing again should fail, got err=%v", err)
	}
}

func TestSetShowAdultContent(t *testing.T) {
	svc, accounts := newAccountsForTest()

	if err := svc.SetShowAdultContent(context.Background(), 1, true); err != nil {
		t.Fatalf("set setting: %v", err)
	}
	if !accounts.byID[1].ShowAdultContent {
		t.Fatalf("setting not persisted")
	}
	if err := svc.SetShowAdultContent(context.Background(), 99, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown account should be not found, got err=%v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	svc, accounts := newAccountsForTest()

	if err := svc.DeleteAccount(context.Background(), 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := accounts.byID[2]; ok {
		t.Fatalf("account not deleted")
	}
	if err := svc.DeleteAccount(context.Background(), 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be not found, got err=%v", err)
	}
}
