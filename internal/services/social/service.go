package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/devbn3li/movies-api/internal/domain/model"
	pgrepo "github.com/devbn3li/movies-api/internal/repo/postgres"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidOperation = errors.New("cannot follow yourself")
	ErrAccountNotFound  = errors.New("account not found")
	ErrAlreadyFollowing = errors.New("already following this account")
	ErrNotFollowing     = errors.New("not following this account")
)

type FollowStore interface {
	Follow(ctx context.Context, followerID, followeeID int64) error
	Unfollow(ctx context.Context, followerID, followeeID int64) error
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	ListFollowers(ctx context.Context, accountID int64, limit, offset int) ([]model.Account, error)
	ListFollowing(ctx context.Context, accountID int64, limit, offset int) ([]model.Account, error)
	Suggestions(ctx context.Context, viewerID int64, limit int) ([]model.Account, error)
}

type AccountStore interface {
	GetByID(ctx context.Context, id int64) (model.Account, error)
}

// FollowStatus answers "does the viewer follow this account". IsSelf is
// set when the viewer asks about their own profile.
type FollowStatus struct {
	IsSelf    bool `json:"is_self"`
	Following bool `json:"following"`
}

// FollowResult reports the state after a follow mutation: the target's
// follower count and the actor's following count.
type FollowResult struct {
	Following      bool
	FollowersCount int
	FollowingCount int
}

type Service struct {
	follows  FollowStore
	accounts AccountStore
}

func NewService(follows FollowStore, accounts AccountStore) *Service {
	return &Service{follows: follows, accounts: accounts}
}

func (s *Service) Follow(ctx context.Context, followerID, followeeID int64) (FollowResult, error) {
	if followerID <= 0 || followeeID <= 0 {
		return FollowResult{}, ErrInvalidInput
	}
	if followerID == followeeID {
		return FollowResult{}, ErrInvalidOperation
	}

	if _, err := s.getAccount(ctx, followeeID); err != nil {
		return FollowResult{}, err
	}

	if err := s.follows.Follow(ctx, followerID, followeeID); err != nil {
		if errors.Is(err, pgrepo.ErrAlreadyFollowing) {
			return FollowResult{}, ErrAlreadyFollowing
		}
		return FollowResult{}, fmt.Errorf("follow account: %w", err)
	}

	return s.followResult(ctx, followerID, followeeID, true)
}

func (s *Service) Unfollow(ctx context.Context, followerID, followeeID int64) (FollowResult, error) {
	if followerID <= 0 || followeeID <= 0 {
		return FollowResult{}, ErrInvalidInput
	}
	if followerID == followeeID {
		return FollowResult{}, ErrInvalidOperation
	}

	if _, err := s.getAccount(ctx, followeeID); err != nil {
		return FollowResult{}, err
	}

	if err := s.follows.Unfollow(ctx, followerID, followeeID); err != nil {
		if errors.Is(err, pgrepo.ErrNotFollowing) {
			return FollowResult{}, ErrNotFollowing
		}
		return FollowResult{}, fmt.Errorf("unfollow account: %w", err)
	}

	return s.followResult(ctx, followerID, followeeID, false)
}

// followResult re-reads both sides after the transactional edge write
// so the response carries the fresh counters.
func (s *Service) followResult(ctx context.Context, followerID, followeeID int64, following bool) (FollowResult, error) {
	target, err := s.getAccount(ctx, followeeID)
	if err != nil {
		return FollowResult{}, err
	}
	actor, err := s.getAccount(ctx, followerID)
	if err != nil {
		return FollowResult{}, err
	}

	return FollowResult{
		Following:      following,
		FollowersCount: target.FollowersCount,
		FollowingCount: actor.FollowingCount,
	}, nil
}

func (s *Service) Followers(ctx context.Context, accountID int64, page, limit int) ([]model.Account, int, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	page, limit = normalizePage(page, limit)
	followers, err := s.follows.ListFollowers(ctx, accountID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list followers: %w", err)
	}

	return followers, account.FollowersCount, nil
}

func (s *Service) Following(ctx context.Context, accountID int64, page, limit int) ([]model.Account, int, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	page, limit = normalizePage(page, limit)
	following, err := s.follows.ListFollowing(ctx, accountID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list following: %w", err)
	}

	return following, account.FollowingCount, nil
}

func (s *Service) Status(ctx context.Context, viewerID, targetID int64) (FollowStatus, error) {
	if viewerID <= 0 || targetID <= 0 {
		return FollowStatus{}, ErrInvalidInput
	}
	if viewerID == targetID {
		return FollowStatus{IsSelf: true}, nil
	}

	if _, err := s.getAccount(ctx, targetID); err != nil {
		return FollowStatus{}, err
	}

	following, err := s.follows.Exists(ctx, viewerID, targetID)
	if err != nil {
		return FollowStatus{}, fmt.Errorf("check follow status: %w", err)
	}

	return FollowStatus{Following: following}, nil
}

func (s *Service) Suggestions(ctx context.Context, viewerID int64, limit int) ([]model.Account, error) {
	if viewerID <= 0 {
		return nil, ErrInvalidInput
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	suggestions, err := s.follows.Suggestions(ctx, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}

	return suggestions, nil
}

func (s *Service) getAccount(ctx context.Context, id int64) (model.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrAccountNotFound) {
			return model.Account{}, ErrAccountNotFound
		}
		return model.Account{}, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return page, limit
}
