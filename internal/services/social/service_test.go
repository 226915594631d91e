package social

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/devbn3li/movies-api/internal/domain/model"
	pgrepo "github.com/devbn3li/movies-api/internal/repo/postgres"
)

type edge struct {
	follower int64
	followee int64
}

type followStoreStub struct {
	edges    map[edge]bool
	accounts *socialAccountsStub
}

func (s *followStoreStub) Follow(_ context.Context, followerID, followeeID int64) error {
	e := edge{followerID, followeeID}
	if s.edges[e] {
		return pgrepo.ErrAlreadyFollowing
	}
	s.edges[e] = true
	s.accounts.adjust(followerID, followeeID, 1)
	return nil
}

func (s *followStoreStub) Unfollow(_ context.Context, followerID, followeeID int64) error {
	e := edge{followerID, followeeID}
	if !s.edges[e] {
		return pgrepo.ErrNotFollowing
	}
	delete(s.edges, e)
	s.accounts.adjust(followerID, followeeID, -1)
	return nil
}

func (s *followStoreStub) Exists(_ context.Context, followerID, followeeID int64) (bool, error) {
	return s.edges[edge{followerID, followeeID}], nil
}

func (s *followStoreStub) ListFollowers(_ context.Context, accountID int64, limit, offset int) ([]model.Account, error) {
	var out []model.Account
	for e := range s.edges {
		if e.followee == accountID {
			out = append(out, s.accounts.byID[e.follower])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *followStoreStub) ListFollowing(_ context.Context, accountID int64, limit, offset int) ([]model.Account, error) {
	var out []model.Account
	for e := range s.edges {
		if e.follower == accountID {
			out = append(out, s.accounts.byID[e.followee])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *followStoreStub) Suggestions(_ context.Context, viewerID int64, limit int) ([]model.Account, error) {
	var out []model.Account
	for id, a := range s.accounts.byID {
		if id == viewerID || s.edges[edge{viewerID, id}] {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FollowersCount != out[j].FollowersCount {
			return out[i].FollowersCount > out[j].FollowersCount
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type socialAccountsStub struct {
	byID map[int64]model.Account
}

func (s *socialAccountsStub) GetByID(_ context.Context, id int64) (model.Account, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return model.Account{}, pgrepo.ErrAccountNotFound
}

func (s *socialAccountsStub) adjust(followerID, followeeID int64, delta int) {
	follower := s.byID[followerID]
	follower.FollowingCount += delta
	s.byID[followerID] = follower

	followee := s.byID[followeeID]
	followee.FollowersCount += delta
	s.byID[followeeID] = followee
}

func newSocialForTest(ids ...int64) (*Service, *socialAccountsStub) {
	accounts := &socialAccountsStub{byID: map[int64]model.Account{}}
	for _, id := range ids {
		accounts.byID[id] = model.Account{ID: id}
	}
	follows := &followStoreStub{edges: map[edge]bool{}, accounts: accounts}
	return NewService(follows, accounts), accounts
}

func TestFollowUpdatesBothCounters(t *testing.T) {
	svc, accounts := newSocialForTest(1, 2)
	ctx := context.Background()

	res, err := svc.Follow(ctx, 1, 2)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if !res.Following || res.FollowersCount != 1 || res.FollowingCount != 1 {
		t.Fatalf("unexpected follow result: %+v", res)
	}
	if accounts.byID[1].FollowingCount != 1 || accounts.byID[2].FollowersCount != 1 {
		t.Fatalf("counters wrong after follow: %+v %+v", accounts.byID[1], accounts.byID[2])
	}

	if _, err := svc.Follow(ctx, 1, 2); !errors.Is(err, ErrAlreadyFollowing) {
		t.Fatalf("second follow should conflict, got err=%v", err)
	}

	res, err = svc.Unfollow(ctx, 1, 2)
	if err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if res.Following || res.FollowersCount != 0 || res.FollowingCount != 0 {
		t.Fatalf("unexpected unfollow result: %+v", res)
	}
	if accounts.byID[1].FollowingCount != 0 || accounts.byID[2].FollowersCount != 0 {
		t.Fatalf("counters wrong after unfollow: %+v %+v", accounts.byID[1], accounts.byID[2])
	}

	if _, err := svc.Unfollow(ctx, 1, 2); !errors.Is(err, ErrNotFollowing) {
		t.Fatalf("unfollow without edge should fail, got err=%v", err)
	}
}

func TestFollowSelfRejected(t *testing.T) {
	svc, _ := newSocialForTest(1)

	if _, err := svc.Follow(context.Background(), 1, 1); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("self follow should be rejected, got err=%v", err)
	}
	if _, err := svc.Unfollow(context.Background(), 1, 1); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("self unfollow should be rejected, got err=%v", err)
	}
}

func TestFollowUnknownAccount(t *testing.T) {
	svc, _ := newSocialForTest(1)

	if _, err := svc.Follow(context.Background(), 1, 99); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("following a missing account should fail, got err=%v", err)
	}
	if _, err := svc.Unfollow(context.Background(), 1, 99); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("unfollowing a missing account should fail, got err=%v", err)
	}
}

func TestFollowResultCountsExistingEdges(t *testing.T) {
	svc, _ := newSocialForTest(1, 2, 3)
	ctx := context.Background()

	if _, err := svc.Follow(ctx, 3, 2); err != nil {
		t.Fatalf("seed follow: %v", err)
	}

	res, err := svc.Follow(ctx, 1, 2)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if res.FollowersCount != 2 {
		t.Fatalf("target should report both followers, got %d", res.FollowersCount)
	}
	if res.FollowingCount != 1 {
		t.Fatalf("actor should report one followed account, got %d", res.FollowingCount)
	}
}

func TestStatus(t *testing.T) {
	svc, _ := newSocialForTest(1, 2)
	ctx := context.Background()

	status, err := svc.Status(ctx, 1, 1)
	if err != nil {
		t.Fatalf("status self: %v", err)
	}
	if !status.IsSelf {
		t.Fatalf("own profile should report is_self")
	}

	status, err = svc.Status(ctx, 1, 2)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.IsSelf || status.Following {
		t.Fatalf("unexpected status before follow: %+v", status)
	}

	if _, err := svc.Follow(ctx, 1, 2); err != nil {
		t.Fatalf("follow: %v", err)
	}
	status, err = svc.Status(ctx, 1, 2)
	if err != nil {
		t.Fatalf("status after follow: %v", err)
	}
	if !status.Following {
		t.Fatalf("status should report following")
	}
}

func TestSuggestionsExcludeSelfAndFollowed(t *testing.T) {
	svc, accounts := newSocialForTest(1, 2, 3, 4)
	accounts.byID[3] = model.Account{ID: 3, FollowersCount: 10}
	accounts.byID[4] = model.Account{ID: 4, FollowersCount: 5}
	ctx := context.Background()

	if _, err := svc.Follow(ctx, 1, 2); err != nil {
		t.Fatalf("follow: %v", err)
	}

	suggestions, err := svc.Suggestions(ctx, 1, 10)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].ID != 3 || suggestions[1].ID != 4 {
		t.Fatalf("suggestions should be ordered by follower count: %+v", suggestions)
	}
}
