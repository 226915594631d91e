package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/devbn3li/movies-api/internal/domain/enums"
	"github.com/devbn3li/movies-api/internal/domain/model"
)

type idListerStub struct {
	ids []int64
}

func (s *idListerStub) ListIDs(_ context.Context) ([]int64, error) {
	return s.ids, nil
}

type accountSyncerStub struct {
	ids    []int64
	synced []int64
	fail   map[int64]bool
}

func (s *accountSyncerStub) ListIDs(_ context.Context) ([]int64, error) {
	return s.ids, nil
}

func (s *accountSyncerStub) SyncFollowCounts(_ context.Context, id int64) error {
	if s.fail[id] {
		return errors.New("sync failed")
	}
	s.synced = append(s.synced, id)
	return nil
}

type recomputerStub struct {
	refs []model.MediaRef
	fail map[int64]bool
}

func (s *recomputerStub) Recompute(_ context.Context, ref model.MediaRef) error {
	if s.fail[ref.ID] {
		return errors.New("recompute failed")
	}
	s.refs = append(s.refs, ref)
	return nil
}

func TestRunRecomputesBothCollections(t *testing.T) {
	movies := &idListerStub{ids: []int64{1, 2}}
	tvshows := &idListerStub{ids: []int64{3}}
	accounts := &accountSyncerStub{ids: []int64{7, 8}}
	ratings := &recomputerStub{}

	job := New(movies, tvshows, accounts, ratings, 0, nil)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(ratings.refs) != 3 {
		t.Fatalf("expected 3 recomputes, got %d", len(ratings.refs))
	}
	if ratings.refs[2].Type != enums.MediaTypeTVShow || ratings.refs[2].ID != 3 {
		t.Fatalf("tv show not recomputed: %+v", ratings.refs)
	}
	if len(accounts.synced) != 2 {
		t.Fatalf("expected 2 accounts synced, got %d", len(accounts.synced))
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	movies := &idListerStub{ids: []int64{1, 2, 3}}
	tvshows := &idListerStub{}
	accounts := &accountSyncerStub{ids: []int64{7, 8}, fail: map[int64]bool{7: true}}
	ratings := &recomputerStub{fail: map[int64]bool{2: true}}

	job := New(movies, tvshows, accounts, ratings, 0, nil)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run should tolerate per-item failures: %v", err)
	}

	if len(ratings.refs) != 2 {
		t.Fatalf("expected 2 successful recomputes, got %d", len(ratings.refs))
	}
	if len(accounts.synced) != 1 || accounts.synced[0] != 8 {
		t.Fatalf("expected account 8 synced, got %v", accounts.synced)
	}
}
