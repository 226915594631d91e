package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/devbn3li/movies-api/internal/domain/enums"
	"github.com/devbn3li/movies-api/internal/domain/model"
)

// Job walks every media item and account and rewrites the denormalized
// aggregates from their source tables. It repairs drift left behind by
// best-effort recomputes and crashed follow transactions.
type Job struct {
	movies   idLister
	tvshows  idLister
	accounts accountSyncer
	ratings  ratingRecomputer
	interval time.Duration
	logger   *zap.Logger
}

type idLister interface {
	ListIDs(ctx context.Context) ([]int64, error)
}

type accountSyncer interface {
	ListIDs(ctx context.Context) ([]int64, error)
	SyncFollowCounts(ctx context.Context, id int64) error
}

type ratingRecomputer interface {
	Recompute(ctx context.Context, ref model.MediaRef) error
}

func New(movies, tvshows idLister, accounts accountSyncer, ratings ratingRecomputer, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		movies:   movies,
		tvshows:  tvshows,
		accounts: accounts,
		ratings:  ratings,
		interval: interval,
		logger:   logger,
	}
}

// Start loops until ctx is cancelled, running once per interval.
func (j *Job) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("reconcile run failed", zap.Error(err))
			}
		}
	}
}

func (j *Job) Run(ctx context.Context) error {
	repaired, err := j.reconcileRatings(ctx)
	if err != nil {
		return err
	}

	synced, err := j.reconcileFollowCounts(ctx)
	if err != nil {
		return err
	}

	j.logger.Info("reconcile completed",
		zap.Int("media_recomputed", repaired),
		zap.Int("accounts_synced", synced),
	)
	return nil
}

func (j *Job) reconcileRatings(ctx context.Context) (int, error) {
	movieIDs, err := j.movies.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list movie ids: %w", err)
	}
	showIDs, err := j.tvshows.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tv show ids: %w", err)
	}

	done := 0
	for _, id := range movieIDs {
		if err := j.ratings.Recompute(ctx, model.MediaRef{ID: id, Type: enums.MediaTypeMovie}); err != nil {
			j.logger.Warn("recompute movie rating failed", zap.Int64("id", id), zap.Error(err))
			continue
		}
		done++
	}
	for _, id := range showIDs {
		if err := j.ratings.Recompute(ctx, model.MediaRef{ID: id, Type: enums.MediaTypeTVShow}); err != nil {
			j.logger.Warn("recompute tv show rating failed", zap.Int64("id", id), zap.Error(err))
			continue
		}
		done++
	}

	return done, nil
}

func (j *Job) reconcileFollowCounts(ctx context.Context) (int, error) {
	ids, err := j.accounts.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list account ids: %w", err)
	}

	done := 0
	for _, id := range ids {
		if err := j.accounts.SyncFollowCounts(ctx, id); err != nil {
			j.logger.Warn("sync follow counts failed", zap.Int64("id", id), zap.Error(err))
			continue
		}
		done++
	}

	return done, nil
}
