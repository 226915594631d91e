package reviews

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/devbn3li/movies-api/internal/domain/enums"
	"github.com/devbn3li/movies-api/internal/domain/model"
	pgrepo "github.com/devbn3li/movies-api/internal/repo/postgres"
	"github.com/devbn3li/movies-api/internal/services/catalog"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("review not found")
	ErrMediaNotFound = errors.New("media not found")
	ErrConflict      = errors.New("account already reviewed this media")
)

const maxCommentLength = 2000

type ReviewStore interface {
	Create(ctx context.Context, rev *model.Review) error
	GetByMediaAndAccount(ctx context.Context, mediaID int64, mediaType enums.MediaType, accountID int64) (model.Review, error)
	Update(ctx context.Context, rev *model.Review) error
	Delete(ctx context.Context, mediaID int64, mediaType enums.MediaType, accountID int64) error
	ListByMedia(ctx context.Context, mediaID int64, mediaType enums.MediaType, limit, offset int) ([]pgrepo.ReviewWithAuthor, error)
	CountByMedia(ctx context.Context, mediaID int64, mediaType enums.MediaType) (int, error)
	Ratings(ctx context.Context, mediaID int64, mediaType enums.MediaType) ([]int, error)
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]model.Review, error)
}

type MediaResolver interface {
	ResolveMedia(ctx context.Context, id int64) (model.MediaRef, error)
}

// RatingStore is the slice of a media table that the aggregator writes
// back to. Both media repos satisfy it.
type RatingStore interface {
	SetAverageRating(ctx context.Context, id int64, avg float64) error
}

type Stats struct {
	Average   float64     `json:"average"`
	Total     int         `json:"total"`
	Histogram map[int]int `json:"histogram"`
}

type Service struct {
	reviews  ReviewStore
	resolver MediaResolver
	movies   RatingStore
	tvshows  RatingStore
	logger   *zap.Logger
}

func NewService(reviews ReviewStore, resolver MediaResolver, movies, tvshows RatingStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		reviews:  reviews,
		resolver: resolver,
		movies:   movies,
		tvshows:  tvshows,
		logger:   logger,
	}
}

func (s *Service) Submit(ctx context.Context, accountID, mediaID int64, comment string, rating int) (model.Review, error) {
	comment = strings.TrimSpace(comment)
	if rating < 1 || rating > 5 || comment == "" || len(comment) > maxCommentLength {
		return model.Review{}, ErrInvalidInput
	}

	ref, err := s.resolve(ctx, mediaID)
	if err != nil {
		return model.Review{}, err
	}

	rev := model.Review{
		MediaID:   ref.ID,
		MediaType: ref.Type,
		AccountID: accountID,
		Comment:   comment,
		Rating:    rating,
	}
	if err := s.reviews.Create(ctx, &rev); err != nil {
		if errors.Is(err, pgrepo.ErrReviewAlreadyExists) {
			return model.Review{}, ErrConflict
		}
		return model.Review{}, fmt.Errorf("create review: %w", err)
	}

	s.recomputeBestEffort(ctx, ref)
	return rev, nil
}

// Update changes only the provided fields; a nil comment or rating
// keeps the stored value.
func (s *Service) Update(ctx context.Context, accountID, mediaID int64, comment *string, rating *int) (model.Review, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return model.Review{}, ErrInvalidInput
	}
	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		if trimmed == "" || len(trimmed) > maxCommentLength {
			return model.Review{}, ErrInvalidInput
		}
		comment = &trimmed
	}

	ref, err := s.resolve(ctx, mediaID)
	if err != nil {
		return model.Review{}, err
	}

	rev, err := s.reviews.GetByMediaAndAccount(ctx, ref.ID, ref.Type, accountID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrReviewNotFound) {
			return model.Review{}, ErrNotFound
		}
		return model.Review{}, fmt.Errorf("get review: %w", err)
	}

	if comment != nil {
		rev.Comment = *comment
	}
	if rating != nil {
		rev.Rating = *rating
	}
	if err := s.reviews.Update(ctx, &rev); err != nil {
		if errors.Is(err, pgrepo.ErrReviewNotFound) {
			return model.Review{}, ErrNotFound
		}
		return model.Review{}, fmt.Errorf("update review: %w", err)
	}

	s.recomputeBestEffort(ctx, ref)
	return rev, nil
}

func (s *Service) Delete(ctx context.Context, accountID, mediaID int64) error {
	ref, err := s.resolve(ctx, mediaID)
	if err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, ref.ID, ref.Type, accountID); err != nil {
		if errors.Is(err, pgrepo.ErrReviewNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete review: %w", err)
	}

	s.recomputeBestEffort(ctx, ref)
	return nil
}

func (s *Service) Get(ctx context.Context, accountID, mediaID int64) (model.Review, error) {
	ref, err := s.resolve(ctx, mediaID)
	if err != nil {
		return model.Review{}, err
	}

	rev, err := s.reviews.GetByMediaAndAccount(ctx, ref.ID, ref.Type, accountID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrReviewNotFound) {
			return model.Review{}, ErrNotFound
		}
		return model.Review{}, fmt.Errorf("get review: %w", err)
	}

	return rev, nil
}

func (s *Service) ListByMedia(ctx context.Context, mediaID int64, page, limit int) ([]pgrepo.ReviewWithAuthor, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	ref, err := s.resolve(ctx, mediaID)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.reviews.CountByMedia(ctx, ref.ID, ref.Type)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	items, err := s.reviews.ListByMedia(ctx, ref.ID, ref.Type, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return items, total, nil
}

// ListByAccount returns the account's reviews, newest first.
func (s *Service) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]model.Review, error) {
	reviews, err := s.reviews.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list account reviews: %w", err)
	}
	return reviews, nil
}

// Stats reports the review histogram for a media item. Every bucket
// from 1 to 5 is present even when empty.
func (s *Service) Stats(ctx context.Context, mediaID int64) (Stats, error) {
	ref, err := s.resolve(ctx, mediaID)
	if err != nil {
		return Stats{}, err
	}

	ratings, err := s.reviews.Ratings(ctx, ref.ID, ref.Type)
	if err != nil {
		return Stats{}, fmt.Errorf("list ratings: %w", err)
	}

	histogram := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	sum := 0
	for _, r := range ratings {
		histogram[r]++
		sum += r
	}

	stats := Stats{Total: len(ratings), Histogram: histogram}
	if len(ratings) > 0 {
		stats.Average = round1(float64(sum) / float64(len(ratings)))
	}

	return stats, nil
}

// Recompute recalculates the denormalized average rating for one media
// item and writes it back.
func (s *Service) Recompute(ctx context.Context, ref model.MediaRef) error {
	ratings, err := s.reviews.Ratings(ctx, ref.ID, ref.Type)
	if err != nil {
		return fmt.Errorf("list ratings: %w", err)
	}

	avg := 0.0
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		avg = round1(float64(sum) / float64(len(ratings)))
	}

	store := s.movies
	if ref.Type == enums.MediaTypeTVShow {
		store = s.tvshows
	}
	if err := store.SetAverageRating(ctx, ref.ID, avg); err != nil {
		return fmt.Errorf("write average rating: %w", err)
	}

	return nil
}

// recomputeBestEffort keeps review mutations successful even when the
// aggregate write fails; the reconcile job repairs drift later.
func (s *Service) recomputeBestEffort(ctx context.Context, ref model.MediaRef) {
	if err := s.Recompute(ctx, ref); err != nil {
		s.logger.Warn("recompute average rating failed",
			zap.Int64("media_id", ref.ID),
			zap.String("media_type", string(ref.Type)),
			zap.Error(err),
		)
	}
}

func (s *Service) resolve(ctx context.Context, mediaID int64) (model.MediaRef, error) {
	ref, err := s.resolver.ResolveMedia(ctx, mediaID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return model.MediaRef{}, ErrMediaNotFound
		}
		return model.MediaRef{}, fmt.Errorf("resolve media: %w", err)
	}
	return ref, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
