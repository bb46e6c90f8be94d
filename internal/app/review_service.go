package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mireyav/crescendo/internal/domain"
	"github.com/mireyav/crescendo/internal/logger"
	"github.com/mireyav/crescendo/internal/resolver"
	"github.com/mireyav/crescendo/internal/store"
)

// ReviewService manages reviews. Creation is gated by the resolver the
// same way catalog items are.
type ReviewService struct {
	Repo     *store.DB
	Resolver *resolver.Resolver
	Logger   *logger.Logger
}

func NewReviewService(repo *store.DB, res *resolver.Resolver, log *logger.Logger) *ReviewService {
	return &ReviewService{Repo: repo, Resolver: res, Logger: log.WithComponent("reviews")}
}

// Create resolves the reviewed item and inserts the review. A user gets
// one review per item; a second attempt returns ErrDuplicate.
func (s *ReviewService) Create(ctx context.Context, userID int64, spotifyID, spotifyArtistID string, rating int, comment string, isPrivate bool) (*domain.Review, error) {
	if err := s.Resolver.Resolve(ctx, spotifyID, spotifyArtistID); err != nil {
		s.Logger.WithItem(spotifyID, spotifyArtistID).Warn("review rejected", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrItemRejected, err)
	}

	review := &domain.Review{
		ID:              uuid.New().String(),
		UserID:          userID,
		SpotifyID:       spotifyID,
		SpotifyArtistID: spotifyArtistID,
		Rating:          rating,
		Comment:         comment,
		IsPrivate:       isPrivate,
	}
	if err := s.Repo.CreateReview(review); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	s.Logger.WithUser(userID).Info("review created", "review_id", review.ID)
	return review, nil
}

func (s *ReviewService) ListOwn(userID int64) ([]domain.Review, error) {
	return s.Repo.ListUserReviews(userID)
}

func (s *ReviewService) Update(userID int64, reviewID string, rating int, comment string, isPrivate bool) error {
	review, err := s.Repo.GetReview(reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrNotFound
	}
	if review.UserID != userID {
		return ErrForbidden
	}

	review.Rating = rating
	review.Comment = comment
	review.IsPrivate = isPrivate
	return s.Repo.UpdateReview(review)
}

func (s *ReviewService) Delete(userID int64, reviewID string) error {
	review, err := s.Repo.GetReview(reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrNotFound
	}
	if review.UserID != userID {
		return ErrForbidden
	}
	return s.Repo.DeleteReview(reviewID, userID)
}
