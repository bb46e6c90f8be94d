package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mireyav/crescendo/internal/domain"
)

// CreateReview inserts a review. Returns ErrConflict when the user has
// already reviewed this spotify id.
func (db *DB) CreateReview(review *domain.Review) error {
	now := time.Now().UTC()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}
	if review.UpdatedAt.IsZero() {
		review.UpdatedAt = now
	}
	_, err := db.NamedExec(`
		INSERT INTO reviews (id, user_id, spotify_id, spotify_artist_id, rating, comment, is_private,
			upvotes, downvotes, created_at, updated_at)
		VALUES (:id, :user_id, :spotify_id, :spotify_artist_id, :rating, :comment, :is_private,
			:upvotes, :downvotes, :created_at, :updated_at)
	`, review)
	return classify(err)
}

// GetReview returns (nil, nil) when no such review exists.
func (db *DB) GetReview(id string) (*domain.Review, error) {
	var review domain.Review
	err := db.Get(&review, `SELECT * FROM reviews WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListUserReviews returns all of a user's reviews, private ones included.
func (db *DB) ListUserReviews(userID int64) ([]domain.Review, error) {
	var reviews []domain.Review
	err := db.Select(&reviews, `
		SELECT * FROM reviews WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	return reviews, err
}

// ListPublicUserReviews returns the user's non-private reviews, newest
// first.
func (db *DB) ListPublicUserReviews(userID int64) ([]domain.Review, error) {
	var reviews []domain.Review
	err := db.Select(&reviews, `
		SELECT * FROM reviews WHERE user_id = ? AND is_private = 0 ORDER BY created_at DESC
	`, userID)
	return reviews, err
}

// ListPublicReviewsForArtist returns non-private reviews of any item by the
// artist, most upvoted first.
func (db *DB) ListPublicReviewsForArtist(spotifyArtistID string) ([]domain.Review, error) {
	var reviews []domain.Review
	err := db.Select(&reviews, `
		SELECT * FROM reviews
		WHERE spotify_artist_id = ? AND is_private = 0
		ORDER BY upvotes DESC, created_at DESC
	`, spotifyArtistID)
	return reviews, err
}

func (db *DB) UpdateReview(review *domain.Review) error {
	review.UpdatedAt = time.Now().UTC()
	result, err := db.NamedExec(`
		UPDATE reviews SET rating = :rating, comment = :comment, is_private = :is_private, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id
	`, review)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("review %s not found", review.ID)
	}
	return nil
}

func (db *DB) DeleteReview(id string, userID int64) error {
	result, err := db.Exec(`DELETE FROM reviews WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("review %s not found", id)
	}
	return nil
}
