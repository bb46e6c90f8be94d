package app

import (
	"github.com/mireyav/crescendo/internal/domain"
	"github.com/mireyav/crescendo/internal/logger"
	"github.com/mireyav/crescendo/internal/store"
)

// UserService serves public user profiles.
type UserService struct {
	Repo   *store.DB
	Logger *logger.Logger
}

func NewUserService(repo *store.DB, log *logger.Logger) *UserService {
	return &UserService{Repo: repo, Logger: log.WithComponent("users")}
}

// PublicProfile is a user's public page: identity plus their non-private
// reviews grouped by reviewed item and their non-private catalogs.
type PublicProfile struct {
	UserID        int64                      `json:"userId"`
	Username      string                     `json:"username"`
	DisplayName   *string                    `json:"displayName"`
	ProfilePicURL *string                    `json:"profilePicUrl"`
	Catalogs      []domain.Catalog           `json:"catalogs"`
	Reviews       map[string][]domain.Review `json:"reviews"`
}

// PublicReviews returns a user's non-private reviews grouped by the
// reviewed item's external id.
func (s *UserService) PublicReviews(userID int64) (map[string][]domain.Review, error) {
	user, err := s.Repo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	reviews, err := s.Repo.ListPublicUserReviews(userID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]domain.Review, len(reviews))
	for _, review := range reviews {
		grouped[review.SpotifyID] = append(grouped[review.SpotifyID], review)
	}
	return grouped, nil
}

// Profile returns the public profile for a user id, or ErrNotFound.
func (s *UserService) Profile(userID int64) (*PublicProfile, error) {
	user, err := s.Repo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	reviews, err := s.Repo.ListPublicUserReviews(userID)
	if err != nil {
		return nil, err
	}
	catalogs, err := s.Repo.ListPublicUserCatalogs(userID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]domain.Review, len(reviews))
	for _, review := range reviews {
		grouped[review.SpotifyID] = append(grouped[review.SpotifyID], review)
	}

	return &PublicProfile{
		UserID:        user.ID,
		Username:      user.Username,
		DisplayName:   user.DisplayName,
		ProfilePicURL: user.ProfilePicURL,
		Catalogs:      catalogs,
		Reviews:       grouped,
	}, nil
}
