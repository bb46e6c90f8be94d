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

// CatalogService manages user catalogs. Item additions are gated by the
// resolver: a reference that cannot be resolved upstream is rejected, not
// stored.
type CatalogService struct {
	Repo     *store.DB
	Resolver *resolver.Resolver
	Logger   *logger.Logger
}

func NewCatalogService(repo *store.DB, res *resolver.Resolver, log *logger.Logger) *CatalogService {
	return &CatalogService{Repo: repo, Resolver: res, Logger: log.WithComponent("catalogs")}
}

func (s *CatalogService) Create(userID int64, name, comment string, isPrivate bool, imageURL *string) (*domain.Catalog, error) {
	catalog := &domain.Catalog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Comment:   comment,
		IsPrivate: isPrivate,
		ImageURL:  imageURL,
	}
	if err := s.Repo.CreateCatalog(catalog); err != nil {
		return nil, err
	}
	s.Logger.WithUser(userID).Info("catalog created", "catalog_id", catalog.ID)
	return catalog, nil
}

func (s *CatalogService) ListOwn(userID int64) ([]domain.Catalog, error) {
	return s.Repo.ListUserCatalogs(userID)
}

func (s *CatalogService) ListPublic(userID int64) ([]domain.Catalog, error) {
	return s.Repo.ListPublicUserCatalogs(userID)
}

// Get returns a catalog with its joined entries. viewerID is 0 for
// anonymous viewers. Private catalogs are only visible to their owner.
func (s *CatalogService) Get(catalogID string, viewerID int64) (*domain.Catalog, []domain.CatalogEntry, error) {
	catalog, err := s.Repo.GetCatalog(catalogID)
	if err != nil {
		return nil, nil, err
	}
	if catalog == nil {
		return nil, nil, ErrNotFound
	}
	if catalog.IsPrivate && catalog.UserID != viewerID {
		return nil, nil, ErrForbidden
	}

	entries, err := s.Repo.ListCatalogEntries(catalogID)
	if err != nil {
		return nil, nil, err
	}
	return catalog, entries, nil
}

func (s *CatalogService) Update(userID int64, catalog *domain.Catalog) error {
	existing, err := s.Repo.GetCatalog(catalog.ID)
	if err != nil {
		return err
	}
	if existing == nil || existing.UserID != userID {
		return ErrNotFound
	}
	catalog.UserID = userID
	return s.Repo.UpdateCatalog(catalog)
}

func (s *CatalogService) Delete(userID int64, catalogID string) error {
	existing, err := s.Repo.GetCatalog(catalogID)
	if err != nil {
		return err
	}
	if existing == nil || existing.UserID != userID {
		return ErrNotFound
	}
	return s.Repo.DeleteCatalog(catalogID, userID)
}

// AddItem resolves the referenced item and, on success, inserts it into
// the catalog. Resolution failure rejects the write with ErrItemRejected.
func (s *CatalogService) AddItem(ctx context.Context, userID int64, catalogID, spotifyID, spotifyArtistID string, position int, comment string) (*domain.CatalogItem, error) {
	catalog, err := s.Repo.GetCatalog(catalogID)
	if err != nil {
		return nil, err
	}
	if catalog == nil || catalog.UserID != userID {
		return nil, ErrNotFound
	}

	if err := s.Resolver.Resolve(ctx, spotifyID, spotifyArtistID); err != nil {
		s.Logger.WithItem(spotifyID, spotifyArtistID).Warn("item rejected", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrItemRejected, err)
	}

	item := &domain.CatalogItem{
		ID:              uuid.New().String(),
		CatalogID:       catalogID,
		SpotifyID:       spotifyID,
		SpotifyArtistID: spotifyArtistID,
		Position:        position,
		Comment:         comment,
	}
	if err := s.Repo.CreateCatalogItem(item); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	s.Logger.WithUser(userID).Info("item added to catalog", "catalog_id", catalogID, "item_id", item.ID)
	return item, nil
}

func (s *CatalogService) UpdateItem(userID int64, itemID string, position int, comment string) error {
	item, err := s.Repo.GetCatalogItemForUser(itemID, userID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	item.Position = position
	item.Comment = comment
	return s.Repo.UpdateCatalogItem(item)
}

func (s *CatalogService) RemoveItem(userID int64, itemID string) error {
	item, err := s.Repo.GetCatalogItemForUser(itemID, userID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	return s.Repo.DeleteCatalogItem(itemID)
}
