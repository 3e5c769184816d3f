package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Favorite saves one item of a scan the session owns.
func (s *Service) Favorite(sessionID string, scanID string, itemIndex int) (*Favorite, error) {
	scan, err := s.scans.GetScan(scanID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load scan: %v", ErrInternal, err)
	}
	if scan == nil {
		return nil, ErrScanNotFound
	}
	if scan.SessionID != sessionID {
		return nil, fmt.Errorf("%w: scan belongs to another session", ErrNotAuthorized)
	}
	if itemIndex < 0 || itemIndex >= len(scan.Items) {
		return nil, fmt.Errorf("%w: item index %d out of range", ErrInvalidInput, itemIndex)
	}

	favorite := &Favorite{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		ScanID:    scanID,
		ItemIndex: itemIndex,
		Item:      scan.Items[itemIndex],
		CreatedAt: time.Now().UTC(),
	}
	if err := s.favorites.InsertFavorite(favorite); err != nil {
		return nil, fmt.Errorf("%w: failed to store favorite: %v", ErrInternal, err)
	}
	return favorite, nil
}

// Favorites lists the session's saved items, newest first.
func (s *Service) Favorites(sessionID string) ([]*Favorite, error) {
	favorites, err := s.favorites.ListFavorites(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list favorites: %v", ErrInternal, err)
	}
	return favorites, nil
}

// Unfavorite removes a favorite the session owns.
func (s *Service) Unfavorite(sessionID string, favoriteID string) error {
	favorite, err := s.favorites.GetFavorite(favoriteID)
	if err != nil {
		return fmt.Errorf("%w: failed to load favorite: %v", ErrInternal, err)
	}
	if favorite == nil {
		return ErrFavoriteNotFound
	}
	if favorite.SessionID != sessionID {
		return fmt.Errorf("%w: favorite belongs to another session", ErrNotAuthorized)
	}

	deleted, err := s.favorites.DeleteFavorite(favoriteID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete favorite: %v", ErrInternal, err)
	}
	if !deleted {
		return ErrFavoriteNotFound
	}
	return nil
}
