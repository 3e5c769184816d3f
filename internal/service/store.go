package service

import (
	"time"

	"github.com/menulens/menulens/internal/vision"
)

// Scan is one analyzed menu photo, owned by the session that created it.
type Scan struct {
	ID             string
	SessionID      string
	TargetLanguage string
	SourceText     string
	Items          []vision.MenuItem
	CreatedAt      time.Time
}

// Favorite is one saved menu item. The item is snapshotted at creation
// so favorites survive deletion of the originating scan.
type Favorite struct {
	ID        string
	SessionID string
	ScanID    string
	ItemIndex int
	Item      vision.MenuItem
	CreatedAt time.Time
}

// ScanStore handles persistence of scans
type ScanStore interface {
	InsertScan(scan *Scan) error
	// GetScan returns (nil, nil) when no scan has that id.
	GetScan(id string) (*Scan, error)
	ListScans(sessionID string, limit int) ([]*Scan, error)
	DeleteScan(id string) (deleted bool, err error)
}

// FavoriteStore handles persistence of favorites
type FavoriteStore interface {
	InsertFavorite(favorite *Favorite) error
	// GetFavorite returns (nil, nil) when no favorite has that id.
	GetFavorite(id string) (*Favorite, error)
	ListFavorites(sessionID string) ([]*Favorite, error)
	DeleteFavorite(id string) (deleted bool, err error)
}
