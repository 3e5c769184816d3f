// Package service implements the business logic layer for MenuLens:
// scanning menu photos through the vision API, session-scoped history,
// and favorites. Every operation is keyed by the session identifier
// carried in the caller's verified token; mutations check that the
// resource was created under the same session.
package service

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/menulens/menulens/internal/vision"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrScanNotFound     = errors.New("scan not found")
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrScanFailed       = errors.New("scan failed")
	ErrInternal         = errors.New("internal error")
)

// maxImageBytes bounds the accepted base64 image payload (~6MB decoded).
const maxImageBytes = 8 << 20

// historyLimit caps how many scans a history query returns.
const historyLimit = 100

// Service coordinates scan, history, and favorite operations. It depends
// on storage interfaces (ScanStore, FavoriteStore) and the vision
// Analyzer, and delegates to them.
type Service struct {
	scans     ScanStore
	favorites FavoriteStore
	analyzer  vision.Analyzer
	log       zerolog.Logger
}

func New(
	scans ScanStore,
	favorites FavoriteStore,
	analyzer vision.Analyzer,
	log zerolog.Logger,
) *Service {
	return &Service{
		scans:     scans,
		favorites: favorites,
		analyzer:  analyzer,
		log:       log,
	}
}
