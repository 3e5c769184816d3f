package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/menulens/menulens/internal/service"
	"github.com/menulens/menulens/pkg/api"
)

// CreateFavorite handles POST /api/favorites: save one item of an owned
// scan. The item is snapshotted into the favorite.
func (a *API) CreateFavorite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.FavoriteRequest
		if ok := a.decodeRequest(&req, w, r); !ok {
			return
		}

		favorite, err := a.service.Favorite(sessionID(r), req.ScanID, req.ItemIndex)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrScanNotFound):
				a.returnError(w, http.StatusNotFound, "not found")
			case errors.Is(err, service.ErrNotAuthorized):
				a.logApiErr(r, fmt.Sprintf("favorite refused: %v", err))
				a.returnError(w, http.StatusForbidden, "not authorized")
			case errors.Is(err, service.ErrInvalidInput):
				a.logApiErr(r, fmt.Sprintf("favorite rejected: %v", err))
				a.returnError(w, http.StatusBadRequest, "invalid favorite request")
			default:
				a.logApiErr(r, fmt.Sprintf("couldn't create favorite: %v", err))
				a.returnError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		a.returnJson(api.FavoriteResponse{
			Success:  true,
			Favorite: encodeFavorite(favorite),
		}, w)
	}
}

// ListFavorites handles GET /api/favorites.
func (a *API) ListFavorites() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		favorites, err := a.service.Favorites(sessionID(r))
		if err != nil {
			a.logApiErr(r, fmt.Sprintf("couldn't list favorites: %v", err))
			a.returnError(w, http.StatusInternalServerError, "internal error")
			return
		}

		encoded := make([]api.Favorite, len(favorites))
		for i, favorite := range favorites {
			encoded[i] = encodeFavorite(favorite)
		}
		a.returnJson(api.FavoritesResponse{
			Success:   true,
			Favorites: encoded,
		}, w)
	}
}

// DeleteFavorite handles DELETE /api/favorites/{id} with an ownership
// check.
func (a *API) DeleteFavorite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		favoriteID := mux.Vars(r)["id"]
		err := a.service.Unfavorite(sessionID(r), favoriteID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrFavoriteNotFound):
				a.returnError(w, http.StatusNotFound, "not found")
			case errors.Is(err, service.ErrNotAuthorized):
				a.logApiErr(r, fmt.Sprintf("favorite delete refused: %v", err))
				a.returnError(w, http.StatusForbidden, "not authorized")
			default:
				a.logApiErr(r, fmt.Sprintf("couldn't delete favorite: %v", err))
				a.returnError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		a.returnJson(api.DeleteResponse{Success: true}, w)
	}
}

func encodeFavorite(favorite *service.Favorite) api.Favorite {
	return api.Favorite{
		ID:        favorite.ID,
		ScanID:    favorite.ScanID,
		ItemIndex: favorite.ItemIndex,
		Item: api.MenuItem{
			Original:    favorite.Item.Original,
			Reading:     favorite.Item.Reading,
			Translation: favorite.Item.Translation,
			Notes:       favorite.Item.Notes,
			Price:       favorite.Item.Price,
		},
		CreatedAt: favorite.CreatedAt.Unix(),
	}
}
