package api

// Favorite is one saved menu item. Item is a snapshot taken when the
// favorite was created, so it survives deletion of the source scan.
type Favorite struct {
	ID        string   `json:"id"`
	ScanID    string   `json:"scanId"`
	ItemIndex int      `json:"itemIndex"`
	Item      MenuItem `json:"item"`
	CreatedAt int64    `json:"createdAt"`
}

// FavoriteRequest is the body of POST /api/favorites.
type FavoriteRequest struct {
	ScanID    string `json:"scanId"`
	ItemIndex int    `json:"itemIndex"`
}

type FavoriteResponse struct {
	Success  bool     `json:"success"`
	Favorite Favorite `json:"favorite"`
}

type FavoritesResponse struct {
	Success   bool       `json:"success"`
	Favorites []Favorite `json:"favorites"`
}
