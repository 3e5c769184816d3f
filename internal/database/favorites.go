package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/menulens/menulens/internal/service"
)

func (s *SQLiteStore) FavoriteStore() service.FavoriteStore {
	return s
}

func (s *SQLiteStore) InsertFavorite(
	favorite *service.Favorite,
) error {
	item, err := json.Marshal(favorite.Item)
	if err != nil {
		return fmt.Errorf("couldn't serialize favorite item: %v", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO favorites (id, sid, scan_id, item_index, item, created_at)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6);`,
		favorite.ID,
		favorite.SessionID,
		favorite.ScanID,
		favorite.ItemIndex,
		string(item),
		favorite.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("couldn't insert into favorites: %v", err)
	}
	return nil
}

func (s *SQLiteStore) GetFavorite(
	id string,
) (
	*service.Favorite,
	error,
) {
	row := s.db.QueryRow(`
		SELECT id, sid, scan_id, item_index, item, created_at
		FROM favorites
		WHERE id=?1;`,
		id,
	)

	favorite, err := scanFavoriteRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return favorite, err
}

func (s *SQLiteStore) ListFavorites(
	sessionID string,
) (
	[]*service.Favorite,
	error,
) {
	rows, err := s.db.Query(`
		SELECT id, sid, scan_id, item_index, item, created_at
		FROM favorites
		WHERE sid=?1
		ORDER BY created_at DESC, id;`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("couldn't query favorites: %v", err)
	}
	defer rows.Close()

	favorites := []*service.Favorite{}
	for rows.Next() {
		favorite, err := scanFavoriteRow(rows)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, favorite)
	}
	return favorites, rows.Err()
}

func (s *SQLiteStore) DeleteFavorite(
	id string,
) (
	bool,
	error,
) {
	result, err := s.db.Exec(`
		DELETE FROM favorites
		WHERE id=?1;`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("couldn't delete from favorites: %v", err)
	}

	deleted := !resultsEmpty(result)
	return deleted, nil
}

func scanFavoriteRow(row rowScanner) (*service.Favorite, error) {
	var favorite service.Favorite
	var item string
	var createdAt int64

	err := row.Scan(
		&favorite.ID,
		&favorite.SessionID,
		&favorite.ScanID,
		&favorite.ItemIndex,
		&item,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("couldn't scan favorites row: %v", err)
	}

	if err := json.Unmarshal([]byte(item), &favorite.Item); err != nil {
		return nil, fmt.Errorf("couldn't parse favorite item: %v", err)
	}
	favorite.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &favorite, nil
}
