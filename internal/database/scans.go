package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/menulens/menulens/internal/service"
	"github.com/menulens/menulens/internal/vision"
)

func (s *SQLiteStore) ScanStore() service.ScanStore {
	return s
}

func (s *SQLiteStore) InsertScan(
	scan *service.Scan,
) error {
	items, err := json.Marshal(scan.Items)
	if err != nil {
		return fmt.Errorf("couldn't serialize scan items: %v", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO scans (id, sid, target_language, source_text, items, created_at)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6);`,
		scan.ID,
		scan.SessionID,
		scan.TargetLanguage,
		scan.SourceText,
		string(items),
		scan.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("couldn't insert into scans: %v", err)
	}
	return nil
}

func (s *SQLiteStore) GetScan(
	id string,
) (
	*service.Scan,
	error,
) {
	row := s.db.QueryRow(`
		SELECT id, sid, target_language, source_text, items, created_at
		FROM scans
		WHERE id=?1;`,
		id,
	)

	scan, err := scanScanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return scan, err
}

func (s *SQLiteStore) ListScans(
	sessionID string,
	limit int,
) (
	[]*service.Scan,
	error,
) {
	rows, err := s.db.Query(`
		SELECT id, sid, target_language, source_text, items, created_at
		FROM scans
		WHERE sid=?1
		ORDER BY created_at DESC, id
		LIMIT ?2;`,
		sessionID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("couldn't query scans: %v", err)
	}
	defer rows.Close()

	scans := []*service.Scan{}
	for rows.Next() {
		scan, err := scanScanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

func (s *SQLiteStore) DeleteScan(
	id string,
) (
	bool,
	error,
) {
	result, err := s.db.Exec(`
		DELETE FROM scans
		WHERE id=?1;`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("couldn't delete from scans: %v", err)
	}

	deleted := !resultsEmpty(result)
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScanRow(row rowScanner) (*service.Scan, error) {
	var scan service.Scan
	var items string
	var createdAt int64

	err := row.Scan(
		&scan.ID,
		&scan.SessionID,
		&scan.TargetLanguage,
		&scan.SourceText,
		&items,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("couldn't scan scans row: %v", err)
	}

	scan.Items = []vision.MenuItem{}
	if err := json.Unmarshal([]byte(items), &scan.Items); err != nil {
		return nil, fmt.Errorf("couldn't parse scan items: %v", err)
	}
	scan.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &scan, nil
}
