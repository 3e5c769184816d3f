package database_test

import (
	"testing"
	"time"

	"github.com/menulens/menulens/internal/database"
	"github.com/menulens/menulens/internal/service"
	"github.com/menulens/menulens/internal/vision"
)

func setupStore(t *testing.T) *database.SQLiteStore {
	t.Helper()
	store, err := database.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testScan(id, sid string, createdAt time.Time) *service.Scan {
	return &service.Scan{
		ID:             id,
		SessionID:      sid,
		TargetLanguage: "English",
		SourceText:     "唐揚げ ¥580",
		Items: []vision.MenuItem{
			{Original: "唐揚げ", Reading: "karaage", Translation: "fried chicken", Price: "¥580"},
			{Original: "ビール", Reading: "biiru", Translation: "beer"},
		},
		CreatedAt: createdAt.UTC().Truncate(time.Second),
	}
}

func TestSQLiteStore_Close(t *testing.T) {
	t.Parallel()
	store, err := database.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
}

func TestScans_InsertGetRoundTrip(t *testing.T) {
	t.Parallel()
	store := setupStore(t)

	want := testScan("scan-1", "sid-1", time.Now())
	if err := store.InsertScan(want); err != nil {
		t.Fatalf("InsertScan failed: %v", err)
	}

	got, err := store.GetScan("scan-1")
	if err != nil {
		t.Fatalf("GetScan failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetScan returned nil for existing scan")
	}
	if got.SessionID != want.SessionID {
		t.Errorf("sid = %q, want %q", got.SessionID, want.SessionID)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	if got.Items[0].Translation != "fried chicken" {
		t.Errorf("item translation = %q", got.Items[0].Translation)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestScans_GetMissingReturnsNil(t *testing.T) {
	t.Parallel()
	store := setupStore(t)

	got, err := store.GetScan("nope")
	if err != nil {
		t.Fatalf("GetScan failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing scan, got %+v", got)
	}
}

func TestScans_ListFiltersBySessionNewestFirst(t *testing.T) {
	t.Parallel()
	store := setupStore(t)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"a", "b", "c"} {
		if err := store.InsertScan(testScan(id, "sid-1", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("InsertScan failed: %v", err)
		}
	}
	if err := store.InsertScan(testScan("other", "sid-2", base)); err != nil {
		t.Fatalf("InsertScan failed: %v", err)
	}

	scans, err := store.ListScans("sid-1", 100)
	if err != nil {
		t.Fatalf("ListScans failed: %v", err)
	}
	if len(scans) != 3 {
		t.Fatalf("got %d scans, want 3", len(scans))
	}
	if scans[0].ID != "c" || scans[2].ID != "a" {
		t.Errorf("wrong order: %s, %s, %s", scans[0].ID, scans[1].ID, scans[2].ID)
	}

	limited, err := store.ListScans("sid-1", 2)
	if err != nil {
		t.Fatalf("ListScans failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d scans with limit 2", len(limited))
	}
}

func TestScans_Delete(t *testing.T) {
	t.Parallel()
	store := setupStore(t)

	if err := store.InsertScan(testScan("scan-1", "sid-1", time.Now())); err != nil {
		t.Fatalf("InsertScan failed: %v", err)
	}

	deleted, err := store.DeleteScan("scan-1")
	if err != nil {
		t.Fatalf("DeleteScan failed: %v", err)
	}
	if !deleted {
		t.Error("expected deleted=true for existing scan")
	}

	deleted, err = store.DeleteScan("scan-1")
	if err != nil {
		t.Fatalf("DeleteScan failed: %v", err)
	}
	if deleted {
		t.Error("expected deleted=false for already-deleted scan")
	}
}

func TestFavorites_RoundTripAndSnapshot(t *testing.T) {
	t.Parallel()
	store := setupStore(t)

	scan := testScan("scan-1", "sid-1", time.Now())
	if err := store.InsertScan(scan); err != nil {
		t.Fatalf("InsertScan failed: %v", err)
	}

	favorite := &service.Favorite{
		ID:        "fav-1",
		SessionID: "sid-1",
		ScanID:    "scan-1",
		ItemIndex: 0,
		Item:      scan.Items[0],
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := store.InsertFavorite(favorite); err != nil {
		t.Fatalf("InsertFavorite failed: %v", err)
	}

	// deleting the scan must not take the favorite with it
	if _, err := store.DeleteScan("scan-1"); err != nil {
		t.Fatalf("DeleteScan failed: %v", err)
	}

	got, err := store.GetFavorite("fav-1")
	if err != nil {
		t.Fatalf("GetFavorite failed: %v", err)
	}
	if got == nil {
		t.Fatal("favorite disappeared with its scan")
	}
	if got.Item.Translation != "fried chicken" {
		t.Errorf("item translation = %q", got.Item.Translation)
	}
}

func TestFavorites_ListAndDelete(t *testing.T) {
	t.Parallel()
	store := setupStore(t)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"fav-1", "fav-2"} {
		favorite := &service.Favorite{
			ID:        id,
			SessionID: "sid-1",
			ScanID:    "scan-1",
			ItemIndex: i,
			Item:      vision.MenuItem{Original: "水", Translation: "water"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.InsertFavorite(favorite); err != nil {
			t.Fatalf("InsertFavorite failed: %v", err)
		}
	}

	favorites, err := store.ListFavorites("sid-1")
	if err != nil {
		t.Fatalf("ListFavorites failed: %v", err)
	}
	if len(favorites) != 2 {
		t.Fatalf("got %d favorites, want 2", len(favorites))
	}
	if favorites[0].ID != "fav-2" {
		t.Errorf("expected newest first, got %s", favorites[0].ID)
	}

	if favorites, err = store.ListFavorites("sid-other"); err != nil {
		t.Fatalf("ListFavorites failed: %v", err)
	}
	if len(favorites) != 0 {
		t.Errorf("expected no favorites for other session, got %d", len(favorites))
	}

	deleted, err := store.DeleteFavorite("fav-1")
	if err != nil {
		t.Fatalf("DeleteFavorite failed: %v", err)
	}
	if !deleted {
		t.Error("expected deleted=true")
	}
	got, err := store.GetFavorite("fav-1")
	if err != nil {
		t.Fatalf("GetFavorite failed: %v", err)
	}
	if got != nil {
		t.Error("favorite still present after delete")
	}
}
