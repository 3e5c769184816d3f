package api_test

import (
	"net/http"
	"testing"

	"github.com/menulens/menulens/internal/testutil"
	"github.com/menulens/menulens/pkg/api"
)

func TestHistory_ReturnsOnlyOwnScans(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)
	session := env.IssueTestSession(t)
	other := env.IssueTestSession(t)

	env.InsertTestScan(t, "scan-1", session.ID)
	env.InsertTestScan(t, "scan-2", session.ID)
	env.InsertTestScan(t, "scan-other", other.ID)

	var response api.HistoryResponse
	result := testutil.Get(env.Router, "/api/history", &response,
		testutil.SessionToken(session.Token))
	testutil.ExpectStatus(t, http.StatusOK, result)

	if len(response.Scans) != 2 {
		t.Fatalf("scans = %d, want 2", len(response.Scans))
	}
	for _, scan := range response.Scans {
		if scan.ID == "scan-other" {
			t.Error("history leaked another session's scan")
		}
	}
}

func TestHistory_EmptyForNewSession(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)
	session := env.IssueTestSession(t)

	var response api.HistoryResponse
	result := testutil.Get(env.Router, "/api/history", &response,
		testutil.SessionToken(session.Token))
	testutil.ExpectStatus(t, http.StatusOK, result)
	if len(response.Scans) != 0 {
		t.Errorf("scans = %d, want 0", len(response.Scans))
	}
}

func TestDeleteScan_Success(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)
	session := env.IssueTestSession(t)
	env.InsertTestScan(t, "scan-1", session.ID)

	var response api.DeleteResponse
	result := testutil.Delete(env.Router, "/api/scans/scan-1", &response,
		testutil.SessionToken(session.Token))
	testutil.ExpectStatus(t, http.StatusOK, result)
	if !response.Success {
		t.Error("expected success=true")
	}

	stored, err := env.DB.GetScan("scan-1")
	if err != nil {
		t.Fatalf("GetScan failed: %v", err)
	}
	if stored != nil {
		t.Error("scan still present after delete")
	}
}

func TestDeleteScan_NotFound(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)
	session := env.IssueTestSession(t)

	result := testutil.Delete(env.Router, "/api/scans/missing", nil,
		testutil.SessionToken(session.Token))
	testutil.ExpectStatus(t, http.StatusNotFound, result)
}

func TestDeleteScan_WrongSession(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)
	owner := env.IssueTestSession(t)
	intruder := env.IssueTestSession(t)
	env.InsertTestScan(t, "scan-1", owner.ID)

	var response api.ErrorResponse
	result := testutil.Delete(env.Router, "/api/scans/scan-1", &response,
		testutil.SessionToken(intruder.Token))
	testutil.ExpectStatus(t, http.StatusForbidden, result)
	if response.Error != "not authorized" {
		t.Errorf("error = %q", response.Error)
	}

	stored, err := env.DB.GetScan("scan-1")
	if err != nil {
		t.Fatalf("GetScan failed: %v", err)
	}
	if stored == nil {
		t.Error("scan deleted by wrong session")
	}
}
