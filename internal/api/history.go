package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/menulens/menulens/internal/service"
	"github.com/menulens/menulens/pkg/api"
)

// History handles GET /api/history: the caller's scans, newest first.
func (a *API) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scans, err := a.service.History(sessionID(r))
		if err != nil {
			a.logApiErr(r, fmt.Sprintf("couldn't list scans: %v", err))
			a.returnError(w, http.StatusInternalServerError, "internal error")
			return
		}

		encoded := make([]api.Scan, len(scans))
		for i, scan := range scans {
			encoded[i] = encodeScan(scan)
		}
		a.returnJson(api.HistoryResponse{
			Success: true,
			Scans:   encoded,
		}, w)
	}
}

// DeleteScan handles DELETE /api/scans/{id} with an ownership check.
func (a *API) DeleteScan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scanID := mux.Vars(r)["id"]
		err := a.service.DeleteScan(sessionID(r), scanID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrScanNotFound):
				a.returnError(w, http.StatusNotFound, "not found")
			case errors.Is(err, service.ErrNotAuthorized):
				a.logApiErr(r, fmt.Sprintf("scan delete refused: %v", err))
				a.returnError(w, http.StatusForbidden, "not authorized")
			default:
				a.logApiErr(r, fmt.Sprintf("couldn't delete scan: %v", err))
				a.returnError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		a.returnJson(api.DeleteResponse{Success: true}, w)
	}
}
