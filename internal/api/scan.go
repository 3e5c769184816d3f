package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/menulens/menulens/internal/service"
	"github.com/menulens/menulens/pkg/api"
)

// Scan handles POST /api/scan: run the image through the vision API and
// persist the result under the caller's session.
func (a *API) Scan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.ScanRequest
		if ok := a.decodeRequest(&req, w, r); !ok {
			return
		}

		scan, err := a.service.ScanImage(r.Context(), sessionID(r), req.Image, req.TargetLanguage)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidInput):
				a.logApiErr(r, fmt.Sprintf("scan rejected: %v", err))
				a.returnError(w, http.StatusBadRequest, "invalid scan request")
			case errors.Is(err, service.ErrScanFailed):
				a.logApiErr(r, fmt.Sprintf("scan failed: %v", err))
				a.returnError(w, http.StatusBadGateway, "menu scan failed, please try again")
			default:
				a.logApiErr(r, fmt.Sprintf("scan error: %v", err))
				a.returnError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		a.returnJson(api.ScanResponse{
			Success: true,
			Scan:    encodeScan(scan),
		}, w)
	}
}

func encodeScan(scan *service.Scan) api.Scan {
	items := make([]api.MenuItem, len(scan.Items))
	for i, item := range scan.Items {
		items[i] = api.MenuItem{
			Original:    item.Original,
			Reading:     item.Reading,
			Translation: item.Translation,
			Notes:       item.Notes,
			Price:       item.Price,
		}
	}
	return api.Scan{
		ID:             scan.ID,
		TargetLanguage: scan.TargetLanguage,
		SourceText:     scan.SourceText,
		Items:          items,
		CreatedAt:      scan.CreatedAt.Unix(),
	}
}
