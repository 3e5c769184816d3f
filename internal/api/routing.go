package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router builds the full API surface. Session issuance is public (its
// own stricter limiter runs inside the handler); everything else sits
// behind the business rate limit and session authentication.
func (a *API) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/session", a.CreateSession()).Methods("POST")

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(a.limited, a.authenticated)
	protected.HandleFunc("/scan", a.Scan()).Methods("POST")
	protected.HandleFunc("/history", a.History()).Methods("GET")
	protected.HandleFunc("/scans/{id}", a.DeleteScan()).Methods("DELETE")
	protected.HandleFunc("/favorites", a.CreateFavorite()).Methods("POST")
	protected.HandleFunc("/favorites", a.ListFavorites()).Methods("GET")
	protected.HandleFunc("/favorites/{id}", a.DeleteFavorite()).Methods("DELETE")

	return a.cors(r)
}
