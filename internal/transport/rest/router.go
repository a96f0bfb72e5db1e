package rest

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter creates the API router with all endpoints.
func NewRouter(h *Handlers) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/analyses", h.SubmitAnalysis).Methods("POST")
	v1.HandleFunc("/analyses", h.ListAnalyses).Methods("GET")
	v1.HandleFunc("/analyses/{id:[0-9]+}", h.GetAnalysis).Methods("GET")
	v1.HandleFunc("/scores/criteria", h.GetCriterionBands).Methods("GET")
	v1.HandleFunc("/scores/overall", h.GetOverallBandAverage).Methods("GET")

	return r
}
