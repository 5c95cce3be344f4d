package api

import (
	"github.com/gorilla/mux"

	"github.com/memovault/memovault/internal/service"
)

// NewRouter creates a new HTTP router with all API routes.
func NewRouter(svc *service.MemoService) *mux.Router {
	router := mux.NewRouter()

	healthHandler := NewHealthHandler()
	memoHandler := NewMemoHandler(svc)

	router.HandleFunc("/v0/health", healthHandler.CheckHealth).Methods("GET")

	// stats registered before {memoId} so the literal path wins
	router.HandleFunc("/v0/memos/stats", memoHandler.MemoStats).Methods("GET")

	router.HandleFunc("/v0/memos", memoHandler.CreateMemo).Methods("POST")
	router.HandleFunc("/v0/memos", memoHandler.ListMemos).Methods("GET")
	router.HandleFunc("/v0/memos/{memoId}", memoHandler.GetMemo).Methods("GET")
	router.HandleFunc("/v0/memos/{memoId}", memoHandler.UpdateMemo).Methods("PATCH")
	router.HandleFunc("/v0/memos/{memoId}", memoHandler.DeleteMemo).Methods("DELETE")

	router.HandleFunc("/v0/search", memoHandler.SearchMemos).Methods("POST")

	return router
}
